package serverapp

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/MarisaKirisame/mdo/internal/httpmw"
)

func chainMiddleware(h http.Handler, logger zerolog.Logger) http.Handler {
	return httpmw.Chain(
		h,
		httpmw.WithAccessLog(logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(logger),
	)
}

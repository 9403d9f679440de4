package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/MarisaKirisame/mdo/internal/serverapp"
)

type ServeCmd struct {
	flags *Flags

	addr string
}

func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the HTTP API and frontend",
		UsageText: "mdo serve [--addr host:port]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides the config file)",
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	addr := cmd.flags.Config.Server.Addr
	if cmd.addr != "" {
		addr = cmd.addr
	}

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config:        cmd.flags.Config,
		Store:         cmd.flags.Store,
		UseDiskStatic: serverapp.UseDiskStaticByEnv(),
		Logger:        cmd.flags.Logger,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	cmd.flags.Logger.Info().
		Str("addr", addr).
		Str("store", cmd.flags.Store.Path()).
		Msg("listening")

	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

package commands

import (
	"fmt"
	"strings"

	"github.com/MarisaKirisame/mdo/internal/model"
	"github.com/MarisaKirisame/mdo/internal/task"
)

// resolveID accepts a full task id or a unique prefix of one, so the short
// ids shown by list are usable as command arguments.
func resolveID(store *task.Store, raw string) (model.TaskID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("task id is required")
	}

	forest, err := store.List(nil)
	if err != nil {
		return "", err
	}

	exact := false
	var matches []model.TaskID
	walkNodes(forest, func(t *model.Task) {
		if string(t.ID) == raw {
			exact = true
		}
		if strings.HasPrefix(string(t.ID), raw) {
			matches = append(matches, t.ID)
		}
	})
	if exact {
		return model.TaskID(raw), nil
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		// let the engine report not-found uniformly
		return model.TaskID(raw), nil
	default:
		return "", fmt.Errorf("id %q is ambiguous (%d matches); use more characters", raw, len(matches))
	}
}

func walkNodes(nodes []*model.TaskNode, fn func(*model.Task)) {
	for _, n := range nodes {
		fn(&n.Task)
		walkNodes(n.Children, fn)
	}
}

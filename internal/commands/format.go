package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/MarisaKirisame/mdo/internal/model"
)

// printForest writes an indented tree, siblings in position order.
func printForest(w io.Writer, nodes []*model.TaskNode, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), formatTask(&n.Task))
		printForest(w, n.Children, depth+1)
	}
}

func formatTask(t *model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", shortID(t.ID), t.Title)
	if t.Due != nil {
		fmt.Fprintf(&b, " (due %s", t.Due)
		if t.IsRecurring() {
			fmt.Fprintf(&b, ", every %dd", t.Recur)
		}
		b.WriteString(")")
	} else if t.IsRecurring() {
		fmt.Fprintf(&b, " (every %dd)", t.Recur)
	}
	return b.String()
}

// shortID keeps listings readable; full ids still work everywhere ids are
// accepted.
func shortID(id model.TaskID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

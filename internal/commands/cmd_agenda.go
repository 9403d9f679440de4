package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/MarisaKirisame/mdo/internal/when"
)

type AgendaCmd struct {
	flags *Flags

	on string
}

func NewAgendaCmd(flags *Flags) *AgendaCmd {
	return &AgendaCmd{flags: flags}
}

func (cmd *AgendaCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "agenda",
		Usage:     "Show tasks due on or before a day (default today)",
		UsageText: "mdo agenda [--on YYYY-MM-DD]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "on",
				Usage:       "reference day instead of today",
				Destination: &cmd.on,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *AgendaCmd) run(ctx context.Context, c *cli.Command) error {
	day, err := cmd.flags.Today()
	if err != nil {
		return err
	}
	if cmd.on != "" {
		day, err = when.ParseDate(cmd.on)
		if err != nil {
			return fmt.Errorf("--on must be a YYYY-MM-DD date: %w", err)
		}
	}

	due, err := cmd.flags.Store.DueOn(day)
	if err != nil {
		return fmt.Errorf("load agenda: %w", err)
	}
	if len(due) == 0 {
		fmt.Fprintf(c.Root().Writer, "Nothing due on %s.\n", day)
		return nil
	}

	tw := tabwriter.NewWriter(c.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DUE\tID\tTITLE\tREPEAT")
	for _, t := range due {
		repeat := "-"
		if t.IsRecurring() {
			repeat = fmt.Sprintf("%dd", t.Recur)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Due, shortID(t.ID), t.Title, repeat)
	}
	return tw.Flush()
}

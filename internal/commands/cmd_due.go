package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/MarisaKirisame/mdo/internal/model"
	"github.com/MarisaKirisame/mdo/internal/when"
)

type DueCmd struct {
	flags *Flags

	clear bool
}

func NewDueCmd(flags *Flags) *DueCmd {
	return &DueCmd{flags: flags}
}

func (cmd *DueCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "due",
		Usage:     "Set or clear a task's due date from a date expression",
		UsageText: `mdo due <id> <expr> | mdo due --clear <id>`,
		Description: `Expressions: "today", "tomorrow", "in N days", a weekday name,
"every <weekday>", "every N days", "daily", "YYYY-MM-DD", "MM-DD", or a
bare day of month. Recurring expressions also set the repeat interval.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "remove the due date and recurrence",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DueCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: mdo due <id> <expr>")
	}
	id, err := resolveID(cmd.flags.Store, c.Args().First())
	if err != nil {
		return err
	}

	if cmd.clear {
		updated, err := cmd.flags.Store.SetSchedule(id, nil, 0)
		if err != nil {
			return fmt.Errorf("clear due date: %w", err)
		}
		fmt.Fprintf(c.Root().Writer, "Cleared schedule of %s.\n", formatTask(&updated))
		return nil
	}

	if c.NArg() < 2 {
		return fmt.Errorf("usage: mdo due <id> <expr>")
	}
	today, err := cmd.flags.Today()
	if err != nil {
		return err
	}
	due, interval, err := when.Resolve(c.Args().Get(1), today)
	if err != nil {
		return err
	}

	updated, err := cmd.flags.Store.SetSchedule(id, &due, model.Recurrence(interval))
	if err != nil {
		return fmt.Errorf("set due date: %w", err)
	}
	fmt.Fprintf(c.Root().Writer, "Scheduled %s.\n", formatTask(&updated))
	return nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type DoCmd struct {
	flags *Flags
}

func NewDoCmd(flags *Flags) *DoCmd {
	return &DoCmd{flags: flags}
}

func (cmd *DoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "do",
		Usage:     "Complete a task; recurring tasks are rescheduled",
		UsageText: "mdo do <id>",
		Action:    cmd.run,
	})
	return app
}

func (cmd *DoCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: mdo do <id>")
	}
	id, err := resolveID(cmd.flags.Store, c.Args().First())
	if err != nil {
		return err
	}
	today, err := cmd.flags.Today()
	if err != nil {
		return err
	}

	result, err := cmd.flags.Store.Complete(id, today)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	if result.Rescheduled {
		fmt.Fprintf(c.Root().Writer, "Done. %q rescheduled to %s.\n", result.Task.Title, result.Task.Due)
		return nil
	}
	fmt.Fprintf(c.Root().Writer, "Done with %q.\n", result.Task.Title)
	return nil
}

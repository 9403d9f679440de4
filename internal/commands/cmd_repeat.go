package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
)

type RepeatCmd struct {
	flags *Flags

	clear bool
}

func NewRepeatCmd(flags *Flags) *RepeatCmd {
	return &RepeatCmd{flags: flags}
}

func (cmd *RepeatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "repeat",
		Usage:     "Set or clear a task's recurrence interval in days",
		UsageText: "mdo repeat <id> <days> | mdo repeat --clear <id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "make the task one-shot again",
				Destination: &cmd.clear,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *RepeatCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: mdo repeat <id> <days>")
	}
	id, err := resolveID(cmd.flags.Store, c.Args().First())
	if err != nil {
		return err
	}

	days := 0
	if !cmd.clear {
		if c.NArg() < 2 {
			return fmt.Errorf("usage: mdo repeat <id> <days>")
		}
		days, err = strconv.Atoi(c.Args().Get(1))
		if err != nil || days <= 0 {
			return fmt.Errorf("days must be a positive integer")
		}
	}

	updated, err := cmd.flags.Store.SetRecurrence(id, days)
	if err != nil {
		return fmt.Errorf("set recurrence: %w", err)
	}
	fmt.Fprintf(c.Root().Writer, "Updated %s.\n", formatTask(&updated))
	return nil
}

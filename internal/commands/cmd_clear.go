package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type ClearCmd struct {
	flags *Flags

	yes bool
}

func NewClearCmd(flags *Flags) *ClearCmd {
	return &ClearCmd{flags: flags}
}

func (cmd *ClearCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "clear",
		Usage:     "Delete every task",
		UsageText: "mdo clear --yes",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Usage:       "confirm deleting all tasks",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ClearCmd) run(ctx context.Context, c *cli.Command) error {
	if !cmd.yes {
		return fmt.Errorf("refusing to delete all tasks without --yes")
	}
	if err := cmd.flags.Store.Clear(); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	fmt.Fprintln(c.Root().Writer, "Cleared all tasks.")
	return nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/MarisaKirisame/mdo/internal/model"
)

type ListCmd struct {
	flags *Flags
}

func NewListCmd(flags *Flags) *ListCmd {
	return &ListCmd{flags: flags}
}

func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List the task forest, or a task's subtasks",
		UsageText: "mdo list [id]",
		Action:    cmd.run,
	})
	return app
}

func (cmd *ListCmd) run(ctx context.Context, c *cli.Command) error {
	var rootID *model.TaskID
	if c.NArg() > 0 {
		id, err := resolveID(cmd.flags.Store, c.Args().First())
		if err != nil {
			return err
		}
		rootID = &id
	}

	forest, err := cmd.flags.Store.List(rootID)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(forest) == 0 {
		fmt.Fprintln(c.Root().Writer, "(no items)")
		return nil
	}
	printForest(c.Root().Writer, forest, 0)
	return nil
}

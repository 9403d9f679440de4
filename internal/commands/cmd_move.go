package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/MarisaKirisame/mdo/internal/model"
)

type MoveCmd struct {
	flags *Flags

	parent   string
	position int
}

func NewMoveCmd(flags *Flags) *MoveCmd {
	return &MoveCmd{flags: flags}
}

func (cmd *MoveCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "move",
		Usage:     "Reattach a task (and its subtree) under a new parent",
		UsageText: "mdo move [--parent id] [--to pos] <id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "parent",
				Aliases:     []string{"p"},
				Usage:       "new parent id (omit to make the task top-level)",
				Destination: &cmd.parent,
			},
			&cli.IntFlag{
				Name:        "to",
				Usage:       "position among the new siblings",
				Destination: &cmd.position,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *MoveCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: mdo move <id>")
	}
	id, err := resolveID(cmd.flags.Store, c.Args().First())
	if err != nil {
		return err
	}

	var parentID *model.TaskID
	if cmd.parent != "" {
		pid, err := resolveID(cmd.flags.Store, cmd.parent)
		if err != nil {
			return err
		}
		parentID = &pid
	}

	forest, err := cmd.flags.Store.Move(id, parentID, cmd.position)
	if err != nil {
		return fmt.Errorf("move task: %w", err)
	}
	printForest(c.Root().Writer, forest, 0)
	return nil
}

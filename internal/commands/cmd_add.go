package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/MarisaKirisame/mdo/internal/model"
	"github.com/MarisaKirisame/mdo/internal/when"
)

type AddCmd struct {
	flags *Flags

	parent   string
	position int
	whenExpr string
}

func NewAddCmd(flags *Flags) *AddCmd {
	return &AddCmd{flags: flags}
}

func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		UsageText: "mdo add [--parent id] [--at pos] [--when expr] <title>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "parent",
				Aliases:     []string{"p"},
				Usage:       "parent task id (omit for a top-level task)",
				Destination: &cmd.parent,
			},
			&cli.IntFlag{
				Name:        "at",
				Usage:       "position among siblings (appended when omitted)",
				Value:       -1,
				Destination: &cmd.position,
			},
			&cli.StringFlag{
				Name:        "when",
				Aliases:     []string{"w"},
				Usage:       `due date expression, e.g. "tomorrow", "every monday", "in 3 days"`,
				Destination: &cmd.whenExpr,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: mdo add <title>")
	}
	title := c.Args().First()

	var parentID *model.TaskID
	if cmd.parent != "" {
		id, err := resolveID(cmd.flags.Store, cmd.parent)
		if err != nil {
			return err
		}
		parentID = &id
	}

	var position *int
	if cmd.position >= 0 {
		position = &cmd.position
	}

	created, err := cmd.flags.Store.Create(title, parentID, position)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	if cmd.whenExpr != "" {
		today, err := cmd.flags.Today()
		if err != nil {
			return err
		}
		due, interval, err := when.Resolve(cmd.whenExpr, today)
		if err != nil {
			return err
		}
		created, err = cmd.flags.Store.SetSchedule(created.ID, &due, model.Recurrence(interval))
		if err != nil {
			return fmt.Errorf("set schedule: %w", err)
		}
	}

	fmt.Fprintf(c.Root().Writer, "Added %s.\n", formatTask(&created))
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/airaware/internal/app"
	"github.com/i474232898/airaware/internal/session"
)

func (c *cli) newExercisesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exercises",
		Aliases: []string{"ex"},
		Short:   "Show and update today's exercise checklist",
		Args:    cobra.NoArgs,
		RunE:    c.exercisesRun(nil),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the checklist for the selected category",
			Args:  cobra.NoArgs,
			RunE:  c.exercisesRun(nil),
		},
		&cobra.Command{
			Use:   "toggle <id>",
			Short: "Mark an exercise done or not done",
			Args:  cobra.ExactArgs(1),
			RunE: c.exercisesRun(func(ctx context.Context, a *app.App, args []string) (session.View, error) {
				return a.Orchestrator.ToggleExercise(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Clear today's progress",
			Args:  cobra.NoArgs,
			RunE: c.exercisesRun(func(ctx context.Context, a *app.App, _ []string) (session.View, error) {
				return a.Orchestrator.ResetExercises(ctx)
			}),
		},
		&cobra.Command{
			Use:   "category <key>",
			Short: "Switch the exercise category",
			Args:  cobra.ExactArgs(1),
			RunE: c.exercisesRun(func(ctx context.Context, a *app.App, args []string) (session.View, error) {
				return a.Orchestrator.SelectCategory(ctx, args[0])
			}),
		},
	)
	return cmd
}

type exerciseAction func(ctx context.Context, a *app.App, args []string) (session.View, error)

// exercisesRun loads the session, applies action if any and prints the
// resulting checklist.
func (c *cli) exercisesRun(action exerciseAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := c.setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		a.LoadSession(ctx)

		view := a.Orchestrator.Exercises()
		if action != nil {
			view, err = action(ctx, a, args)
			var pe *session.PersistError
			switch {
			case errors.As(err, &pe):
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: progress could not be saved")
			case err != nil:
				return fmt.Errorf("%w (available: %s)", err, strings.Join(a.Orchestrator.Catalog().Categories(), ", "))
			}
		}

		renderExercises(cmd.OutOrStdout(), view)
		return nil
	}
}

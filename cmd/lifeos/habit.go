package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sadopc/lifeos/internal/store"
	"github.com/spf13/cobra"
)

func newHabitCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage habits and log completions",
	}
	cmd.AddCommand(
		newHabitAddCmd(o),
		newHabitListCmd(o),
		newHabitDoneCmd(o),
		newHabitDeactivateCmd(o),
	)
	return cmd
}

func newHabitAddCmd(o *rootOptions) *cobra.Command {
	var bad bool
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a habit",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			kind := store.HabitGood
			if bad {
				kind = store.HabitBad
			}
			h, err := e.store.CreateHabit(userID, strings.Join(args, " "), kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s habit %q (%s)\n", h.Kind, h.Name, h.ID)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&bad, "bad", false, "track a habit to avoid")
	return cmd
}

func newHabitListCmd(o *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habits",
		Args:  cobra.NoArgs,
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			ctx := context.Background()
			var habits []store.Habit
			if all {
				habits, err = e.store.QueryHabits(ctx, userID)
			} else {
				habits, err = e.store.QueryActiveHabits(ctx, userID)
			}
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(habits))
			for _, h := range habits {
				active := "yes"
				if !h.Active {
					active = "no"
				}
				rows = append(rows, []string{h.ID, h.Name, string(h.Kind), active})
			}
			printTable(cmd.OutOrStdout(), "No habits yet.", []string{"ID", "Name", "Kind", "Active"}, rows)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include deactivated habits")
	return cmd
}

func newHabitDoneCmd(o *rootOptions) *cobra.Command {
	var (
		date   string
		missed bool
	)
	cmd := &cobra.Command{
		Use:   "done <habit-id>",
		Short: "Log a habit for a day",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			h, err := ownedHabit(e.store, userID, args[0])
			if err != nil {
				return err
			}
			day, err := parseDay(date, e.now())
			if err != nil {
				return err
			}
			l, err := e.store.LogHabit(userID, h.ID, day, !missed)
			if err != nil {
				return err
			}
			verb := "Done"
			if missed {
				verb = "Missed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s on %s\n", verb, h.Name, l.Date)
			return nil
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "day, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&missed, "missed", false, "log the habit as not completed")
	return cmd
}

func newHabitDeactivateCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <habit-id>",
		Short: "Stop tracking a habit",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			h, err := ownedHabit(e.store, userID, args[0])
			if err != nil {
				return err
			}
			if err := e.store.SetHabitActive(h.ID, false); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s\n", h.Name)
			return nil
		}),
	}
}

// ownedHabit loads a habit and hides other users' habits as not found.
func ownedHabit(s *store.Store, userID, id string) (*store.Habit, error) {
	h, err := s.GetHabit(id)
	if err != nil {
		return nil, err
	}
	if h.UserID != userID {
		return nil, fmt.Errorf("habit %s: %w", id, store.ErrNotFound)
	}
	return h, nil
}

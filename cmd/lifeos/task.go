package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/lifeos/internal/store"
	"github.com/spf13/cobra"
)

func newTaskCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(o),
		newTaskListCmd(o),
		newTaskDoneCmd(o),
	)
	return cmd
}

// parseEnergy normalizes an energy level to High, Medium or Low.
func parseEnergy(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "high", "h":
		return "High", nil
	case "medium", "med", "m":
		return "Medium", nil
	case "low", "l":
		return "Low", nil
	}
	return "", fmt.Errorf("energy %q: want high, medium or low", s)
}

func newTaskAddCmd(o *rootOptions) *cobra.Command {
	var projectID, energy, due string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			level, err := parseEnergy(energy)
			if err != nil {
				return err
			}
			dueDate, err := parseDeadline(due, e.loc)
			if err != nil {
				return err
			}
			var project *string
			if projectID != "" {
				p, err := e.store.GetProject(projectID)
				if err != nil {
					return err
				}
				if p.UserID != userID {
					return fmt.Errorf("project %s: %w", projectID, store.ErrNotFound)
				}
				project = &p.ID
			}

			t, err := e.store.CreateTask(userID, project, strings.Join(args, " "), level, dueDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %q (%s)\n", t.Title, t.ID)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "project id")
	cmd.Flags().StringVarP(&energy, "energy", "e", "", "energy level: high, medium or low")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	return cmd
}

func newTaskListCmd(o *rootOptions) *cobra.Command {
	var (
		projectID string
		open      bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			var f store.TaskFilter
			if projectID != "" {
				f.ProjectID = &projectID
			}
			if open {
				done := false
				f.Completed = &done
			}
			tasks, err := e.store.QueryTasks(context.Background(), userID, f)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(tasks))
			for _, t := range tasks {
				rows = append(rows, []string{
					t.ID,
					check(t.IsCompleted),
					t.Title,
					t.EnergyLevel,
					dueLabel(t, e.now()),
				})
			}
			printTable(cmd.OutOrStdout(), "No tasks.", []string{"ID", "Done", "Title", "Energy", "Due"}, rows)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "only tasks of this project")
	cmd.Flags().BoolVar(&open, "open", false, "only tasks not completed")
	return cmd
}

func dueLabel(t store.Task, now time.Time) string {
	label := formatDay(t.DueDate, now.Location())
	if t.DueDate != nil && !t.IsCompleted && t.DueDate.Before(now) {
		label += " overdue"
	}
	return label
}

func newTaskDoneCmd(o *rootOptions) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			t, err := e.store.GetTask(args[0])
			if err != nil {
				return err
			}
			if t.UserID != userID {
				return fmt.Errorf("task %s: %w", args[0], store.ErrNotFound)
			}
			if err := e.store.SetTaskCompleted(t.ID, !undo); err != nil {
				return err
			}
			state := "completed"
			if undo {
				state = "reopened"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", t.Title, state)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the task not completed")
	return cmd
}

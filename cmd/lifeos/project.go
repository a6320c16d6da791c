package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sadopc/lifeos/internal/metrics"
	"github.com/sadopc/lifeos/internal/store"
	"github.com/spf13/cobra"
)

func newProjectCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(
		newProjectAddCmd(o),
		newProjectListCmd(o),
		newProjectStatusCmd(o),
	)
	return cmd
}

func newProjectAddCmd(o *rootOptions) *cobra.Command {
	var desc, deadline string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an active project",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			due, err := parseDeadline(deadline, e.loc)
			if err != nil {
				return err
			}
			p, err := e.store.CreateProject(userID, strings.Join(args, " "), desc, due)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %q (%s)\n", p.Name, p.ID)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&desc, "description", "d", "", "project description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline, YYYY-MM-DD")
	return cmd
}

func newProjectListCmd(o *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects with their health",
		Args:  cobra.NoArgs,
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			ctx := context.Background()
			var projects []store.Project
			if all {
				projects, err = e.store.ListProjects(ctx, userID)
			} else {
				projects, err = e.store.QueryActiveProjects(ctx, userID)
			}
			if err != nil {
				return err
			}
			tasks, err := e.store.QueryTasks(ctx, userID, store.TaskFilter{})
			if err != nil {
				return err
			}

			health := make(map[string]metrics.ProjectHealth, len(projects))
			for _, h := range metrics.ProjectsHealth(projects, tasks, e.now(), metrics.LoadParams(e.store)) {
				health[h.ProjectID] = h
			}

			rows := make([][]string, 0, len(projects))
			for _, pr := range projects {
				row := []string{pr.ID, pr.Name, string(pr.Status), "-", "-", "-", formatDay(pr.Deadline, e.loc)}
				// only active projects are scored
				if h, ok := health[pr.ID]; ok {
					row[3] = fmt.Sprintf("%.0f %s", h.HealthScore, metrics.HealthBand(h.HealthScore))
					row[4] = fmt.Sprintf("%d/%d", h.TasksCompleted, h.TotalTasks)
					row[5] = fmt.Sprintf("%d", h.OverdueTasks)
				}
				rows = append(rows, row)
			}
			printTable(cmd.OutOrStdout(), "No projects yet.",
				[]string{"ID", "Name", "Status", "Health", "Done", "Overdue", "Deadline"}, rows)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed, archived and on-hold projects")
	return cmd
}

func newProjectStatusCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "status <project-id> <active|completed|archived|on_hold>",
		Short:     "Change a project's status",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(store.ProjectActive), string(store.ProjectCompleted), string(store.ProjectArchived), string(store.ProjectOnHold)},
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			status, ok := store.ParseProjectStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q", args[1])
			}
			p, err := e.store.GetProject(args[0])
			if err != nil {
				return err
			}
			if p.UserID != userID {
				return fmt.Errorf("project %s: %w", args[0], store.ErrNotFound)
			}
			if err := e.store.SetProjectStatus(p.ID, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", p.Name, status)
			return nil
		}),
	}
}

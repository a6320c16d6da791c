package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newLogCmd(o *rootOptions) *cobra.Command {
	var (
		score int
		hours float64
		notes string
		date  string
		focus int
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a daily check-in",
		Example: `  lifeos log --score 7 --hours 3.5 --notes "shipped the parser"
  lifeos log --score 4 --hours 0 --date 2026-03-01`,
		Args: cobra.NoArgs,
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("score") {
				return errors.New("--score is required")
			}
			now := e.now()
			day, err := parseDay(date, now)
			if err != nil {
				return err
			}

			l, err := e.store.CreateDailyLog(userID, day, score, hours, notes, now)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged %s: score %d, deep work %.1fh\n", l.Date, l.ProductivityScore, l.DeepWorkHours)

			if focus > 0 {
				if _, err := e.store.LogFocus(userID, focus, now); err != nil {
					return fmt.Errorf("focus: %w", err)
				}
				fmt.Fprintf(out, "Focus %d at %s\n", focus, now.Format("15:04"))
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&score, "score", "s", 0, "productivity score (0-10)")
	cmd.Flags().Float64VarP(&hours, "hours", "H", 0, "deep work hours")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-form notes")
	cmd.Flags().StringVar(&date, "date", "", "day logged, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&focus, "focus", 0, "also record a focus score (1-5)")
	return cmd
}

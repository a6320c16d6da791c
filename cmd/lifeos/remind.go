package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sadopc/lifeos/internal/checkin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRemindCmd(o *rootOptions) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Remind profiles that have not logged today",
		Long: `Sweep every profile with a chat id and remind those without a check-in
today. With --watch the sweep runs daily at reminder.at until interrupted.`,
		Args: cobra.NoArgs,
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			log := e.log.Named("reminder")
			eval := checkin.NewEvaluator(e.store, e.log.Named("checkin"), e.loc).WithClock(e.now)
			r := checkin.NewReminder(e.store, eval, checkin.LogNotifier{Log: log}, log, e.cfg.Reminder.At, e.cfg.Reminder.Message)

			if watch {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				r.Start(ctx)
				log.Info("reminder scheduler stopped", zap.String("at", e.cfg.Reminder.At))
				return nil
			}

			results, err := r.RunOnce(context.Background())
			if err != nil {
				return err
			}
			printReminders(cmd, results)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and sweep daily at reminder.at")
	return cmd
}

func printReminders(cmd *cobra.Command, results []checkin.Result) {
	out := cmd.OutOrStdout()
	sent := 0
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(out, "%s: %v\n", res.UserID, res.Err)
			continue
		}
		sent++
		fmt.Fprintf(out, "%s: reminded\n", res.UserID)
	}
	fmt.Fprintf(out, "%d reminded, %d failed\n", sent, len(results)-sent)
}

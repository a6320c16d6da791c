package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFocusCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "focus <1-5>",
		Short: "Record how focused you are right now",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			score, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("focus %q: want a number from 1 to 5", args[0])
			}
			f, err := e.store.LogFocus(userID, score, e.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Focus %d at %s\n", f.FocusScore, f.CreatedAt.In(e.loc).Format("15:04"))
			return nil
		}),
	}
}

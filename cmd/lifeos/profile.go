package main

import (
	"fmt"
	"strings"

	"github.com/sadopc/lifeos/internal/store"
	"github.com/spf13/cobra"
)

func newProfileCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage user profiles",
		Long: `Profiles are the users lifeos knows about. A profile's id is the value
for session.user_id or --user. Profiles with a chat id receive reminders.`,
	}
	cmd.AddCommand(newProfileAddCmd(o), newProfileListCmd(o))
	return cmd
}

func newProfileAddCmd(o *rootOptions) *cobra.Command {
	var chatID string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a profile",
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			p, err := e.store.CreateProfile(strings.Join(args, " "), chatID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created profile %q (%s)\n", p.Name, p.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&chatID, "chat-id", "", "reminder destination")
	return cmd
}

func newProfileListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			profiles, err := e.store.ListProfiles()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(profiles))
			for _, p := range profiles {
				chat := p.ChatID
				if chat == "" {
					chat = "-"
				}
				rows = append(rows, []string{p.ID, p.Name, chat, p.CreatedAt.In(e.loc).Format(store.DateLayout)})
			}
			printTable(cmd.OutOrStdout(), "No profiles yet.", []string{"ID", "Name", "Chat", "Created"}, rows)
			return nil
		}),
	}
}

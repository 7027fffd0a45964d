package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bleep/internal/ipc"
)

func newBanlistCommand(ctx *commandContext) *cobra.Command {
	banlistCmd := &cobra.Command{
		Use:   "banlist",
		Short: "Inspect and manage muted terms",
	}

	banlistCmd.AddCommand(newBanlistListCommand(ctx))
	banlistCmd.AddCommand(newBanlistAddCommand(ctx))
	banlistCmd.AddCommand(newBanlistRemoveCommand(ctx))

	return banlistCmd
}

func newBanlistListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active ban terms",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.BanlistList()
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				custom := make(map[string]bool, len(resp.CustomTerms))
				for _, term := range resp.CustomTerms {
					custom[strings.ToLower(term)] = true
				}
				fmt.Fprintf(out, "%d terms active (%d custom)\n", len(resp.Terms), len(resp.CustomTerms))
				for _, term := range resp.Terms {
					if custom[strings.ToLower(term)] {
						fmt.Fprintf(out, "  %s (custom)\n", term)
					} else {
						fmt.Fprintf(out, "  %s\n", term)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newBanlistAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <term>",
		Short: "Add a term to the banlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.BanlistAdd(args[0])
				if err != nil {
					return err
				}
				if resp.Added {
					fmt.Fprintf(cmd.OutOrStdout(), "Added %q to the banlist\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%q is already on the banlist\n", args[0])
				}
				return nil
			})
		},
	}
}

func newBanlistRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <term>",
		Short: "Remove a custom term from the banlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.BanlistRemove(args[0])
				if err != nil {
					return err
				}
				if resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from the banlist\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%q is not a custom banlist term\n", args[0])
				}
				return nil
			})
		},
	}
}

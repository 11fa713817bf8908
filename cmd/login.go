package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize access to Google Drive and store the token",
		Long: `Run the OAuth consent flow in the browser and store the resulting token,
replacing any token stored before.

Reads the client id from $username and the client secret from $api_key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			creds, err := a.credentialStore()
			if err != nil {
				return err
			}
			if _, err := creds.Authorize(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Authorized. Token stored in %s\n", creds.TokenFile())
			return nil
		},
	}
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newFoldersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List the top-level Google Drive folders as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			client, err := a.connect(ctx)
			if err != nil {
				return err
			}

			folders, err := client.ListRootFolders(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(folders); err != nil {
				return fmt.Errorf("failed to encode folders: %w", err)
			}
			return nil
		},
	}
}

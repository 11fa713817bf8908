package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/dzdrive/internal/dropzone"
	"github.com/teemow/dzdrive/internal/workflow"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files to a Google Drive folder (Dropzone entry point)",
		Long: `Connect to Google Drive, ask which folder to use and upload the files into it.

Progress and results are written to stdout in the Dropzone action protocol.
Logs go to stderr.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, args)
		},
	}
}

func runUpload(cmd *cobra.Command, files []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	dialog := dropzone.CocoaDialogRunner{Binary: a.config.CocoaDialogBinary()}
	host := dropzone.NewStdoutHost(cmd.OutOrStdout(), dialog, a.logger)

	creds, err := a.credentialStore()
	if err != nil {
		host.Fail(workflow.FailureMessage(err))
		return err
	}
	cache, err := a.descriptorCache(ctx)
	if err != nil {
		host.Fail(workflow.FailureMessage(err))
		return err
	}

	wf := workflow.New(workflow.Options{
		Host:        host,
		Auth:        creds,
		Descriptors: cache,
		NewClient:   a.driveClientFactory(),
		SavedFolder: a.config.FolderName,
		Logger:      a.logger,
	})
	return wf.Run(ctx, files)
}

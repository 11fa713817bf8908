package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalOptions holds the flags shared by all commands
type globalOptions struct {
	debug       bool
	tokenFile   string
	cacheFile   string
	envFile     string
	cocoaDialog string
}

var opts globalOptions

// rootCmd represents the base command for the dzdrive application
var rootCmd = &cobra.Command{
	Use:   "dzdrive [file...]",
	Short: "Uploads files dropped on Dropzone to Google Drive",
	Long: `dzdrive is a Dropzone action that uploads the dropped files to a folder
in your Google Drive.

Dropzone runs it with the dropped files as arguments. It asks which top-level
folder to use (or creates a new one) and uploads every file into it.

Dropzone passes the OAuth client id as "username" and the client secret as
"api_key" in the environment.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if opts.envFile == "" {
			return nil
		}
		if err := godotenv.Load(opts.envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", opts.envFile, err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Dropzone invokes the binary with the dropped files only
		if len(args) == 0 {
			return cmd.Help()
		}
		return runUpload(cmd, args)
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "dzdrive version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging on stderr")
	flags.StringVar(&opts.tokenFile, "token-file", "", "Path of the OAuth token file (default: <executable>-oauth2.json)")
	flags.StringVar(&opts.cacheFile, "cache-file", "", "Path of the Drive API descriptor cache (default: drive-v2.cache)")
	flags.StringVar(&opts.envFile, "env-file", "", "Load environment variables from this .env file before running")
	flags.StringVar(&opts.cocoaDialog, "cocoa-dialog", "", "Path of the cocoaDialog binary (default: located in $support_folder)")

	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// Command gitgov is the CLI surface for the gitgovernance protocol (spec
// §6): local-first, cryptographically signed task/cycle governance
// records synced across a team via a dedicated git branch. Grounded on
// the teacher's cobra root-command idiom — persistent flags, init()-time
// subcommand registration, Execute() as the sole entrypoint main calls.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitgovernance/gitgovernance/internal/config"
)

var (
	flagOutput  string
	flagRemote  string
	flagVerbose bool
	flagNotes   string
)

var rootCmd = &cobra.Command{
	Use:   "gitgov",
	Short: "Local-first, git-native governance records for tasks and cycles",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "", "output format: json, or table for any other value (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagRemote, "remote", "", "git remote to sync against (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagNotes, "notes", "", "signer notes attached to records this command creates or mutates")
}

// flagOverrides builds the config.Config the CLI's flags explicitly set,
// for config.Load to apply above environment and file layers.
func flagOverrides() *config.Config {
	return &config.Config{Output: flagOutput, Remote: flagRemote, Verbose: flagVerbose}
}

// resolveRemote returns the remote name a sync command should use: the
// --remote flag if given, else the loaded config's Remote.
func (a *app) resolveRemote() string {
	if flagRemote != "" {
		return flagRemote
	}
	return a.cfg.Remote
}

// Execute runs the CLI and returns the error any command produced,
// unmodified, so main can map it to an exit code via ggerr.ExitCode.
func Execute() error {
	return rootCmd.Execute()
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

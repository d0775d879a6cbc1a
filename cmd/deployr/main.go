package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds the persistent flags shared by all subcommands.
type GlobalFlags struct {
	ConfigPath string
	LocalDir   string
	ServerDir  string
	RemoteHost string
}

// HistoryFlags holds flags for the history subcommand.
type HistoryFlags struct {
	Limit int
}

// buildRoot creates the root command and wires the action subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	historyFlags := &HistoryFlags{}

	deployrCommand := command{flags: globalFlags}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createPullCommand(deployrCommand),
		createPushCommand(deployrCommand),
		createRestartCommand(deployrCommand),
		createDeployCommand(deployrCommand),
		createCleanupCommand(deployrCommand),
		createHistoryCommand(deployrCommand, historyFlags),
	)
	return root
}

// createRootCommand creates the root command with persistent flags.
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "deployr",
		Short: "Bot deployment dispatcher",
		Long: `Deployr synchronizes a bot source tree between a workstation and a
remote server and manages the remote bot process via its PID file.

Commands:
  pull      mirror the server tree into the local directory
  push      mirror the local tree onto the server and reinstall dependencies
  restart   stop the running bot (by PID file) and start it again
  deploy    push, then restart
  cleanup   remove version-control metadata from the server directory

Examples:
  deployr --config=deployr.toml deploy
  deployr push --host=bothost --local-dir=. --server-dir='~/projects/telegram_bot'
  deployr history --limit=20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New("expected one of: pull, push, restart, deploy, cleanup, history")
		},
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	root.PersistentFlags().StringVar(&flags.LocalDir, "local-dir", "", "local project directory (overrides config)")
	root.PersistentFlags().StringVar(&flags.ServerDir, "server-dir", "", "remote project directory (overrides config)")
	root.PersistentFlags().StringVar(&flags.RemoteHost, "host", "", "remote host alias (overrides config)")

	return root
}

func createPullCommand(deployrCommand command) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Mirror the server tree into the local directory",
		Long: `Mirror the remote server directory into the local directory,
excluding transient paths (OS metadata, .git, venv, secrets, logs, PID file).

Examples:
  deployr --config=deployr.toml pull`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deployrCommand.Pull(cmd.Context())
		},
	}
}

func createPushCommand(deployrCommand command) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Mirror the local tree onto the server",
		Long: `Mirror the local directory onto the remote server directory with the
same exclusions as pull, then reinstall declared dependencies inside the
remote venv when it exists (best effort).

Examples:
  deployr --config=deployr.toml push`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deployrCommand.Push(cmd.Context())
		},
	}
}

func createRestartCommand(deployrCommand command) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the remote bot process",
		Long: `Stop the process recorded in the remote PID file (if any), relaunch
the entrypoint with the venv interpreter, and record the new PID.

Examples:
  deployr --config=deployr.toml restart`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deployrCommand.Restart(cmd.Context())
		},
	}
}

func createDeployCommand(deployrCommand command) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Push, then restart",
		Long: `Push the local tree to the server and restart the bot. Whether a
failed push aborts the restart is controlled by stop_on_push_failure in
the config.

Examples:
  deployr --config=deployr.toml deploy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deployrCommand.Deploy(cmd.Context())
		},
	}
}

func createCleanupCommand(deployrCommand command) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove version-control metadata from the server directory",
		Long: `Verify the remote working directory resolves to the configured server
directory, then remove its .git directory if present. Aborts without
removing anything when the directory check fails.

Examples:
  deployr --config=deployr.toml cleanup`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deployrCommand.Cleanup(cmd.Context())
		},
	}
}

func createHistoryCommand(deployrCommand command, flags *HistoryFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent deployment actions",
		Long: `Print the most recent deployment actions from the configured history
store, newest first.

Examples:
  deployr --config=deployr.toml history
  deployr --config=deployr.toml history --limit=50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deployrCommand.History(cmd.Context(), flags.Limit)
		},
	}
	cmd.Flags().IntVar(&flags.Limit, "limit", 20, "number of events to show")
	return cmd
}

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leefowlercu/agent-hook-guardrails/internal/config"
	"github.com/leefowlercu/agent-hook-guardrails/internal/guard"
	"github.com/leefowlercu/agent-hook-guardrails/internal/processor"
)

// exitCode is the status the invoked hook asked the process to exit with
var exitCode int

// cfg is the configuration resolved by runInit, nil until then
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "hook-guardrails",
	Short: "Guardrail hooks for AI coding assistants",
	Long: "\nhook-guardrails is a set of hooks that inspect the tool calls of an AI coding " +
		"assistant and allow, warn about, or block them using text-pattern heuristics.\n\n" +
		"Each subcommand is one hook. It reads a single hook event from stdin as JSON, writes " +
		"warnings and block explanations to stderr, and exits 2 to block. Logging goes to the " +
		"configured log file only.",
	PersistentPreRunE: runInit,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (default: ~/.agent-hooks/guardrails/config.yaml)")
	rootCmd.PersistentFlags().String("framework", config.DefaultConfig.Framework, "Hook framework to use (e.g., 'claude')")
	rootCmd.PersistentFlags().String("log-level", config.DefaultConfig.Logging.Level, "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultConfig.Logging.Format, "Logging format (json, text)")
	rootCmd.PersistentFlags().String("log-file", config.DefaultConfig.Logging.LogFile, "Path to log file (default: logging disabled)")

	// Bind flags to viper
	viper.BindPFlag("framework", rootCmd.PersistentFlags().Lookup("framework"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("logging.log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	// One subcommand per guard; the registry is only consulted for names here
	for _, g := range guard.NewDefaultRegistry(slog.New(slog.NewTextHandler(io.Discard, nil))).List() {
		rootCmd.AddCommand(newGuardCmd(g.Name(), g.Description()))
	}

	// Add version command
	rootCmd.AddCommand(versionCmd)

	// Enable --version flag on root command
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("hook-guardrails version {{.Version}}\n")
}

func newGuardCmd(name, description string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: description,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := processor.Process(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, name)
			exitCode = code
			return err
		},
	}
}

// runInit loads configuration. A configuration that cannot be read never
// changes a verdict: the hooks fall back to the built-in defaults.
func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	if err := config.InitConfig(configPath); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "hook-guardrails: %v; using defaults\n", err)
		cfg = config.Defaults()
		return nil
	}

	loaded, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "hook-guardrails: %v; using defaults\n", err)
		cfg = config.Defaults()
		return nil
	}

	cfg = loaded
	return nil
}

// Execute runs the root command and returns the exit code for the process
func Execute() (int, error) {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	err := rootCmd.Execute()

	if err != nil {
		cmd, _, _ := rootCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = rootCmd
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Fprintf(os.Stderr, "\n")
			cmd.SetOut(os.Stderr)
			cmd.Usage()
		}

		return 1, err
	}

	return exitCode, nil
}

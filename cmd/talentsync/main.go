// Package main provides the talentsync CLI: the LaTeX generation service and
// local render and compile commands.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/jonathan/talentsync/internal/config"
	"github.com/jonathan/talentsync/internal/logging"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool

	// Set by the root pre-run for every subcommand.
	appConfig *config.Config
	logger    *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "talentsync",
	Short: "TalentSync LaTeX resume generator",
	Long: "TalentSync turns structured resume data into LaTeX documents and, when a TeX " +
		"toolchain is installed, compiled PDFs. Run it as an HTTP service or use the " +
		"render-latex and compile commands locally.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (YAML, TOML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	l, err := logging.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	appConfig = cfg
	logger = l
	cmd.SetContext(logging.WithLogger(cmd.Context(), l))
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Package main provides the matcher CLI for ranking collaborators against a project.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/collab-matcher/internal/config"
	"github.com/jonathan/collab-matcher/internal/logging"
	"github.com/jonathan/collab-matcher/internal/matching"
)

// Exit codes reported to the shell
const (
	exitError         = 1
	exitNotFound      = 2
	exitUnprocessable = 3
)

var rootCmd = &cobra.Command{
	Use:   "matcher",
	Short: "Collaborator matching engine",
	Long: `Ranks candidate collaborators against a project by combining semantic similarity,
skill overlap, experience, academic year, peer reputation and availability.

Configuration can be loaded from a JSON file using --config. Environment variables
(DATABASE_URL, GEMINI_API_KEY, REDIS_ADDR, OTEL_EXPORTER_OTLP_ENDPOINT, JWT_SECRET) fill
values the file leaves unset, and command-line flags override both.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

var (
	rootConfigPath  string
	rootVerbose     bool
	rootJSONLogs    bool
	rootDatabaseURL string
)

// Settings resolved before any subcommand runs
var (
	cfg    config.Config
	logger = zap.NewNop()
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	flags.BoolVarP(&rootVerbose, "verbose", "v", false, "Print detailed debug information")
	flags.BoolVar(&rootJSONLogs, "json-logs", false, "Emit logs as JSON")
	flags.StringVar(&rootDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
}

// loadSettings merges the config file, the environment and the defaults, then applies flag overrides
func loadSettings(cmd *cobra.Command, _ []string) error {
	var loaded config.Config
	if rootConfigPath != "" {
		fileCfg, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		loaded = *fileCfg
	}

	env := config.Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		APIKey:          os.Getenv("GEMINI_API_KEY"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		TracingEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
	}
	merged := loaded.MergeWithDefaults(env)
	merged = merged.MergeWithDefaults(config.Defaults())

	flags := cmd.Flags()
	if flags.Changed("db-url") {
		merged.DatabaseURL = rootDatabaseURL
	}
	if flags.Changed("verbose") {
		merged.Verbose = rootVerbose
	}
	if flags.Changed("json-logs") {
		merged.JSONLogs = rootJSONLogs
	}

	if err := merged.Validate(); err != nil {
		return err
	}

	l, err := logging.New(merged.JSONLogs, merged.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	cfg = merged
	logger = l
	if rootConfigPath != "" {
		logger.Debug("loaded config", zap.String("path", rootConfigPath))
	}
	return nil
}

// exitCode maps a command error onto the process exit status
func exitCode(err error) int {
	switch {
	case matching.IsNotFound(err):
		return exitNotFound
	case matching.IsUnprocessable(err):
		return exitUnprocessable
	default:
		return exitError
	}
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

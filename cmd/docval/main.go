package main

import (
	"context"
	"os"
	"strings"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/logger"
	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/presenter"
	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/runner"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	viper.SetEnvPrefix("DOCVAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.docval")
	viper.AddConfigPath("./.docval")

	// A missing config file is fine
	_ = viper.ReadInConfig()

	runner.SetViperDefaults()
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "fmt")
}

// exitError carries a non-zero exit status out of a command without an
// additional error message
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return "validation failed"
}

var rootCmd = &cobra.Command{
	Use:   "docval",
	Short: "Validate documentation front matter and generate the docs registry",
	Long: `docval checks the YAML front matter of every markdown document under the docs
root, reports canonical conflicts and near-duplicate inbox submissions, and
regenerates the docs registry when the corpus is clean.

Running docval without a subcommand is the same as "docval validate".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Configure(viper.GetString("log_level"), viper.GetString("log_format")); err != nil {
			return err
		}
		shutdown, err := initTracing(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "failed to initialize tracing")
		}
		shutdownTracing = shutdown
		return nil
	},
	RunE: runValidate,
}

var shutdownTracing = func(context.Context) error { return nil }

func main() {
	rootCmd.PersistentFlags().String("docs-dir", runner.DefaultDocsDir, "Documentation root directory")
	rootCmd.PersistentFlags().String("registry", runner.DefaultRegistryPath, "Registry output path")
	rootCmd.PersistentFlags().StringSlice("exclude", nil, "Path substrings to skip (default index/, archive/)")
	rootCmd.PersistentFlags().Bool("no-fingerprint", false, "Disable content fingerprinting for near-duplicate detection")
	rootCmd.PersistentFlags().Bool("no-fuzzy", false, "Disable fuzzy title matching for near-duplicate detection")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	addModeFlags(rootCmd)

	viper.BindPFlag("docs_dir", rootCmd.PersistentFlags().Lookup("docs-dir"))
	viper.BindPFlag("registry", rootCmd.PersistentFlags().Lookup("registry"))
	viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	withTracing(rootCmd)
	rootCmd.AddCommand(withTracing(validateCmd))
	rootCmd.AddCommand(withTracing(watchCmd))
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)

	ctx := context.Background()
	err := rootCmd.ExecuteContext(ctx)
	if shutdownErr := shutdownTracing(ctx); shutdownErr != nil {
		logger.G(ctx).WithError(shutdownErr).Warn("failed to shut down tracing")
	}

	var exitErr *exitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		os.Exit(exitErr.code)
	default:
		presenter.Error(err, "")
		os.Exit(1)
	}
}

package runner

import (
	"path/filepath"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/docs"
	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/validation"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// DefaultDocsDir is the documentation root relative to the project
	DefaultDocsDir = "docs"
)

// DefaultRegistryPath is where the registry is written relative to the project
var DefaultRegistryPath = filepath.Join("docs", "index", "registry.json")

// Config is everything a run needs, resolved once before the run starts
type Config struct {
	DocsDir      string
	RegistryPath string
	Pattern      string
	Excludes     []string
	Rules        validation.Rules
	Similarity   validation.Similarity
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		DocsDir:      DefaultDocsDir,
		RegistryPath: DefaultRegistryPath,
		Pattern:      docs.DefaultPattern,
		Excludes:     append([]string(nil), docs.DefaultExcludes...),
		Rules:        validation.DefaultRules(),
		Similarity:   validation.DefaultSimilarity(),
	}
}

// SetViperDefaults registers the defaults so config files and env vars can
// override individual keys
func SetViperDefaults() {
	cfg := DefaultConfig()
	viper.SetDefault("docs_dir", cfg.DocsDir)
	viper.SetDefault("registry", cfg.RegistryPath)
	viper.SetDefault("include_pattern", cfg.Pattern)
	viper.SetDefault("exclude", cfg.Excludes)

	viper.SetDefault("rules.doc_types", cfg.Rules.DocTypes)
	viper.SetDefault("rules.statuses", cfg.Rules.Statuses)
	viper.SetDefault("rules.required_fields", cfg.Rules.RequiredFields)
	viper.SetDefault("rules.inbox_required_fields", cfg.Rules.InboxRequiredFields)
	viper.SetDefault("rules.doc_id_pattern", cfg.Rules.DocIDPattern)
	viper.SetDefault("rules.inbox_segment", cfg.Rules.InboxSegment)

	viper.SetDefault("similarity.fingerprint", cfg.Similarity.Fingerprint)
	viper.SetDefault("similarity.fuzzy_titles", cfg.Similarity.FuzzyTitles)
	viper.SetDefault("similarity.title_threshold", cfg.Similarity.TitleThreshold)
	viper.SetDefault("similarity.hamming_threshold", cfg.Similarity.HammingThreshold)
}

// ConfigFromViper resolves the run configuration from flags, env and config files
func ConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if v := viper.GetString("docs_dir"); v != "" {
		cfg.DocsDir = v
	}
	if v := viper.GetString("registry"); v != "" {
		cfg.RegistryPath = v
	}
	if v := viper.GetString("include_pattern"); v != "" {
		cfg.Pattern = v
	}
	if viper.IsSet("exclude") {
		cfg.Excludes = viper.GetStringSlice("exclude")
	}

	if err := viper.UnmarshalKey("rules", &cfg.Rules); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode rules configuration")
	}
	if err := viper.UnmarshalKey("similarity", &cfg.Similarity); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode similarity configuration")
	}

	return cfg, nil
}

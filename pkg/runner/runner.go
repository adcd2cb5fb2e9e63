// Package runner sequences a validation run: collect documents, run the
// validation passes, merge their findings and decide whether the registry is
// regenerated.
package runner

import (
	"context"
	"time"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/docs"
	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/logger"
	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/registry"
	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/telemetry"
	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/validation"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// Mode selects what happens to the registry after validation
type Mode int

const (
	// ModeGenerate writes the registry when there are no errors
	ModeGenerate Mode = iota
	// ModePreCommit only validates
	ModePreCommit
	// ModeCheck validates and fails when the registry on disk is stale
	ModeCheck
)

func (m Mode) String() string {
	switch m {
	case ModePreCommit:
		return "pre-commit"
	case ModeCheck:
		return "check"
	default:
		return "generate"
	}
}

// Result is the outcome of one run
type Result struct {
	Documents []*docs.Document
	Errors    []validation.Finding
	Warnings  []validation.Finding
	// Notices are process-level messages such as disabled capabilities
	Notices []string
	// Registry is set whenever the registry was built
	Registry        *registry.Registry
	RegistryWritten bool
	// Comparison is set in check mode when the registry was compared
	Comparison *registry.Comparison
}

// ExitCode is 1 when any error was found, 0 otherwise
func (r *Result) ExitCode() int {
	if len(r.Errors) > 0 {
		return 1
	}
	return 0
}

// Runner executes validation runs for one configuration
type Runner struct {
	config    Config
	collector *docs.Collector
	validator *validation.Validator
	now       func() time.Time
}

// Option is a function that configures a Runner
type Option func(*Runner)

// WithClock overrides the time source used for the registry timestamp
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New creates a Runner, failing on invalid configuration
func New(config Config, opts ...Option) (*Runner, error) {
	validator, err := validation.New(config.Rules, config.Similarity)
	if err != nil {
		return nil, err
	}

	collector, err := docs.NewCollector(config.DocsDir,
		docs.WithPattern(config.Pattern),
		docs.WithExcludes(config.Excludes...),
		docs.WithFingerprints(config.Similarity.Fingerprint),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create document collector")
	}

	r := &Runner{
		config:    config,
		collector: collector,
		validator: validator,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the configuration the runner was created with
func (r *Runner) Config() Config {
	return r.config
}

// Run performs a single authoritative pass over the docs root
func (r *Runner) Run(ctx context.Context, mode Mode) (*Result, error) {
	result := &Result{}
	err := telemetry.WithSpan(ctx, "docval.run", func(ctx context.Context) error {
		return r.run(ctx, mode, result)
	}, attribute.String("mode", mode.String()), attribute.String("docs_dir", r.config.DocsDir))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Runner) run(ctx context.Context, mode Mode, result *Result) error {
	log := logger.G(ctx).WithField("mode", mode.String())

	result.Notices = r.notices()

	documents, err := r.collector.Collect(ctx)
	if err != nil {
		return err
	}
	result.Documents = documents
	log.WithField("documents", len(documents)).Info("collected documents")

	findings, err := r.validate(ctx, documents)
	if err != nil {
		return err
	}
	result.Errors, result.Warnings = validation.Split(findings)
	telemetry.SetAttributes(ctx,
		attribute.Int("documents", len(documents)),
		attribute.Int("errors", len(result.Errors)),
		attribute.Int("warnings", len(result.Warnings)),
	)

	switch mode {
	case ModePreCommit:
		log.Debug("pre-commit mode, registry untouched")
	case ModeGenerate:
		if len(result.Errors) > 0 {
			log.WithField("errors", len(result.Errors)).Info("skipping registry generation due to validation errors")
			telemetry.AddEvent(ctx, "registry.skipped", attribute.Int("errors", len(result.Errors)))
			return nil
		}
		result.Registry = registry.Build(documents, r.now())
		if err := telemetry.WithSpan(ctx, "docval.registry.write", func(context.Context) error {
			return registry.Write(r.config.RegistryPath, result.Registry)
		}); err != nil {
			return err
		}
		result.RegistryWritten = true
		log.WithField("path", r.config.RegistryPath).Info("registry generated")
	case ModeCheck:
		if len(result.Errors) > 0 {
			return nil
		}
		result.Registry = registry.Build(documents, r.now())
		cmp, err := registry.Compare(r.config.RegistryPath, result.Registry)
		if err != nil {
			return err
		}
		result.Comparison = &cmp
		if !cmp.UpToDate() {
			telemetry.AddEvent(ctx, "registry.stale", attribute.Bool("exists", cmp.Exists))
			result.Errors = append(result.Errors, validation.Errorf(r.config.RegistryPath,
				"Registry is out of date; run validation without --check to regenerate it"))
		}
		log.WithField("previous_generated_at", cmp.PreviousGeneratedAt).WithField("up_to_date", cmp.UpToDate()).Info("registry compared")
	}

	return nil
}

// validate runs the three read-only passes concurrently. Each pass owns its
// slice; the merge re-sorts by path so output does not depend on scheduling.
func (r *Runner) validate(ctx context.Context, documents []*docs.Document) ([]validation.Finding, error) {
	var metadata, canonical, duplicates []validation.Finding

	g, gctx := errgroup.WithContext(ctx)
	pass := func(name string, fn func() []validation.Finding, out *[]validation.Finding) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			telemetry.WithSpanFunc(gctx, "docval.validate."+name, func(context.Context) {
				*out = fn()
			})
			return nil
		})
	}
	pass("metadata", func() []validation.Finding { return r.validator.ValidateAll(documents) }, &metadata)
	pass("canonical", func() []validation.Finding { return r.validator.CheckCanonical(documents) }, &canonical)
	pass("duplicates", func() []validation.Finding { return r.validator.DetectNearDuplicates(documents) }, &duplicates)
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "validation interrupted")
	}

	merged := make([]validation.Finding, 0, len(metadata)+len(canonical)+len(duplicates))
	merged = append(merged, metadata...)
	merged = append(merged, canonical...)
	merged = append(merged, duplicates...)
	validation.SortByPath(merged)
	return merged, nil
}

func (r *Runner) notices() []string {
	var notices []string
	if !r.config.Similarity.Fingerprint {
		notices = append(notices, "Note: content fingerprinting is disabled; near-duplicate detection uses titles only.")
	}
	if !r.config.Similarity.FuzzyTitles {
		notices = append(notices, "Note: fuzzy title matching is disabled; near-duplicate detection uses content fingerprints only.")
	}
	return notices
}

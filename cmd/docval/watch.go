package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/logger"
	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/presenter"
	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/runner"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	DebounceTime int
	Write        bool
	Quiet        bool
}

// NewWatchConfig creates a new WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		DebounceTime: 500,
	}
}

// Validate validates the WatchConfig and returns an error if invalid
func (c *WatchConfig) Validate() error {
	if c.DebounceTime < 0 {
		return errors.Errorf("debounce time cannot be negative: %d", c.DebounceTime)
	}
	return nil
}

// Mode is the run mode used for each revalidation
func (c *WatchConfig) Mode() runner.Mode {
	if c.Write {
		return runner.ModeGenerate
	}
	return runner.ModePreCommit
}

// FileEvent represents a file system event with additional metadata
type FileEvent struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Revalidate the docs whenever a document changes",
	Long: `Watch the docs root and rerun validation whenever a markdown document is
created, modified, renamed or removed. Bursts of changes are debounced into a
single run.

By default the registry is never written; pass --write to regenerate it after
every clean run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		config := getWatchConfigFromFlags(cmd)
		if err := config.Validate(); err != nil {
			return errors.Wrap(err, "invalid configuration")
		}

		cfg, err := configFromCommand(cmd)
		if err != nil {
			return err
		}

		p := presenter.New()
		p.SetQuiet(config.Quiet)
		return runWatchMode(ctx, cfg, config, p)
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().IntP("debounce", "d", defaults.DebounceTime, "Debounce time in milliseconds for file change events")
	watchCmd.Flags().Bool("write", defaults.Write, "Regenerate the registry after every clean run")
	watchCmd.Flags().BoolP("quiet", "q", defaults.Quiet, "Only print errors and the pass/fail verdict")
}

func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()

	if debounceTime, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.DebounceTime = debounceTime
	}
	if write, err := cmd.Flags().GetBool("write"); err == nil {
		config.Write = write
	}
	if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
		config.Quiet = quiet
	}

	return config
}

func runWatchMode(ctx context.Context, cfg runner.Config, config *WatchConfig, p presenter.Presenter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	filter := newEventFilter(cfg)
	if err := addWatchDirs(ctx, watcher, filter); err != nil {
		return err
	}

	events := make(chan FileEvent)
	debouncedEvents := make(chan FileEvent)
	go debounceFileEvents(ctx, events, debouncedEvents, time.Duration(config.DebounceTime)*time.Millisecond)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !filter.excludedDir(event.Name) {
						if err := watcher.Add(event.Name); err != nil {
							logger.G(ctx).WithError(err).WithField("directory", event.Name).Warn("failed to watch new directory")
						}
						continue
					}
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 || !filter.matches(event.Name) {
					continue
				}
				select {
				case events <- FileEvent{Path: event.Name, Op: event.Op, Time: time.Now()}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.G(ctx).WithError(err).Error("error watching files")
			case <-ctx.Done():
				return
			}
		}
	}()

	revalidate(ctx, cfg, config.Mode(), p)
	p.Info("Watching for document changes... Press Ctrl+C to stop")

	for {
		select {
		case event := <-debouncedEvents:
			p.Separator()
			p.Info(fmt.Sprintf("Change detected: %s (%s)", event.Path, event.Op))
			logger.G(ctx).WithField("file", event.Path).WithField("operation", event.Op.String()).Debug("file change detected")
			revalidate(ctx, cfg, config.Mode(), p)
		case <-ctx.Done():
			p.Warning("Stopping watcher")
			return nil
		}
	}
}

// revalidate reports run errors instead of returning them so the watcher
// keeps going when, for instance, the docs root is briefly missing
func revalidate(ctx context.Context, cfg runner.Config, mode runner.Mode, p presenter.Presenter) {
	if _, err := execute(ctx, cfg, mode, p); err != nil {
		p.Error(err, "validation run failed")
	}
}

// debounceFileEvents coalesces bursts of events. All events share one timer
// since any change reruns the whole corpus; the latest event is forwarded.
func debounceFileEvents(ctx context.Context, input <-chan FileEvent, output chan<- FileEvent, delay time.Duration) {
	var (
		latest FileEvent
		fire   <-chan time.Time
	)

	for {
		select {
		case event, ok := <-input:
			if !ok {
				return
			}
			latest = event
			fire = time.After(delay)
		case <-fire:
			fire = nil
			select {
			case output <- latest:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// eventFilter decides which paths below the docs root trigger a run. It
// mirrors the collector: same include pattern and exclusions.
type eventFilter struct {
	root     string
	pattern  string
	excludes []string
	registry string
}

func newEventFilter(cfg runner.Config) *eventFilter {
	registry, _ := filepath.Abs(cfg.RegistryPath)
	return &eventFilter{
		root:     cfg.DocsDir,
		pattern:  cfg.Pattern,
		excludes: cfg.Excludes,
		registry: registry,
	}
}

func (f *eventFilter) rel(path string) (string, bool) {
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (f *eventFilter) excluded(rel string) bool {
	for _, pattern := range f.excludes {
		if pattern != "" && strings.Contains(rel, pattern) {
			return true
		}
	}
	return false
}

func (f *eventFilter) excludedDir(path string) bool {
	rel, ok := f.rel(path)
	if !ok {
		return true
	}
	return rel != "." && f.excluded(rel+"/")
}

func (f *eventFilter) matches(path string) bool {
	if abs, err := filepath.Abs(path); err == nil && abs == f.registry {
		return false
	}
	rel, ok := f.rel(path)
	if !ok || f.excluded(rel) {
		return false
	}
	matched, err := doublestar.Match(f.pattern, rel)
	return err == nil && matched
}

func addWatchDirs(ctx context.Context, watcher *fsnotify.Watcher, filter *eventFilter) error {
	count := 0
	err := filepath.WalkDir(filter.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if filter.excludedDir(path) {
			logger.G(ctx).WithField("directory", path).Debug("skipping excluded directory")
			return filepath.SkipDir
		}
		count++
		return watcher.Add(path)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to watch %s", filter.root)
	}

	logger.G(ctx).WithField("directories", count).Info("file watcher initialized")
	return nil
}

package cli

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/spanedit/internal/logging"
	"github.com/yaklabco/spanedit/pkg/config"
	"github.com/yaklabco/spanedit/pkg/rewrite"
	"github.com/yaklabco/spanedit/pkg/runner"
)

// defaultDebounce groups the bursts of events editors emit on save.
const defaultDebounce = 300 * time.Millisecond

type watchFlags struct {
	debounce   time.Duration
	ignore     []string
	extensions []string
	only       []string
}

func newWatchCommand() *cobra.Command {
	var cfg config.Config
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Rewrite files whenever they change",
		Long: `Apply the configured rules once, then keep watching the selected files
and rewrite each one again after it changes. Stop with Ctrl-C.

New files are picked up in directories that already held selected files.

Examples:
  spanedit watch docs/
  spanedit watch --dry-run --debounce 1s`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, &cfg, flags)
		},
	}

	cmd.Flags().BoolVarP(&cfg.DryRun, "dry-run", "n", false, "log pending edits without writing")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation when writing")
	cmd.Flags().IntVarP(&cfg.Jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", defaultDebounce, "quiet period before rewriting")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "only watch files with these extensions")
	cmd.Flags().StringSliceVar(&flags.only, "only", nil, "run only the named rules")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *watchFlags) error {
	cliCfg.Write = !cliCfg.DryRun
	cliCfg.Ignore = flags.ignore
	cliCfg.Extensions = flags.extensions
	cliCfg.Only = flags.only

	workDir, err := workingDir()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, workDir, cliCfg)
	if err != nil {
		return err
	}
	if len(cfg.ActiveRules()) == 0 {
		return fmt.Errorf("%w: no rules to apply; add rules to .spanedit.yml", ErrUsage)
	}
	engine, err := rewrite.New(cfg)
	if err != nil {
		return errors.Join(ErrConfig, err)
	}

	opts := runner.OptionsFromConfig(cfg)
	opts.Paths = args
	opts.WorkingDir = workDir

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewInteractive()
	if logging.FromContext(ctx).GetLevel() == log.DebugLevel {
		logger.SetLevel(log.DebugLevel)
	}

	w := &watchSession{
		runner:  runner.New(engine),
		opts:    opts,
		logger:  logger,
		written: make(map[string][sha256.Size]byte),
	}
	return w.run(ctx, flags.debounce)
}

type watchSession struct {
	runner *runner.Runner
	opts   runner.Options
	logger *log.Logger

	// written holds the hash of the content last written per file, so the
	// events caused by our own writes do not trigger another pass.
	written map[string][sha256.Size]byte
}

func (w *watchSession) run(ctx context.Context, delay time.Duration) error {
	files, err := runner.Discover(ctx, w.opts)
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}
	accept, err := runner.Selector(w.opts)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := watchDirs(files)
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.process(ctx, files)
	w.logger.Info("watching for changes",
		logging.FieldFiles, len(files),
		logging.FieldPaths, len(dirs))

	// Files named on the command line are watched even when the directory
	// filters would reject them.
	named := make(map[string]bool, len(files))
	for _, file := range files {
		named[file] = true
	}
	selected := func(path string) bool { return named[path] || accept(path) }

	batches := make(chan []string)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return debounce(gctx, watcher.Events, watcher.Errors, selected, delay, batches, w.logger)
	})
	g.Go(func() error {
		for batch := range batches {
			w.process(gctx, batch)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	w.logger.Info("stopped watching")
	return nil
}

// process rewrites files that still exist and logs each outcome. It is
// only called from one goroutine at a time.
func (w *watchSession) process(ctx context.Context, files []string) {
	present := slices.DeleteFunc(slices.Clone(files), func(path string) bool {
		content, err := os.ReadFile(path)
		if err != nil {
			return true
		}
		last, ok := w.written[path]
		return ok && last == sha256.Sum256(content)
	})
	if len(present) == 0 {
		return
	}

	opts := w.opts
	opts.Paths = present

	result, err := w.runner.Run(ctx, opts)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("rewrite failed", logging.FieldError, err)
		}
		return
	}

	for _, file := range result.Files {
		switch {
		case file.Error != nil:
			w.logger.Error("rewrite failed", logging.FieldPath, file.Path, logging.FieldError, file.Error)
		case file.Written:
			w.written[file.Path] = sha256.Sum256(file.Rewrite.Content)
			w.logger.Info("rewrote", logging.FieldPath, file.Path,
				logging.FieldEdits, file.Rewrite.Edits, logging.FieldBackup, file.BackupCreated)
		case file.Changed():
			w.logger.Info("changes pending", logging.FieldPath, file.Path, logging.FieldEdits, file.Rewrite.Edits)
		default:
			w.logger.Debug("unchanged", logging.FieldPath, file.Path)
		}
	}
}

// watchDirs returns the sorted parent directories of files.
func watchDirs(files []string) []string {
	var dirs []string
	for _, file := range files {
		dirs = append(dirs, filepath.Dir(file))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

// debounce collects selected paths from write and create events and sends
// them as one sorted batch once no event arrived for delay. It closes out
// when it returns.
func debounce(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	selected func(string) bool,
	delay time.Duration,
	out chan<- []string,
	logger *log.Logger,
) error {
	defer close(out)

	pending := make(map[string]struct{})
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !selected(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			fire = time.After(delay)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logging.FieldError, err)

		case <-fire:
			fire = nil
			batch := make([]string, 0, len(pending))
			for path := range pending {
				batch = append(batch, path)
			}
			clear(pending)
			slices.Sort(batch)

			select {
			case out <- batch:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

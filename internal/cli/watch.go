package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	flag "github.com/spf13/pflag"

	"mdgraph/internal/build"
	"mdgraph/internal/corpus"
)

const defaultDebounce = 500 * time.Millisecond

func newWatchCmd(cfg corpus.Config) *Command {
	flags := flag.NewFlagSet("watch", flag.ContinueOnError)
	debounce := flags.Duration("debounce", defaultDebounce, "Delay after the last change before re-checking")

	return &Command{
		Flags: flags,
		Usage: "watch [flags]",
		Short: "Re-run check whenever the corpus changes",
		Long: `Watch the corpus directory recursively and re-run the full check after each
burst of changes. One status line per pass goes to stdout; findings go to
stderr. Runs until interrupted.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: %s", errUnexpectedArg, args[0])
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer func() { _ = watcher.Close() }()

			addErr := addWatchesRecursive(watcher, cfg.CorpusDirAbs)
			if addErr != nil {
				return addErr
			}

			runCheckPass(ctx, o, cfg)

			// The timer starts drained; a change arms it, further changes
			// within the window push it out.
			timer := time.NewTimer(*debounce)
			if !timer.Stop() {
				<-timer.C
			}

			for {
				select {
				case <-ctx.Done():
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}

					if event.Op.Has(fsnotify.Create) {
						if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
							_ = addWatchesRecursive(watcher, event.Name)
							timer.Reset(*debounce)

							continue
						}
					}

					if strings.HasSuffix(event.Name, ".md") {
						timer.Reset(*debounce)
					}

				case watchErr, ok := <-watcher.Errors:
					if !ok {
						return nil
					}

					o.ErrPrintln("warning: watcher:", watchErr)

				case <-timer.C:
					runCheckPass(ctx, o, cfg)
				}
			}
		},
	}
}

// addWatchesRecursive watches every non-hidden directory under root. fsnotify
// watches are per-directory, not recursive.
func addWatchesRecursive(watcher *fsnotify.Watcher, root string) error {
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() {
			return nil
		}

		if path != root && entry.Name()[0] == '.' {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
	if walkErr != nil {
		return fmt.Errorf("watching corpus: %w", walkErr)
	}

	return nil
}

func runCheckPass(ctx context.Context, o *IO, cfg corpus.Config) {
	stamp := time.Now().Format("15:04:05")

	outcome, err := build.Run(ctx, cfg)
	if err != nil {
		o.ErrPrintln(stamp, "error:", err)

		return
	}

	for _, warning := range outcome.Warnings {
		o.ErrPrintln("warning:", warning.String())
	}

	for _, line := range outcome.Errors {
		o.ErrPrintln(line.String())
	}

	o.Printf("%s corpus %s: %d documents, %d errors, %d warnings\n",
		stamp, outcome.State, len(outcome.Results), len(outcome.Errors), len(outcome.Warnings))
}

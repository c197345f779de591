package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mdgraph/internal/corpus"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
)

// Run is the main entry point. Returns exit code.
//
// sigCh, when non-nil, cancels the command context on the first signal; watch
// relies on this for clean shutdown.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) < minArgs {
		printUsage(out)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == helpFlag {
		printUsage(out)

		return 0
	}

	cfg, err := corpus.LoadConfig(corpus.LoadConfigInput{
		WorkDirOverride:   flags.workDir,
		ConfigPath:        flags.configPath,
		CorpusDirOverride: flags.corpusDir,
		Env:               env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	cmd, ok := commands(cfg, stdin)[name]
	if !ok {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut)

		return 1
	}

	ioCtx := NewIO(out, errOut)
	code := cmd.Run(ctx, ioCtx, flags.remaining[1:])
	ioCtx.Finish()

	return code
}

// commands builds the command registry against a resolved config.
func commands(cfg corpus.Config, stdin io.Reader) map[string]*Command {
	all := []*Command{
		newCheckCmd(cfg),
		newLsCmd(cfg),
		newShowCmd(cfg),
		newExportCmd(cfg),
		newNewCmd(cfg, stdin),
		newWatchCmd(cfg),
		newPrintConfigCmd(cfg),
	}

	registry := make(map[string]*Command, len(all))
	for _, cmd := range all {
		registry[cmd.Name()] = cmd
	}

	return registry
}

type globalFlags struct {
	workDir    string
	configPath string
	corpusDir  string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if (arg == "-C" || arg == "--cwd") && idx+1 < len(args) {
		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// --corpus-dir flag
	if arg == "--corpus-dir" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.corpusDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--corpus-dir="); ok {
		flags.corpusDir = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(writer io.Writer) {
	fprintln(writer, `mdgraph - markdown corpus schema and graph checker

Usage: mdgraph [options] <command> [args]

Options:
  -C, --cwd <dir>      Run as if started in <dir>
  -c, --config <file>  Use specified config file
  --corpus-dir <dir>   Override the corpus directory

Commands:
  check [--json]         Validate frontmatter, build the graph, check integrity
  ls [flags]             List documents as graph nodes
  show <id>              Show one node with its edges
  export [flags]         Write the content graph as JSON
  new <topic> [flags]    Scaffold a new document with valid frontmatter
  watch [flags]          Re-run check whenever the corpus changes
  print-config           Show resolved configuration

Exit codes for check: 0 validated, 2 schema-failed, 3 graph-failed,
4 integrity-failed. 1 is reserved for usage and IO errors.`)
}

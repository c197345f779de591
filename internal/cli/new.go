package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"mdgraph/internal/corpus"
	"mdgraph/internal/frontmatter"
)

var (
	errTopicRequired = errors.New("topic is required")
	errTitleRequired = errors.New("title is required (use --title or --interactive)")
	errPhaseRequired = errors.New("phase is required (use --phase or --interactive)")
	errFileExists    = errors.New("file already exists")
)

func newNewCmd(cfg corpus.Config, stdin io.Reader) *Command {
	flags := flag.NewFlagSet("new", flag.ContinueOnError)
	title := flags.StringP("title", "t", "", "Document title")
	depth := flags.String("depth", "", "Depth level (surface|mid-depth|deep-water)")
	phase := flags.String("phase", "", "Lifecycle phase")
	docType := flags.String("type", "", "Document type")
	personas := flags.StringSlice("personas", nil, "Target personas (repeatable)")
	interactive := flags.BoolP("interactive", "i", false, "Prompt for missing fields")

	return &Command{
		Flags: flags,
		Usage: "new <topic> [flags]",
		Short: "Scaffold a new document with valid frontmatter",
		Long: `Create a new markdown document under the corpus directory with frontmatter
that passes schema validation. The file name is derived from topic and depth
("auth-surface.md"); an existing file is never overwritten.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errTopicRequired
			}

			if len(args) > 1 {
				return fmt.Errorf("%w: %s", errUnexpectedArg, args[1])
			}

			topic := args[0]

			if *depth != "" && !corpus.IsValidDepth(*depth) {
				return fmt.Errorf("%w: %s", errInvalidDepth, *depth)
			}

			if *interactive {
				promptErr := promptMissing(stdin, title, depth, phase)
				if promptErr != nil {
					return promptErr
				}
			}

			if *title == "" {
				return errTitleRequired
			}

			if *phase == "" {
				return errPhaseRequired
			}

			content := composeDocument(*title, *phase, topic, *depth, *docType, *personas)

			// Round-trip through the real validator so a scaffold can never
			// produce a document that check would reject.
			fm, _, parseErr := frontmatter.Parse([]byte(content))
			if parseErr != nil {
				return fmt.Errorf("composed frontmatter does not parse: %w", parseErr)
			}

			if _, fieldErrs := corpus.Validate(fm); len(fieldErrs) > 0 {
				return fmt.Errorf("composed frontmatter is invalid: %s", fieldErrs[0].String())
			}

			rel := topic + ".md"
			if *depth != "" {
				rel = topic + "-" + *depth + ".md"
			}

			path := filepath.Join(cfg.CorpusDirAbs, rel)

			if _, statErr := os.Stat(path); statErr == nil {
				return fmt.Errorf("%w: %s", errFileExists, rel)
			}

			mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755)
			if mkdirErr != nil {
				return fmt.Errorf("creating corpus directory: %w", mkdirErr)
			}

			writeErr := atomic.WriteFile(path, strings.NewReader(content))
			if writeErr != nil {
				return fmt.Errorf("writing document: %w", writeErr)
			}

			o.Println(rel)

			return nil
		},
	}
}

// promptMissing fills empty required fields from the user. A real terminal
// gets readline editing via liner; piped stdin falls back to plain line reads
// so scripted use keeps working.
func promptMissing(stdin io.Reader, title, depth, phase *string) error {
	prompt := plainPrompter(stdin)
	if file, ok := stdin.(*os.File); ok && file == os.Stdin {
		state := liner.NewLiner()
		defer state.Close()

		state.SetCtrlCAborts(true)

		prompt = func(label string) (string, error) {
			line, err := state.Prompt(label)
			if err != nil {
				if errors.Is(err, liner.ErrPromptAborted) {
					return "", errors.New("aborted")
				}

				return "", err
			}

			state.AppendHistory(line)

			return line, nil
		}
	}

	fields := []struct {
		label string
		value *string
	}{
		{"title: ", title},
		{"phase: ", phase},
		{"depth (optional): ", depth},
	}

	for _, field := range fields {
		if *field.value != "" {
			continue
		}

		answer, err := prompt(field.label)
		if err != nil {
			return err
		}

		*field.value = strings.TrimSpace(answer)
	}

	return nil
}

func plainPrompter(stdin io.Reader) func(string) (string, error) {
	if stdin == nil {
		stdin = strings.NewReader("")
	}

	reader := bufio.NewReader(stdin)

	return func(string) (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}

		return strings.TrimRight(line, "\n"), nil
	}
}

// composeDocument renders the scaffold frontmatter. Strings are emitted as
// double-quoted YAML scalars so titles with colons or quotes stay valid.
func composeDocument(title, phase, topic, depth, docType string, personas []string) string {
	var builder strings.Builder

	builder.WriteString("---\n")
	builder.WriteString("title: " + strconv.Quote(title) + "\n")
	builder.WriteString("phase: " + strconv.Quote(phase) + "\n")
	builder.WriteString("topic: " + strconv.Quote(topic) + "\n")

	if depth != "" {
		builder.WriteString("depth: " + strconv.Quote(depth) + "\n")
	}

	if docType != "" {
		builder.WriteString("type: " + strconv.Quote(docType) + "\n")
	}

	if len(personas) > 0 {
		builder.WriteString("personas:\n")

		for _, persona := range personas {
			builder.WriteString("  - " + strconv.Quote(persona) + "\n")
		}
	}

	builder.WriteString("---\n\n# " + title + "\n")

	return builder.String()
}

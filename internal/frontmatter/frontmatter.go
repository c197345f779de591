// Package frontmatter splits the fenced YAML metadata block from a markdown
// document and decodes it into an untyped mapping.
//
// The package only locates the delimiters and hands the enclosed block to the
// YAML decoder; it never interprets the document body. Schema validation of
// the decoded mapping happens downstream in the corpus package.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	delimiter = "---"

	// maxLines is the default limit on frontmatter block length. A missing
	// closing delimiter would otherwise swallow the whole document.
	maxLines = 200
)

var delimiterBytes = []byte(delimiter)

var (
	// ErrMissingOpenDelimiter is returned when the document does not start
	// with a frontmatter fence.
	ErrMissingOpenDelimiter = errors.New("missing opening frontmatter delimiter")

	// ErrMissingCloseDelimiter is returned when the opening fence is never
	// closed within the line limit.
	ErrMissingCloseDelimiter = errors.New("missing closing frontmatter delimiter")
)

// ParseOptions configures frontmatter parsing behavior.
type ParseOptions struct {
	// LineLimit is the maximum number of frontmatter lines allowed. A value
	// of 0 disables the limit.
	LineLimit int
}

// ParseOption mutates ParseOptions.
type ParseOption func(*ParseOptions)

// WithLineLimit sets the maximum number of frontmatter lines. Use 0 to
// disable the limit entirely.
func WithLineLimit(limit int) ParseOption {
	return func(opts *ParseOptions) {
		if limit < 0 {
			limit = 0
		}

		opts.LineLimit = limit
	}
}

// Parse splits src into frontmatter and body and decodes the frontmatter
// block. An empty block ("---\n---\n") is valid and yields an empty map. The
// body starts immediately after the closing delimiter line with leading blank
// lines trimmed.
//
// Example:
//
//	fm, body, err := frontmatter.Parse([]byte("---\ntopic: auth\n---\n# Title\n"))
//	if err != nil {
//		return err
//	}
//	_ = fm["topic"]
//	_ = body // "# Title\n"
func Parse(src []byte, opts ...ParseOption) (map[string]any, []byte, error) {
	options := ParseOptions{LineLimit: maxLines}

	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	first, rest, ok := cutLine(src)
	if !ok || !bytes.Equal(first, delimiterBytes) {
		return nil, nil, ErrMissingOpenDelimiter
	}

	var block []byte

	lines := 0
	closed := false

	for {
		line, after, more := cutLine(rest)
		if !more {
			break
		}

		rest = after

		if bytes.Equal(line, delimiterBytes) {
			closed = true

			break
		}

		lines++
		if options.LineLimit > 0 && lines > options.LineLimit {
			return nil, nil, ErrMissingCloseDelimiter
		}

		block = append(block, line...)
		block = append(block, '\n')
	}

	if !closed {
		return nil, nil, ErrMissingCloseDelimiter
	}

	fm := map[string]any{}
	if len(bytes.TrimSpace(block)) > 0 {
		err := yaml.Unmarshal(block, &fm)
		if err != nil {
			return nil, nil, fmt.Errorf("decode frontmatter: %w", err)
		}
	}

	return fm, trimLeadingBlankLines(rest), nil
}

// cutLine splits off the first line of src, dropping the trailing newline and
// any carriage return. The third return is false when src is empty.
func cutLine(src []byte) ([]byte, []byte, bool) {
	if len(src) == 0 {
		return nil, nil, false
	}

	idx := bytes.IndexByte(src, '\n')
	if idx == -1 {
		return trimCR(src), nil, true
	}

	return trimCR(src[:idx]), src[idx+1:], true
}

func trimCR(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}

	return line
}

func trimLeadingBlankLines(tail []byte) []byte {
	for len(tail) > 0 {
		if tail[0] == '\n' {
			tail = tail[1:]

			continue
		}

		if len(tail) >= 2 && tail[0] == '\r' && tail[1] == '\n' {
			tail = tail[2:]

			continue
		}

		break
	}

	return tail
}

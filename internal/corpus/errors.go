package corpus

import "errors"

var (
	// ErrConfigFileNotFound is returned when an explicit --config file does not exist.
	ErrConfigFileNotFound = errors.New("config file not found")

	// ErrConfigFileRead is returned when an explicit config file cannot be read.
	ErrConfigFileRead = errors.New("cannot read config file")

	// ErrConfigInvalid wraps parse failures in a config file.
	ErrConfigInvalid = errors.New("invalid config file")

	// ErrCorpusDirEmpty is returned when corpus_dir is explicitly set to "".
	ErrCorpusDirEmpty = errors.New("corpus_dir cannot be empty")

	// ErrBadIncludePattern is returned for a malformed include/exclude glob.
	ErrBadIncludePattern = errors.New("invalid glob pattern")
)

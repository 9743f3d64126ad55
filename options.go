package sibyl

import (
	"strconv"
	"sync"
)

// ConfigKey names a process-wide tracing option.
type ConfigKey string

const (
	// OptionFilePrefix is the filename prefix used when a FileBackend
	// is created without an explicit path.
	OptionFilePrefix ConfigKey = "tracing.file_prefix"
	// OptionOutputDir is the directory for auto-generated trace files.
	OptionOutputDir ConfigKey = "tracing.output_dir"
	// OptionBufferSize is the flush threshold backends start with when
	// no WithBufferSize override is given.
	OptionBufferSize ConfigKey = "tracing.buffer_size"
)

var optionDefaults = map[ConfigKey]string{
	OptionFilePrefix: "traces",
	OptionOutputDir:  ".",
	OptionBufferSize: strconv.Itoa(DefaultBufferSize),
}

// optionBufferSize resolves OptionBufferSize to an int, falling back to
// the built-in default on an unparseable override.
func optionBufferSize() int {
	n, err := strconv.Atoi(Option(OptionBufferSize))
	if err != nil {
		return DefaultBufferSize
	}
	return n
}

var (
	optionMu     sync.Mutex
	optionStacks = map[ConfigKey][]string{}
)

// Option returns the current value for key: the innermost SetOption
// override, or the built-in default.
func Option(key ConfigKey) string {
	optionMu.Lock()
	defer optionMu.Unlock()
	if stack := optionStacks[key]; len(stack) > 0 {
		return stack[len(stack)-1]
	}
	return optionDefaults[key]
}

// SetOption pushes a scoped override for key and returns a restore
// function that pops back to the prior value. Overrides stack; restore
// them in LIFO order:
//
//	restore := sibyl.SetOption(sibyl.OptionFilePrefix, "experiment")
//	defer restore()
func SetOption(key ConfigKey, value string) (restore func()) {
	optionMu.Lock()
	optionStacks[key] = append(optionStacks[key], value)
	optionMu.Unlock()

	return func() {
		optionMu.Lock()
		defer optionMu.Unlock()
		if stack := optionStacks[key]; len(stack) > 0 {
			optionStacks[key] = stack[:len(stack)-1]
		}
	}
}

// ResetOption drops every override for key, returning it to the
// built-in default.
func ResetOption(key ConfigKey) {
	optionMu.Lock()
	defer optionMu.Unlock()
	delete(optionStacks, key)
}

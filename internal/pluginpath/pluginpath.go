// Package pluginpath manages the ordered list of directories searched for
// dynamically loaded filter plugins.
package pluginpath

import (
	"os"
	"slices"
	"strings"
)

const (
	// EnvVar names the environment variable holding the initial plugin path.
	EnvVar = "HDF5_PLUGIN_PATH"

	// DefaultDir is used when EnvVar is not set.
	DefaultDir = "/usr/local/hdf5/plugin"
)

// Parse splits a plugin path string into directories. A zero sep accepts
// both ';' and the host list separator. Empty entries are dropped and
// surrounding whitespace is trimmed.
func Parse(text string, sep rune) []string {
	isSep := func(r rune) bool {
		if sep != 0 {
			return r == sep
		}
		return r == ';' || r == os.PathListSeparator
	}

	var dirs []string
	for _, field := range strings.FieldsFunc(text, isSep) {
		if dir := strings.TrimSpace(field); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Format joins directories with the host list separator.
func Format(dirs []string) string {
	return strings.Join(dirs, string(os.PathListSeparator))
}

// Initial returns the starting plugin path: configured when non-empty,
// else the value of EnvVar when it is set, else DefaultDir.
func Initial(configured []string, lookupEnv func(string) (string, bool)) []string {
	if len(configured) > 0 {
		return slices.Clone(configured)
	}
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if value, ok := lookupEnv(EnvVar); ok {
		return Parse(value, 0)
	}
	return []string{DefaultDir}
}

// Append returns dirs with dir added at the end.
func Append(dirs []string, dir string) []string {
	return append(slices.Clone(dirs), dir)
}

// Prepend returns dirs with dir added at the front.
func Prepend(dirs []string, dir string) []string {
	return append([]string{dir}, dirs...)
}

package config

const SourceFileExt = ".sgl"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".sgl", ".sigil"}

// ConfigFileName is looked up next to the source file (and in the
// working directory) to override the default limits.
const ConfigFileName = "sigil.yaml"

const (
	// DefaultExpansionDepth bounds nested macro expansion before the
	// expander gives up with MacroExpansionOverflow.
	DefaultExpansionDepth = 500

	// DefaultEvalDepth bounds evaluation nesting (calls, loops,
	// operand trees) before RecursionLimitExceeded.
	DefaultEvalDepth = 10000
)

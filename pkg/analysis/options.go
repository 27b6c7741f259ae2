package analysis

// SortField specifies how to sort analysis results.
type SortField string

const (
	// SortByCount sorts by edit count; ties keep run order.
	SortByCount SortField = "count"
	// SortByAlpha sorts by rule name or path.
	SortByAlpha SortField = "alpha"
)

// IsValid returns true if the sort field is valid.
func (s SortField) IsValid() bool {
	switch s {
	case SortByCount, SortByAlpha:
		return true
	default:
		return false
	}
}

// Options configures the Analyze function.
type Options struct {
	// IncludeUnchanged lists files without edits in ByFile.
	IncludeUnchanged bool

	// SortBy specifies how to sort ByFile and ByRule.
	SortBy SortField

	// SortDesc puts the highest counts first. Alphabetical order is
	// always ascending.
	SortDesc bool

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SortBy:   SortByCount,
		SortDesc: true,
	}
}

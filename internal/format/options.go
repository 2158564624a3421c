package format

// Options controls layout. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	IndentWidth   int
	UseTabs       bool
	MaxBlankLines int
	NewlineAtEOF  bool
	// MaxDepth is passed to the parser; 0 keeps its default.
	MaxDepth int
}

func DefaultOptions() Options {
	return Options{
		IndentWidth:   4,
		MaxBlankLines: 1,
		NewlineAtEOF:  true,
	}
}

func (o Options) withDefaults() Options {
	if o.IndentWidth <= 0 {
		o.IndentWidth = 4
	}
	if o.MaxBlankLines < 0 {
		o.MaxBlankLines = 0
	}
	return o
}

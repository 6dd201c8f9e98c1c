package csvparse

// Options configures one Parse call.
type Options struct {
	// Delimiter separates fields (default ',').
	Delimiter rune
	// HasHeader marks the first record as the header row (default true).
	HasHeader bool
	// SkipEmptyLines drops rows whose cells are all blank (default true).
	SkipEmptyLines bool
	// MaxFileSizeMB is the size ceiling in megabytes (default 10).
	MaxFileSizeMB float64
	// Encoding forces a charset; empty means auto-detect.
	Encoding string
	// AnalyzeLocations attaches a LocationAnalysis to the result.
	AnalyzeLocations bool
	// DuplicateHintPrecision is the geohash precision used for
	// possible-duplicate warnings; 0 disables them (default 7).
	DuplicateHintPrecision int
}

// DefaultMaxFileSizeMB is the default size ceiling.
const DefaultMaxFileSizeMB = 10

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Delimiter:              ',',
		HasHeader:              true,
		SkipEmptyLines:         true,
		MaxFileSizeMB:          DefaultMaxFileSizeMB,
		AnalyzeLocations:       true,
		DuplicateHintPrecision: 7,
	}
}

// MaxBytes converts the size ceiling to bytes.
func (o Options) MaxBytes() int64 {
	mb := o.MaxFileSizeMB
	if mb <= 0 {
		mb = DefaultMaxFileSizeMB
	}

	return int64(mb * 1024 * 1024)
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}

	return o.Delimiter
}

package candid

// Config bounds the resources a single decode may consume. Zero fields take
// the defaults from DefaultConfig.
type Config struct {
	// MaxTableEntries bounds the declared type-table size.
	MaxTableEntries int `yaml:"max_table_entries" json:"max_table_entries"`
	// MaxDepth bounds value nesting, including recursion through the table.
	// Records, variants, vectors and options each take a level, except that
	// an option around a record, variant or vector shares its payload's
	// level: a recursive list of n links needs a depth of n.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
	// MaxVecLength bounds the element count of any one vector.
	MaxVecLength int `yaml:"max_vec_length" json:"max_vec_length"`
	// MaxZeroSizedVecLength bounds vectors whose elements occupy no bytes,
	// such as vec null, which would otherwise cost nothing on the wire.
	MaxZeroSizedVecLength int `yaml:"max_zero_sized_vec_length" json:"max_zero_sized_vec_length"`
	// MaxBlobLength bounds text, blob and principal lengths in bytes.
	MaxBlobLength int `yaml:"max_blob_length" json:"max_blob_length"`
}

// DefaultConfig returns the default decode limits.
func DefaultConfig() Config {
	return Config{
		MaxTableEntries:       10000,
		MaxDepth:              10000,
		MaxVecLength:          1 << 24,
		MaxZeroSizedVecLength: 2048,
		MaxBlobLength:         1 << 26,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxTableEntries <= 0 {
		c.MaxTableEntries = d.MaxTableEntries
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.MaxVecLength <= 0 {
		c.MaxVecLength = d.MaxVecLength
	}
	if c.MaxZeroSizedVecLength <= 0 {
		c.MaxZeroSizedVecLength = d.MaxZeroSizedVecLength
	}
	if c.MaxBlobLength <= 0 {
		c.MaxBlobLength = d.MaxBlobLength
	}
	return c
}

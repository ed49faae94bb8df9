package lessons

// Config holds lesson store settings.
type Config struct {
	// Dir is the directory holding one text file per module.
	Dir string

	// Pattern maps a module ID to a file name inside Dir.
	Pattern string
}

// DefaultConfig returns the default lesson layout.
func DefaultConfig() Config {
	return Config{
		Dir:     "Lessons/biologie",
		Pattern: "modul%d.txt",
	}
}

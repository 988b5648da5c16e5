package filestore

// Per-call config keys understood by every adapter. Adapters may accept
// further backend-specific keys.
const (
	// ConfigVisibility takes "public" or "private".
	ConfigVisibility = "visibility"

	// ConfigMimetype sets the content type of the stored file.
	ConfigMimetype = "mimetype"
)

// Config is the per-call option mapping passed to write operations.
// A nil Config is valid and empty.
type Config map[string]any

// Clone returns a shallow copy of c. Clone of nil is an empty, non-nil Config.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// With returns a copy of c with key set to value.
func (c Config) With(key string, value any) Config {
	out := c.Clone()
	out[key] = value
	return out
}

// String returns the string value stored under key, or "".
func (c Config) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// Visibility returns the visibility requested by c, if any.
func (c Config) Visibility() (Visibility, bool) {
	switch v := c[ConfigVisibility].(type) {
	case Visibility:
		return v, v != ""
	case string:
		return Visibility(v), v != ""
	}
	return "", false
}

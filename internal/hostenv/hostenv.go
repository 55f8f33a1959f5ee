// Package hostenv binds the handful of environment-variable overrides the
// host process may set, using the caarlos0/env struct-tag binding style
// already pulled in transitively by mainer.
package hostenv

import "github.com/caarlos0/env/v6"

// Config holds the process-wide overrides read once at startup.
type Config struct {
	// LibPath overrides the default library search path used to resolve
	// `import x from name;` when -l/--lib is not given on the CLI.
	LibPath string `env:"LANG_LIB_PATH"`

	// MaxThreads caps the number of concurrently running system.thread
	// workers within one top-level run or call (each gets its own worker
	// pool). Zero means unbounded.
	MaxThreads int `env:"LANG_MAX_THREADS" envDefault:"0"`
}

// Load reads Config from the process environment, applying envDefault tags
// for anything unset.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

package dirfile

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arloliu/dirfile/engine"
	"github.com/arloliu/dirfile/engine/native"
	"github.com/arloliu/dirfile/internal/options"
)

// DefaultLogLevel is the minimum level logged when no WithLogger option is
// given. Diagnostics below it are only emitted to an explicit logger.
const DefaultLogLevel = zerolog.WarnLevel

// Config holds the settings applied by Open and FetchMany.
type Config struct {
	engine      engine.Engine
	logger      zerolog.Logger
	concurrency int
}

func newConfig(opts []Option) (*Config, error) {
	c := &Config{
		logger:      log.Logger.Level(DefaultLogLevel),
		concurrency: runtime.NumCPU(),
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	if c.engine == nil {
		eng, err := native.New(native.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		c.engine = eng
	}

	return c, nil
}

// Option represents a functional option for configuring Open and FetchMany.
// This is a type alias for the generic Option interface specialized for Config.
type Option = options.Option[*Config]

// WithEngine sets the format engine used to open dirfiles.
// The default is the pure-Go engine from the engine/native package.
func WithEngine(eng engine.Engine) Option {
	return options.New(func(c *Config) error {
		if eng == nil {
			return fmt.Errorf("engine must not be nil")
		}
		c.engine = eng

		return nil
	})
}

// WithLogger sets the logger for soft failures and diagnostics.
// The default is the global zerolog logger at the time Open is called,
// restricted to DefaultLogLevel.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logger
	})
}

// WithConcurrency limits the number of fields FetchMany reads at once.
// The default is runtime.NumCPU(). It has no effect on Open.
func WithConcurrency(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("invalid concurrency %d", n)
		}
		c.concurrency = n

		return nil
	})
}

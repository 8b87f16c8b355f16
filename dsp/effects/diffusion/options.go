package diffusion

const (
	defaultChannels       = 2
	defaultMaxDiffusionMs = 5.0
)

type config struct {
	channels       int
	maxDiffusionMs float64
}

// Option mutates the Diffuser construction config.
type Option func(*config)

func defaultConfig() config {
	return config{
		channels:       defaultChannels,
		maxDiffusionMs: defaultMaxDiffusionMs,
	}
}

// WithChannels sets the number of independent channels (1 for mono,
// 2 for stereo). Non-positive values are ignored.
func WithChannels(channels int) Option {
	return func(cfg *config) {
		if channels > 0 {
			cfg.channels = channels
		}
	}
}

// WithMaxDiffusionMs sets the maximum diffusion delay time in
// milliseconds used to size the delay-line grid. Non-positive values
// are ignored.
func WithMaxDiffusionMs(ms float64) Option {
	return func(cfg *config) {
		if ms > 0 {
			cfg.maxDiffusionMs = ms
		}
	}
}

func applyOptions(opts ...Option) config {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

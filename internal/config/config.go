package config

// Config holds all benchmark configuration.
type Config struct {
	Bench   BenchConfig   `mapstructure:"bench"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// BenchConfig describes what is matched and how often.
type BenchConfig struct {
	Pattern    string   `mapstructure:"pattern"`
	Inputs     []string `mapstructure:"inputs" validate:"min=1"`
	Iterations int      `mapstructure:"iterations" validate:"gt=0,lte=100000000"`
	Engines    []string `mapstructure:"engines" validate:"min=1,dive,oneof=derivative step stdlib"`
}

// EngineConfig mirrors the knobs of meta.Config that make sense on the
// command line.
type EngineConfig struct {
	Prefilter bool `mapstructure:"prefilter"`
	CacheSize int  `mapstructure:"cache_size" validate:"gte=0,lte=16777216"`
	MaxTerms  int  `mapstructure:"max_terms" validate:"gte=0"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// MetricsConfig contains the Prometheus endpoint settings. An empty Listen
// address disables the endpoint.
type MetricsConfig struct {
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port"`
}

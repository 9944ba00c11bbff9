package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load, so
// bench.iterations is set by DERIVBENCH_BENCH_ITERATIONS.
const EnvPrefix = "DERIVBENCH"

const (
	// DefaultPattern is the decimal number pattern the benchmark has always
	// been measured with.
	DefaultPattern = `^(0|[1-9][0-9]*)(\.[0-9]*)?$`

	// ANum is a long well-formed number.
	ANum = "31415926535897932384626.4338327950288419716939937"

	// NotANum is ANum with a second decimal point.
	NotANum = "31415926535897932384626.4338327.95028841971693993"
)

// ErrInvalid is wrapped by every validation failure returned from Load and
// Validate.
var ErrInvalid = errors.New("config validation failed")

var validate = validator.New(validator.WithRequiredStructEnabled())

func setDefaults(v *viper.Viper) {
	v.SetDefault("bench.pattern", DefaultPattern)
	v.SetDefault("bench.inputs", []string{ANum, NotANum})
	v.SetDefault("bench.iterations", 100000)
	v.SetDefault("bench.engines", []string{"derivative", "step", "stdlib"})
	v.SetDefault("engine.prefilter", true)
	v.SetDefault("engine.cache_size", 4096)
	v.SetDefault("engine.max_terms", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.listen", "")
}

// Load reads the configuration. Values come from, in increasing priority:
// built-in defaults, the file at path (skipped when path is empty) and
// DERIVBENCH_* environment variables. List values given through the
// environment are comma separated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags. It is exported so callers
// that override fields after Load can check the result again.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

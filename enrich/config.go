package enrich

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/gsva/core/parallel"
	"github.com/YuminosukeSato/gsva/kcdf"
	"github.com/YuminosukeSato/gsva/pkg/errors"
)

// Config is the file-level representation of the engine options. Key names
// follow the conventional option names of the method family; booleans are
// pointers so an absent key keeps its default.
type Config struct {
	Method     string  `yaml:"method"`
	Kernel     string  `yaml:"kcdf"`
	MaxDiff    *bool   `yaml:"mx.diff"`
	AbsRanking bool    `yaml:"abs.ranking"`
	Tau        float64 `yaml:"tau"`
	MinSize    int     `yaml:"min.sz"`
	MaxSize    int     `yaml:"max.sz"`
	SSGSEANorm *bool   `yaml:"ssgsea.norm"`
	Workers    int     `yaml:"workers"`
	ChunkSize  int     `yaml:"chunk.sz"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "enrich.LoadConfig")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "enrich.LoadConfig: parse")
	}
	return &cfg, nil
}

// Options translates the config into engine options, validating the
// enumerated fields. Workers <= 1 requests sequential execution; more
// requests a goroutine pool of that size.
func (c *Config) Options() ([]Option, error) {
	method, err := ParseMethod(c.Method)
	if err != nil {
		return nil, err
	}
	kernel, err := kcdf.ParseKernel(c.Kernel)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithMethod(method), WithKernel(kernel)}
	if c.MaxDiff != nil {
		opts = append(opts, WithMaxDiff(*c.MaxDiff))
	}
	if c.AbsRanking {
		opts = append(opts, WithAbsRanking(true))
	}
	if c.Tau != 0 {
		opts = append(opts, WithTau(c.Tau))
	}
	if c.MinSize != 0 || c.MaxSize != 0 {
		minSize, maxSize := c.MinSize, c.MaxSize
		if minSize == 0 {
			minSize = 1
		}
		if maxSize == 0 {
			maxSize = math.MaxInt
		}
		opts = append(opts, WithSizeBounds(minSize, maxSize))
	}
	if c.SSGSEANorm != nil {
		opts = append(opts, WithSSGSEANorm(*c.SSGSEANorm))
	}
	if c.Workers > 1 {
		opts = append(opts, WithExecutor(parallel.Pool{Workers: c.Workers}))
	}
	if c.ChunkSize > 0 {
		opts = append(opts, WithChunkSize(c.ChunkSize))
	}
	return opts, nil
}

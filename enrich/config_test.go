package enrich

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gsva/core/parallel"
	"github.com/YuminosukeSato/gsva/kcdf"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gsva.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
method: ssgsea
kcdf: none
mx.diff: false
tau: 0.75
min.sz: 5
max.sz: 500
ssgsea.norm: false
workers: 4
chunk.sz: 16
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	assert.Equal(t, MethodSSGSEA, o.Method)
	assert.Equal(t, kcdf.None, o.Kernel)
	assert.False(t, o.MaxDiff)
	assert.InDelta(t, 0.75, o.Tau, 1e-12)
	assert.Equal(t, 5, o.MinSize)
	assert.Equal(t, 500, o.MaxSize)
	assert.False(t, o.SSGSEANorm)
	assert.Equal(t, parallel.Pool{Workers: 4}, o.Executor)
	assert.Equal(t, 16, o.ChunkSize)
	require.NoError(t, o.validate())
}

func TestConfigDefaults(t *testing.T) {
	opts, err := (&Config{}).Options()
	require.NoError(t, err)

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	assert.Equal(t, MethodGSVA, o.Method)
	assert.Equal(t, kcdf.Gaussian, o.Kernel)
	assert.True(t, o.MaxDiff)
	assert.False(t, o.AbsRanking)
	assert.True(t, o.SSGSEANorm)
	assert.Equal(t, parallel.Sequential{}, o.Executor)
}

func TestConfigRejectsUnknownEnums(t *testing.T) {
	_, err := (&Config{Method: "camera"}).Options()
	assert.Error(t, err)

	_, err = (&Config{Kernel: "uniform"}).Options()
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEffectiveTauDefaults(t *testing.T) {
	o := defaultOptions()
	assert.InDelta(t, 1.0, o.effectiveTau(), 1e-12)

	o.Method = MethodSSGSEA
	assert.InDelta(t, 0.25, o.effectiveTau(), 1e-12)

	o.Tau = 2
	assert.InDelta(t, 2.0, o.effectiveTau(), 1e-12)
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"gsva", MethodGSVA, false},
		{"SSGSEA", MethodSSGSEA, false},
		{"zscore", MethodZScore, false},
		{"plage", MethodPLAGE, false},
		{"", MethodGSVA, false},
		{"fgsea", MethodGSVA, true},
	}
	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

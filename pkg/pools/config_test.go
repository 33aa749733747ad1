package pools

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "default", cfg.Name)
	assert.Equal(t, DefaultInitCount, cfg.InitCount)
	assert.Equal(t, DefaultGrowthCount, cfg.GrowthCount)
	assert.NoError(t, cfg.Validate())
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    Config
		wantErr string
	}{
		{
			name: "full",
			yaml: "name: frames\ninit_count: 8\ngrowth_count: 4\n",
			want: Config{Name: "frames", InitCount: 8, GrowthCount: 4},
		},
		{
			name: "defaults for absent fields",
			yaml: "name: frames\n",
			want: Config{Name: "frames", InitCount: DefaultInitCount, GrowthCount: DefaultGrowthCount},
		},
		{
			name: "explicit zero init",
			yaml: "init_count: 0\n",
			want: Config{Name: "default", InitCount: 0, GrowthCount: DefaultGrowthCount},
		},
		{
			name:    "zero growth",
			yaml:    "growth_count: 0\n",
			wantErr: "GrowthCount: value 0 must be positive",
		},
		{
			name:    "negative init",
			yaml:    "init_count: -2\n",
			wantErr: "InitCount: value -2 must be non-negative",
		},
		{
			name:    "growth above cap",
			yaml:    "growth_count: 99999999\n",
			wantErr: "GrowthCount: value 99999999 exceeds maximum",
		},
		{
			name:    "not yaml",
			yaml:    "init_count: [",
			wantErr: "failed to parse pool config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: sessions\ninit_count: 3\ngrowth_count: 2\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{Name: "sessions", InitCount: 3, GrowthCount: 2}, cfg)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNewFromConfig(t *testing.T) {
	tr := &tracker{}
	p, err := NewFromConfig(Config{Name: "sessions", InitCount: 3, GrowthCount: 2}, tr.create, tr.destroy)
	require.NoError(t, err)

	assert.Equal(t, "sessions", p.Name())
	assert.Equal(t, 3, p.Available())
	assert.Equal(t, 2, p.GrowthCount())
	assert.Equal(t, 3, tr.created)

	renamed, err := NewFromConfig(Config{Name: "sessions", InitCount: 0, GrowthCount: 1}, tr.create, tr.destroy, WithName("override"))
	require.NoError(t, err)
	assert.Equal(t, "override", renamed.Name())
}

func TestNewFromConfig_Invalid(t *testing.T) {
	p, err := NewFromConfig[*item](Config{Name: "bad", InitCount: 1, GrowthCount: 0}, nil, nil)
	require.Error(t, err)
	assert.Nil(t, p)

	_, err = NewFromConfig[*item](Config{InitCount: 1, GrowthCount: 1}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name: field is required")
}

package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/sortvis/internal/config"
	"github.com/dyluth/sortvis/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name      string
		force     bool
		setupFunc func(dir string)
		wantErr   string
	}{
		{
			name:      "fresh initialization",
			setupFunc: func(dir string) {},
		},
		{
			name:  "existing file without force",
			force: false,
			setupFunc: func(dir string) {
				os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte("old content"), 0644)
			},
			wantErr: "project already initialized",
		},
		{
			name:  "force overwrites existing file",
			force: true,
			setupFunc: func(dir string) {
				os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte("old content"), 0644)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setupFunc(dir)

			path, err := Initialize(dir, tt.force)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				content, readErr := os.ReadFile(filepath.Join(dir, config.DefaultFile))
				require.NoError(t, readErr)
				assert.Equal(t, "old content", string(content), "existing file must be left alone")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, config.DefaultFile), path)

			cfg, err := config.Load(path)
			require.NoError(t, err)
			assert.Equal(t, runner.DefaultSettings(), cfg.Settings())
			assert.Equal(t, "Bubble Sort", cfg.Run.Algorithm)
			assert.Nil(t, cfg.Redis)
		})
	}
}

func TestCheckExisting(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckExisting(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFile), []byte("version: '1.0'"), 0644))
	err := CheckExisting(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.DefaultFile)
	assert.Contains(t, err.Error(), "--force")
}

func TestPrintSuccess(t *testing.T) {
	var buf bytes.Buffer
	PrintSuccess(&buf, "/tmp/x/sortvis.yml")
	assert.Contains(t, buf.String(), "/tmp/x/sortvis.yml")
	assert.Contains(t, buf.String(), "sortvis run")
}

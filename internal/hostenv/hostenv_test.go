package hostenv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/ore/internal/hostenv"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LANG_LIB_PATH", "")
	t.Setenv("LANG_MAX_THREADS", "")

	cfg, err := hostenv.Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.LibPath)
	assert.Equal(t, 0, cfg.MaxThreads)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LANG_LIB_PATH", "/opt/ore/lib")
	t.Setenv("LANG_MAX_THREADS", "4")

	cfg, err := hostenv.Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/ore/lib", cfg.LibPath)
	assert.Equal(t, 4, cfg.MaxThreads)
}

func TestLoadInvalidMaxThreads(t *testing.T) {
	t.Setenv("LANG_MAX_THREADS", "not-a-number")
	_, err := hostenv.Load()
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInto_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarmctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream:\n  highlight: false\n  buffer-size: 9\nstore:\n  driver: memory\n"), 0o644))

	v := viper.New()
	require.NoError(t, LoadInto(v, path, "swarmctl"))
	assert.False(t, v.GetBool("stream.highlight"))
	assert.Equal(t, 9, v.GetInt("stream.buffer-size"))
	assert.Equal(t, "memory", v.GetString("store.driver"))
}

func TestLoadInto_EnvAliases(t *testing.T) {
	t.Setenv("SWARM_DEBUG_EVENTS", "1")
	t.Setenv("SWARM_EVENT_BUFFERING", "false")
	t.Setenv("SWARM_EVENT_BUFFER_SIZE", "12")
	t.Setenv("SWARM_HIGHLIGHT_CODEX", "false")

	v := viper.New()
	require.NoError(t, LoadInto(v, "", "swarmctl-missing"))
	assert.True(t, v.GetBool("stream.debug-events"))
	assert.False(t, v.GetBool("stream.buffering"))
	assert.Equal(t, 12, v.GetInt("stream.buffer-size"))
	assert.False(t, v.GetBool("stream.highlight"))
}

func TestLoadInto_PrefixedEnv(t *testing.T) {
	t.Setenv("SWARM_STORE_DRIVER", "none")

	v := viper.New()
	require.NoError(t, LoadInto(v, "", "swarmctl-missing"))
	assert.Equal(t, "none", v.GetString("store.driver"))
}

func TestLoadInto_ExplicitFileMissing(t *testing.T) {
	v := viper.New()
	err := LoadInto(v, filepath.Join(t.TempDir(), "nope.yaml"), "swarmctl")
	assert.Error(t, err)
}

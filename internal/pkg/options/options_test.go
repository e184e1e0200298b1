package options

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwarmOptions_Requirements(t *testing.T) {
	reqs, err := NewSwarmOptions().Requirements()
	require.NoError(t, err)
	assert.Equal(t, []Requirement{
		{Role: "Task Master", Count: 2},
		{Role: "Auditor", Count: 1},
		{Role: "Coder", Count: 1},
	}, reqs)

	for _, bad := range []string{"Coder", "=2", "Coder=x", "Coder=-1"} {
		o := &SwarmOptions{Require: []string{bad}}
		_, err := o.Requirements()
		assert.Error(t, err, bad)
		assert.Len(t, o.Validate(), 1, bad)
	}
}

func TestStreamOptions_Defaults(t *testing.T) {
	o := NewStreamOptions()
	assert.False(t, o.DebugEvents)
	assert.True(t, o.Buffering)
	assert.Equal(t, DefaultBufferSize, o.BufferSize)
	assert.True(t, o.Highlight)
	assert.Empty(t, o.Validate())

	o.BufferSize = 0
	assert.Len(t, o.Validate(), 1)
}

func TestStreamOptions_Flags(t *testing.T) {
	o := NewStreamOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--stream.buffering=false", "--stream.buffer-size=3", "--stream.highlight-patterns=codex,review"}))
	assert.False(t, o.Buffering)
	assert.Equal(t, 3, o.BufferSize)
	assert.Equal(t, []string{"codex", "review"}, o.HighlightPatterns)
}

func TestValidate_Groups(t *testing.T) {
	assert.Empty(t, NewLogOptions().Validate())
	assert.Empty(t, NewStoreOptions().Validate())
	assert.Empty(t, NewServerRunOptions().Validate())
	assert.Empty(t, NewMCPOptions().Validate())

	assert.Len(t, (&LogOptions{Level: "loud", Format: "xml"}).Validate(), 2)
	assert.Len(t, (&StoreOptions{Driver: "sqlite"}).Validate(), 1)
	assert.Len(t, (&ServerRunOptions{Addr: "nope", Mode: "release"}).Validate(), 1)
}

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasfrag/ollama4truth/pkg/version"
)

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "ollama4truth")
	for _, sub := range []string{"serve", "index", "search", "verify", "version"} {
		assert.Contains(t, output, sub, "Help should list the %s command", sub)
	}
}

func TestRootCmd_VersionFlag(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "ollama4truth version "+version.Version, strings.TrimSpace(buf.String()))
}

func TestRootCmd_UnknownCommand(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"definitely-not-a-command"})

	err := cmd.Execute()

	assert.Error(t, err)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/varia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "varia version "+varia.Version+"\n", out)
}

func TestRunAndGraphCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toggle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
nodes:
  - id: box1
    variant: blue
    rules:
      onClick: {toggleVariant: [box1.blue, box1.red]}
steps:
  - emit: {node: box1, trigger: click}
  - expect: {node: box1, variant: red}
`), 0o644))

	out, err := execute(t, "run", path, "--no-color", "--log-level", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "box1  -       red")

	out, err = execute(t, "graph", path)
	require.NoError(t, err)
	assert.Contains(t, out, `box1 -- "click: blue / red" --> box1`)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "run", "missing.yaml", "--log-level", "loud")
	assert.ErrorContains(t, err, "unknown log level")
}

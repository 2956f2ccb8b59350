package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command inside dir and returns stdout and stderr.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(dir)
	color.NoColor = true
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, ".cwq.yaml")
	assert.FileExists(t, filepath.Join(dir, ".cwq.yaml"))

	_, _, err = run(t, dir, "init")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, dir, "init", "--force")
	assert.NoError(t, err)
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"vars/00_vars.txt":     "@cost = 25",
		"common/buildings.txt": "temple = { cost = @cost tags = { religious } }",
		"common/broken.txt":    "temple = {",
		".cwq.yaml": `
variables:
  roots:
    - name: game
      game: true
      paths: [vars]
`,
	})

	out, _, err := run(t, dir, "parse", "--no-progress", "--continue", "-r", "-f", "temple", "common")
	require.NoError(t, err)

	var parsed map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	temple, ok := parsed[filepath.Join("common", "buildings.txt")]
	require.True(t, ok)
	assert.Equal(t, "temple", temple["key"])
	values := temple["values"].([]any)
	assert.Equal(t, "25", values[0].(map[string]any)["value"])
	assert.Equal(t, "@cost", values[0].(map[string]any)["raw"])

	_, _, err = run(t, dir, "parse", "--no-progress", "common")
	assert.Error(t, err)

	_, _, err = run(t, dir, "parse", "missing.txt")
	assert.ErrorContains(t, err, "input file not exist")
}

func TestParseCommandOutputFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a = 1"})

	_, _, err := run(t, dir, "parse", "--no-progress", "-i", "a.txt", "-o", "out.json")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"a.txt"`)
}

func TestSearchCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"units.txt": `
			@speed = 4
			army = { cavalry = { speed = @speed } infantry = { speed = 2 } }
		`,
	})

	out, _, err := run(t, dir, "search", "--kv", "speed=4", "-r", "units.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "army/cavalry")
	assert.Contains(t, out, "4 (@speed)")

	out, _, err = run(t, dir, "search", "--kv", "speed=", "--all", "units.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "army/cavalry")
	assert.Contains(t, out, "army/infantry")

	_, stderr, err := run(t, dir, "search", "-k", "navy", "units.txt")
	require.NoError(t, err)
	assert.Contains(t, stderr, "no match")

	_, _, err = run(t, dir, "search", "units.txt")
	assert.ErrorContains(t, err, "required")
}

func TestVarsCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"game/vars.txt": "@cost = 100\n@ref = @cost\n@loop = @loop",
		"mod/vars.txt":  "@cost = 50",
	})

	out, _, err := run(t, dir, "vars", "--game", "game", "--mod", "mod")
	require.NoError(t, err)
	assert.Contains(t, out, "@cost = 50")
	assert.Contains(t, out, "@ref = @cost -> 50")
	assert.Contains(t, out, "cyclic")

	out, _, err = run(t, dir, "vars", "--game", "game", "--mod", "mod", "--order", "game-last", "@cost", "@none")
	require.NoError(t, err)
	assert.Contains(t, out, "@cost = 100")
	assert.Contains(t, out, "@none undefined")

	_, _, err = run(t, dir, "vars")
	assert.ErrorContains(t, err, "no scripted-variable roots")
}

func TestFmtCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a={b=1 c={x y}}"})

	out, _, err := run(t, dir, "fmt", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a = {\n\tb = 1\n\tc = { x y }\n}\n", out)

	_, _, err = run(t, dir, "fmt", "-w", "a.txt")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{".cwq.yaml": "workers: -1\n"})

	_, _, err := run(t, dir, "version")
	assert.ErrorContains(t, err, "workers")
}

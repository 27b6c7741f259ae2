package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/spanedit/internal/cli"
	"github.com/yaklabco/spanedit/internal/configloader"
)

const (
	bioText      = "Xilofon Reynolds plays.\n"
	bioRewritten = "Reynolds, Xilofon plays.\n"
	namePattern  = `(?P<first>\w+) (?P<last>Reynolds)`
	nameTemplate = "${last}, ${first}"
)

// execute runs the root command with colors off and returns stdout.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(append(args, "--color", "never"))

	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

// setup creates bio.txt and an empty config in a fresh directory.
func setup(t *testing.T) (bio, cfg string) {
	t.Helper()

	dir := t.TempDir()
	return writeFile(t, dir, "bio.txt", bioText), writeFile(t, dir, "empty.yml", "rules: []\n")
}

func inlineArgs(cfg string, extra ...string) []string {
	args := []string{"rewrite", "--config", cfg, "--rule", namePattern, "--whole", nameTemplate}
	return append(args, extra...)
}

func TestIntegration_ReportOnly(t *testing.T) {
	t.Parallel()

	bio, cfg := setup(t)

	out, err := execute(t, nil, inlineArgs(cfg, bio)...)
	require.NoError(t, err)

	assert.Contains(t, out, "bio.txt: 1 edit (changes pending)")
	assert.Contains(t, out, "inline 1")
	assert.Equal(t, bioText, readFile(t, bio), "nothing is written without --write")
}

func TestIntegration_WriteAndRestore(t *testing.T) {
	t.Parallel()

	bio, cfg := setup(t)

	out, err := execute(t, nil, inlineArgs(cfg, "--write", bio)...)
	require.NoError(t, err)
	assert.Contains(t, out, "rewritten (backup created)")
	assert.Equal(t, bioRewritten, readFile(t, bio))
	assert.Equal(t, bioText, readFile(t, bio+".spanedit.bak"))

	out, err = execute(t, nil, "restore", bio)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 1 file.")
	assert.Equal(t, bioText, readFile(t, bio))

	out, err = execute(t, nil, "restore", bio)
	require.NoError(t, err)
	assert.Contains(t, out, "No backups found.")
}

func TestIntegration_WriteWithoutBackups(t *testing.T) {
	t.Parallel()

	bio, cfg := setup(t)

	_, err := execute(t, nil, inlineArgs(cfg, "--write", "--no-backups", bio)...)
	require.NoError(t, err)
	assert.Equal(t, bioRewritten, readFile(t, bio))
	assert.NoFileExists(t, bio+".spanedit.bak")
}

func TestIntegration_DryRunShowsDiff(t *testing.T) {
	t.Parallel()

	bio, cfg := setup(t)

	out, err := execute(t, nil, inlineArgs(cfg, "--dry-run", "--write", bio)...)
	require.NoError(t, err)

	assert.Contains(t, out, "-Xilofon Reynolds plays.\n+Reynolds, Xilofon plays.\n")
	assert.Equal(t, bioText, readFile(t, bio), "dry run wins over --write")
}

func TestIntegration_Check(t *testing.T) {
	t.Parallel()

	bio, cfg := setup(t)

	_, err := execute(t, nil, inlineArgs(cfg, "--check", bio)...)
	require.ErrorIs(t, err, cli.ErrChangesPending)
	assert.Equal(t, cli.ExitChangesPending, cli.ExitCode(err))

	_, err = execute(t, nil, inlineArgs(cfg, "--check", "--write", bio)...)
	require.NoError(t, err, "nothing is pending once written")
}

func TestIntegration_Stdin(t *testing.T) {
	t.Parallel()

	_, cfg := setup(t)

	out, err := execute(t, strings.NewReader("a=1, b=2\n"),
		"rewrite", "--config", cfg, "--rule", `(\w+)=(\w+)`, "--set", "1=$2", "--set", "2=$1")
	require.NoError(t, err)
	assert.Equal(t, "1=a, 2=b\n", out)

	out, err = execute(t, strings.NewReader("Xilofon Reynolds\n"),
		"rewrite", "--config", cfg, "--rule", namePattern, "--set", "first=Sisonek", "--set", "last=Momosek", "-")
	require.NoError(t, err)
	assert.Equal(t, "Sisonek Momosek\n", out)
}

func TestIntegration_ConfigFileRules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeFile(t, dir, "rules.yml", `
extensions: [md]
rules:
  - name: http-to-https
    pattern: '(?P<scheme>http)://'
    skip_code: true
    set:
      scheme: https
`)
	readme := writeFile(t, dir, "docs/README.md", "See http://a.example and `http://b.example`.\n")
	notes := writeFile(t, dir, "docs/notes.txt", "http://c.example\n")

	_, err := execute(t, nil, "rewrite", "--config", cfg, "--write", "--no-backups", filepath.Join(dir, "docs"))
	require.NoError(t, err)

	assert.Equal(t, "See https://a.example and `http://b.example`.\n", readFile(t, readme))
	assert.Equal(t, "http://c.example\n", readFile(t, notes), "extension filter applies to directory walks")
}

func TestIntegration_LinesMode(t *testing.T) {
	t.Parallel()

	_, cfg := setup(t)

	out, err := execute(t, strings.NewReader("  a  \r\n\tb\n"),
		"rewrite", "--config", cfg, "--lines", "--newline", "lf",
		"--rule", `(?P<body>\S+)`, "--whole", "[${body}]")
	require.NoError(t, err)
	assert.Equal(t, "  [a]  \n\t[b]\n", out)
}

func TestIntegration_JSONFormat(t *testing.T) {
	t.Parallel()

	bio, cfg := setup(t)

	out, err := execute(t, nil, inlineArgs(cfg, "--format", "json", bio)...)
	require.NoError(t, err)

	var report struct {
		Files []struct {
			Path   string `json:"path"`
			Status string `json:"status"`
			Edits  int    `json:"edits"`
		} `json:"files"`
		Summary struct {
			FilesChanged int `json:"filesChanged"`
			Edits        int `json:"edits"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	require.Len(t, report.Files, 1)
	assert.Equal(t, "changes pending", report.Files[0].Status)
	assert.Equal(t, 1, report.Summary.FilesChanged)
	assert.Equal(t, 1, report.Summary.Edits)
}

func TestIntegration_Errors(t *testing.T) {
	t.Parallel()

	bio, cfg := setup(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no rules", []string{"rewrite", "--config", cfg, bio}, cli.ExitInvalidUsage},
		{"set without rule", []string{"rewrite", "--config", cfg, "--set", "1=x", bio}, cli.ExitInvalidUsage},
		{"malformed set", []string{"rewrite", "--config", cfg, "--rule", "(a)", "--set", "oops", bio}, cli.ExitInvalidUsage},
		{"bad pattern", []string{"rewrite", "--config", cfg, "--rule", "(", bio}, cli.ExitConfigError},
		{"unknown capture", []string{"rewrite", "--config", cfg, "--rule", "(a)", "--set", "b=x", bio}, cli.ExitConfigError},
		{"bad format", inlineArgs(cfg, "--format", "xml", bio), cli.ExitConfigError},
		{"missing config", []string{"rewrite", "--config", cfg + ".missing", bio}, cli.ExitConfigError},
		{"missing path", inlineArgs(cfg, bio+".missing"), cli.ExitIOError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, nil, tc.args...)
			require.Error(t, err)
			assert.Equal(t, tc.want, cli.ExitCode(err), "error: %v", err)
		})
	}
}

func TestIntegration_Tree(t *testing.T) {
	t.Parallel()

	out, err := execute(t, strings.NewReader("Xilofon Reynolds"), "tree", `(?P<first>\w+) (?P<last>(R)\w+)`)
	require.NoError(t, err)

	want := `match 1 at offset 0 "Xilofon Reynolds"
├── [1] first 0..7 "Xilofon"
└── [2] last 8..16 "Reynolds"
    └── [3] 0..1 "R"
`
	assert.Equal(t, want, out)
}

func TestIntegration_TreeLinesAndFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "pairs.txt", "a=1\nb=2\n")

	out, err := execute(t, nil, "tree", "--lines", "--limit", "1", `^(?P<key>\w+)=`, path)
	require.NoError(t, err)
	assert.Contains(t, out, `match 1 on line 1 at offset 0 "a="`)
	assert.NotContains(t, out, "match 2")

	out, err = execute(t, strings.NewReader("nothing here"), "tree", `\d+`)
	require.NoError(t, err)
	assert.Equal(t, "No matches.\n", out)

	_, err = execute(t, nil, "tree", "--engine", "sed", "x", path)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestIntegration_Rules(t *testing.T) {
	t.Parallel()

	cfg := writeFile(t, t.TempDir(), "rules.yml", `
engine: regexp2
rules:
  - name: iso-dates
    pattern: '(?<m>\d\d)/(?<d>\d\d)/(?<y>\d{4})'
    whole: '${y}-${m}-${d}'
  - pattern: '(?<scheme>http)://'
    mode: lines
    enabled: false
    set:
      scheme: https
`)

	out, err := execute(t, nil, "rules", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "iso-dates")
	assert.Contains(t, out, "rule-2 (disabled)")

	out, err = execute(t, nil, "rules", "--config", cfg, "--format", "json")
	require.NoError(t, err)

	var rules []struct {
		Name     string   `json:"name"`
		Engine   string   `json:"engine"`
		Mode     string   `json:"mode"`
		Replaces []string `json:"replaces"`
		Enabled  bool     `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.Len(t, rules, 2)
	assert.Equal(t, "regexp2", rules[0].Engine)
	assert.Equal(t, "whole", rules[0].Mode)
	assert.Equal(t, []string{"$0"}, rules[0].Replaces)
	assert.Equal(t, "lines", rules[1].Mode)
	assert.Equal(t, []string{"scheme"}, rules[1].Replaces)
	assert.False(t, rules[1].Enabled)
}

func TestIntegration_Config(t *testing.T) {
	t.Parallel()

	cfg := writeFile(t, t.TempDir(), "rules.yml", `
engine: regexp2
rules:
  - name: iso-dates
    pattern: '(?<m>\d\d)/(?<d>\d\d)/(?<y>\d{4})'
    whole: '${y}-${m}-${d}'
`)

	out, err := execute(t, nil, "config", "--config", cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# spanedit resolved configuration\n"))
	assert.Contains(t, out, "engine: regexp2")
	assert.Contains(t, out, "name: iso-dates")
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, tc := range []struct {
		format string
		name   string
	}{
		{"yaml", "spanedit.yml"},
		{"json", "spanedit.jsonc"},
	} {
		path := filepath.Join(dir, tc.name)

		_, err := execute(t, nil, "init", "--examples", "--format", tc.format, "--output", path)
		require.NoError(t, err, tc.format)

		cfg, err := configloader.LoadFile(path)
		require.NoError(t, err, tc.format)
		require.Len(t, cfg.Rules, 2, tc.format)
		assert.Equal(t, "iso-dates", cfg.Rules[0].Name)

		_, err = execute(t, nil, "init", "--format", tc.format, "--output", path)
		require.Error(t, err, "existing files need --force")

		_, err = execute(t, nil, "init", "--force", "--format", tc.format, "--output", path)
		require.NoError(t, err)
	}

	_, err := execute(t, nil, "init", "--format", "toml", "--output", filepath.Join(dir, "x"))
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestIntegration_Version(t *testing.T) {
	t.Parallel()

	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "spanedit")
	assert.Contains(t, out, "test-version")
	assert.Contains(t, out, "test-commit")
}

func TestIntegration_Help(t *testing.T) {
	t.Parallel()

	out, err := execute(t, nil, "rewrite", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--dry-run")
	assert.Contains(t, out, "Global Flags:")
}

package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/requalify/cmd/requalify/commands"
	"github.com/Sumatoshi-tech/requalify/pkg/config"
	"github.com/Sumatoshi-tech/requalify/pkg/manifest"
	"github.com/Sumatoshi-tech/requalify/pkg/rewrite"
)

const authTest = "package auth_test\n\nimport (\n\t\"testing\"\n)\n\n" +
	"func TestHash(t *testing.T) {\n\th, _ := HashPassword(\"pw\")\n\t_ = h\n}\n"

const manifestYAML = `tables:
  data: [User]
  auth: [HashPassword, User]
groups:
  - name: unit
    dir: tests/unit
    namespace: unit
    imports: [social-geo-go/internal/auth]
    prefixes: [auth]
  - name: integration
    dir: tests/integration
    namespace: integration
    prefixes: [data, auth]
`

type project struct {
	dir    string
	config string
	unit   string
}

func newProject(t *testing.T) project {
	t.Helper()

	dir := t.TempDir()

	p := project{
		dir:    dir,
		config: filepath.Join(dir, ".requalify.yaml"),
		unit:   filepath.Join(dir, "tests", "unit", "auth_test.go"),
	}

	writeFile(t, p.unit, authTest)
	writeFile(t, filepath.Join(dir, "tests", "integration", "user_test.go"), "package integration\n\nvar u User\n")
	writeFile(t, filepath.Join(dir, "requalify.yaml"), manifestYAML)
	writeFile(t, p.config, "manifest: "+filepath.Join(dir, "requalify.yaml")+"\n"+
		"root: "+dir+"\n"+
		"log:\n  level: error\n"+
		"output:\n  color: never\n")

	return p
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func execute(args ...string) (stdout, stderr string, err error) {
	cmd := commands.NewRootCommand()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func TestRun_RewritesAndSavesReport(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	reportPath := filepath.Join(p.dir, "out", "run.json")
	metricsPath := filepath.Join(p.dir, "out", "requalify.prom")

	require.NoError(t, os.MkdirAll(filepath.Dir(metricsPath), 0o750))

	stdout, _, err := execute("run", "--config", p.config, "--report", reportPath, "--metrics-file", metricsPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "OK: 2 files changed")
	assert.Contains(t, readFile(t, p.unit), "auth.HashPassword(\"pw\")")
	assert.Equal(t, "package integration\n\nvar u data.User\n",
		readFile(t, filepath.Join(p.dir, "tests", "integration", "user_test.go")))
	assert.Contains(t, stdout, "User")

	assert.Contains(t, readFile(t, metricsPath), "requalify_files_total")

	rendered, _, err := execute("report", reportPath)
	require.NoError(t, err)
	assert.Contains(t, rendered, "auth_test.go")
	assert.Contains(t, rendered, "changed")
}

func TestRun_DryRunLeavesFiles(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	stdout, _, err := execute("run", "--config", p.config, "--dry-run", "--group", "unit")
	require.NoError(t, err)

	assert.Equal(t, authTest, readFile(t, p.unit))
	assert.Contains(t, stdout, "-package auth_test\n+package unit\n")
	assert.Contains(t, stdout, "DRY RUN: 1 files would change")
}

func TestRun_FlagOverridesConfig(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	_, stderr, err := execute("run", "--config", p.config, "--log-level", "debug", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stderr, "run started")
	assert.Contains(t, stderr, "mode=run")
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	_, _, err := execute("run", "--config", p.config, "--group", "e2e")
	require.ErrorIs(t, err, manifest.ErrUnknownGroup)

	_, _, err = execute("run", "--config", p.config, "--log-level", "loud")
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)

	_, _, err = execute("run", "--config", p.config, "--manifest", filepath.Join(p.dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, authTest, readFile(t, p.unit))
}

func TestFile_RewritesFromFlags(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	stdout, _, err := execute("file", p.unit,
		"--config", p.config,
		"--namespace", "unit",
		"--import", "social-geo-go/internal/auth",
		"--own", "auth=HashPassword,VerifyPassword",
	)
	require.NoError(t, err)

	got := readFile(t, p.unit)
	assert.Contains(t, got, "package unit\n")
	assert.Contains(t, got, "\"social-geo-go/internal/auth\"")
	assert.Contains(t, got, "auth.HashPassword(\"pw\")")
	assert.Contains(t, stdout, "OK: 1 files changed")
}

func TestFile_Normalize(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	path := filepath.Join(p.dir, "e2e_test.go")
	writeFile(t, path, "package e2e\n\nfunc TestX() {\n\thandlers.Login(data.data.User{})\n}\n")

	_, _, err := execute("file", path,
		"--config", p.config,
		"--mode", "normalize",
		"--namespace", "handlers",
		"--own", "handlers=Login",
		"--own", "data=User",
	)
	require.NoError(t, err)

	assert.Equal(t, "package handlers\n\nfunc TestX() {\n\tLogin(data.User{})\n}\n", readFile(t, path))
}

func TestFile_InvalidFlags(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	_, _, err := execute("file", p.unit, "--config", p.config, "--own", "HashPassword")
	require.ErrorIs(t, err, commands.ErrInvalidOwnership)

	_, _, err = execute("file", p.unit, "--config", p.config, "--mode", "sideways")
	require.ErrorIs(t, err, rewrite.ErrInvalidMode)

	_, _, err = execute("file", "--config", p.config)
	require.Error(t, err)

	assert.Equal(t, authTest, readFile(t, p.unit))
}

func TestFile_MissingPathFails(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	stdout, _, err := execute("file", filepath.Join(p.dir, "nope_test.go"), "--config", p.config, "--own", "auth=HashPassword")
	require.ErrorIs(t, err, commands.ErrFilesFailed)
	require.ErrorIs(t, err, os.ErrNotExist)

	assert.Contains(t, stdout, "FAILED: 1 of 1 files")
}

func TestCheck_ListsGroups(t *testing.T) {
	t.Parallel()

	p := newProject(t)

	stdout, _, err := execute("check", "--config", p.config, "--files")
	require.NoError(t, err)

	assert.Contains(t, stdout, "unit")
	assert.Contains(t, stdout, "integration")
	assert.Contains(t, stdout, "data, auth")
	assert.Contains(t, stdout, p.unit)
	assert.Contains(t, stdout, "[data auth]")

	assert.Equal(t, authTest, readFile(t, p.unit))
}

func TestCheck_EmptyGroupFails(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	require.NoError(t, os.Remove(p.unit))

	_, _, err := execute("check", "--config", p.config, "--group", "unit")
	require.ErrorIs(t, err, manifest.ErrNoFiles)
}

func TestReport_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := execute("report", filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
}

func TestRun_RewritesGeneratedFilesByDefault(t *testing.T) {
	t.Parallel()

	p := newProject(t)
	gen := filepath.Join(p.dir, "tests", "integration", "zz_generated_test.go")
	writeFile(t, gen, "// Code generated by mockgen. DO NOT EDIT.\n\npackage integration\n\nvar g User\n")

	stdout, _, err := execute("run", "--config", p.config, "--group", "integration")
	require.NoError(t, err)

	assert.Contains(t, readFile(t, gen), "var g data.User\n")
	assert.Contains(t, stdout, "OK: 2 files changed")

	writeFile(t, gen, "// Code generated by mockgen. DO NOT EDIT.\n\npackage integration\n\nvar g User\n")

	stdout, _, err = execute("run", "--config", p.config, "--group", "integration", "--skip-generated")
	require.NoError(t, err)

	assert.Contains(t, readFile(t, gen), "var g User\n")
	assert.Contains(t, stdout, "skipped")
}

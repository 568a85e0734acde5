package rewrite_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/requalify/pkg/ownership"
	"github.com/Sumatoshi-tech/requalify/pkg/rewrite"
)

const unitSource = "package unit\n\nimport (\n\t\"testing\"\n)\n\n" +
	"func TestHash(t *testing.T) {\n\th, _ := HashPassword(\"pw\")\n\t_ = h\n}\n"

func unitJob(path string) rewrite.Job {
	return rewrite.Job{
		Path:      path,
		Group:     "unit",
		Namespace: "unit",
		Imports:   []string{"social-geo-go/internal/auth"},
		Table:     ownership.New().MustAdd("auth", "HashPassword", "VerifyPassword"),
		Mode:      rewrite.ModeQualify,
	}
}

func TestTransform_QualifyPipeline(t *testing.T) {
	t.Parallel()

	got, rep, err := rewrite.Transform(unitSource, unitJob("auth_test.go"))
	require.NoError(t, err)

	want := "package unit\n\nimport (\n\t\"social-geo-go/internal/auth\"\n\n\t\"testing\"\n)\n\n" +
		"func TestHash(t *testing.T) {\n\th, _ := auth.HashPassword(\"pw\")\n\t_ = h\n}\n"

	assert.Equal(t, want, got)
	assert.True(t, rep.DeclarationMatched)
	assert.Equal(t, "unit", rep.Previous)
	assert.Equal(t, rewrite.MergeWidened, rep.Imports.Mode)
	assert.Equal(t, 1, rep.Qualified.Total)
	assert.True(t, rep.Changed)
	assert.Equal(t, 2, rep.Edits())
}

func TestTransform_QualifyPipelineIsIdempotent(t *testing.T) {
	t.Parallel()

	job := unitJob("auth_test.go")

	once, _, err := rewrite.Transform(unitSource, job)
	require.NoError(t, err)

	twice, rep, err := rewrite.Transform(once, job)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.False(t, rep.Changed)
	assert.Equal(t, rewrite.MergeUnchanged, rep.Imports.Mode)
	assert.Zero(t, rep.Edits())
}

func TestTransform_RepairsPreviousDoubleQualification(t *testing.T) {
	t.Parallel()

	src := "package unit\n\nfunc T() { auth.auth.VerifyPassword() }\n"
	job := unitJob("x.go")
	job.Imports = nil

	got, rep, err := rewrite.Transform(src, job)
	require.NoError(t, err)
	assert.Equal(t, "package unit\n\nfunc T() { auth.VerifyPassword() }\n", got)
	assert.Equal(t, 1, rep.Collapsed)
}

func TestTransform_NoAnchorsIsNoop(t *testing.T) {
	t.Parallel()

	src := "// nothing to see\nvar x = 1\n"

	got, rep, err := rewrite.Transform(src, unitJob("x.go"))
	require.NoError(t, err)
	assert.Equal(t, src, got)
	assert.False(t, rep.DeclarationMatched)
	assert.False(t, rep.Imports.Matched())
	assert.False(t, rep.Changed)
}

func TestTransform_NormalizeMode(t *testing.T) {
	t.Parallel()

	job := rewrite.Job{
		Namespace: "handlers",
		Mode:      rewrite.ModeNormalize,
		Table: ownership.New().
			MustAdd("handlers", "Login").
			MustAdd("data", "Foo").
			MustAdd("auth", "Bar"),
	}

	got, rep, err := rewrite.Transform("package e2e\n\nfunc T(){ data.data.Foo(); auth.auth.Bar() }", job)
	require.NoError(t, err)
	assert.Equal(t, "package handlers\n\nfunc T(){ data.Foo(); auth.Bar() }", got)
	require.NotNil(t, rep.Normalize)
	assert.Equal(t, 2, rep.Collapsed)
	assert.Equal(t, "e2e", rep.Previous)
}

func TestTransform_InvalidMode(t *testing.T) {
	t.Parallel()

	job := unitJob("x.go")
	job.Mode = "sideways"

	got, _, err := rewrite.Transform(unitSource, job)
	require.ErrorIs(t, err, rewrite.ErrInvalidMode)
	assert.Equal(t, unitSource, got)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := rewrite.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, rewrite.ModeQualify, mode)

	mode, err = rewrite.ParseMode(" Normalize ")
	require.NoError(t, err)
	assert.Equal(t, rewrite.ModeNormalize, mode)

	_, err = rewrite.ParseMode("merge")
	require.ErrorIs(t, err, rewrite.ErrInvalidMode)
}

func TestApply_RewritesInPlace(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "auth_test.go")
	require.NoError(t, os.WriteFile(path, []byte(unitSource), 0o640))

	rep, err := rewrite.Apply(unitJob(path))
	require.NoError(t, err)
	assert.True(t, rep.Written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "auth.HashPassword(\"pw\")")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	rep, err = rewrite.Apply(unitJob(path))
	require.NoError(t, err)
	assert.False(t, rep.Written)
}

func TestApply_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := rewrite.Apply(unitJob(filepath.Join(t.TempDir(), "missing.go")))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestApply_Directory(t *testing.T) {
	t.Parallel()

	_, err := rewrite.Apply(unitJob(t.TempDir()))
	require.ErrorIs(t, err, rewrite.ErrIsDirectory)
}

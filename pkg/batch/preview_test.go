package batch_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/requalify/pkg/batch"
)

func TestDiffer_StatsAndRender(t *testing.T) {
	t.Parallel()

	before := "package e2e\n\nfunc T() {\n\tLogin()\n}\n"
	after := "package handlers\n\nfunc T() {\n\tLogin()\n}\n"

	differ := batch.NewDiffer(false)
	diffs := differ.Lines(before, after)

	assert.Equal(t, batch.LineStats{Added: 1, Removed: 1}, batch.Stats(diffs))

	var buf bytes.Buffer

	require.NoError(t, differ.Render(&buf, "e2e_test.go", diffs))
	assert.Equal(t,
		"--- e2e_test.go\n+++ e2e_test.go (requalified)\n"+
			"-package e2e\n+package handlers\n \n func T() {\n  ...\n",
		buf.String())
}

func TestDiffer_RenderElidesLongContext(t *testing.T) {
	t.Parallel()

	before := "a\n1\n2\n3\n4\n5\n6\nb\n"
	after := "A\n1\n2\n3\n4\n5\n6\nB\n"

	differ := batch.NewDiffer(false)

	var buf bytes.Buffer

	require.NoError(t, differ.Render(&buf, "f.go", differ.Lines(before, after)))
	assert.Equal(t,
		"--- f.go\n+++ f.go (requalified)\n"+
			"-a\n+A\n 1\n 2\n  ...\n 5\n 6\n-b\n+B\n",
		buf.String())
}

func TestDiffer_Color(t *testing.T) {
	t.Parallel()

	differ := batch.NewDiffer(true)

	var buf bytes.Buffer

	require.NoError(t, differ.Render(&buf, "f.go", differ.Lines("a\n", "b\n")))
	assert.Contains(t, buf.String(), "\x1b[32m+b")
	assert.Contains(t, buf.String(), "\x1b[31m-a")
}

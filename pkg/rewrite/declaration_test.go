package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/requalify/pkg/rewrite"
)

func TestRewriteDeclaration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		src       string
		namespace string
		want      string
		matched   bool
	}{
		{
			name:      "renames clause",
			src:       "package e2e\n\nfunc T() {}\n",
			namespace: "handlers",
			want:      "package handlers\n\nfunc T() {}\n",
			matched:   true,
		},
		{
			name:      "same name keeps text",
			src:       "package unit\n",
			namespace: "unit",
			want:      "package unit\n",
			matched:   true,
		},
		{
			name:      "clause after build tag and doc comment",
			src:       "//go:build integration\n\n// Package x.\npackage integration_test\n",
			namespace: "integration",
			want:      "//go:build integration\n\n// Package x.\npackage integration\n",
			matched:   true,
		},
		{
			name:      "only first clause",
			src:       "package a\n\nconst s = `\npackage b\n`\n",
			namespace: "c",
			want:      "package c\n\nconst s = `\npackage b\n`\n",
			matched:   true,
		},
		{
			name:      "keyword must start a line",
			src:       "// see package docs\nvar x = 1\n",
			namespace: "c",
			want:      "// see package docs\nvar x = 1\n",
			matched:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, matched := rewrite.RewriteDeclaration(tc.src, tc.namespace)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.matched, matched)
		})
	}
}

func TestDeclaredNamespace(t *testing.T) {
	t.Parallel()

	name, ok := rewrite.DeclaredNamespace("// header\npackage  auth_test // trailing\n")
	assert.True(t, ok)
	assert.Equal(t, "auth_test", name)

	_, ok = rewrite.DeclaredNamespace("func main() {}\n")
	assert.False(t, ok)
}

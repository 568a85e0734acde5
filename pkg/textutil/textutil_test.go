package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	t.Parallel()

	assert.False(t, IsBinary(nil))
	assert.False(t, IsBinary([]byte("package unit\n")))
	assert.True(t, IsBinary([]byte("pack\x00age")))

	late := make([]byte, BinarySniffLength+10)
	for i := range late {
		late[i] = 'a'
	}

	late[BinarySniffLength+5] = 0
	assert.False(t, IsBinary(late))

	late[BinarySniffLength-1] = 0
	assert.True(t, IsBinary(late))
}

func TestIsGenerated(t *testing.T) {
	t.Parallel()

	assert.True(t, IsGenerated([]byte("// Code generated by mockgen. DO NOT EDIT.\n\npackage mocks\n")))
	assert.True(t, IsGenerated([]byte("// Code generated by stringer. DO NOT EDIT.\r\npackage x\r\n")))
	assert.False(t, IsGenerated([]byte("// Package unit tests auth.\npackage unit\n")))
	assert.False(t, IsGenerated([]byte("package unit\n\n// Code generated by hand. DO NOT EDIT.\n")))
	assert.False(t, IsGenerated(nil))
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want int
	}{
		{name: "empty", data: "", want: 0},
		{name: "partial line", data: "package x", want: 1},
		{name: "trailing newline", data: "package x\n", want: 1},
		{name: "blank lines", data: "\n\n\n", want: 3},
		{name: "no trailing newline", data: "a\nb\nc", want: 3},
		{name: "large", data: strings.Repeat("x\n", 5000), want: 5000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, CountLines([]byte(tc.data)))
		})
	}
}

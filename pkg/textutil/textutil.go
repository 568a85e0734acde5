// Package textutil provides byte-level checks used to decide whether a file
// is safe to rewrite as text.
package textutil

import (
	"bufio"
	"bytes"
	"regexp"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// generatedMarker is the standard Go marker for generated files.
var generatedMarker = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// IsGenerated reports whether a line before the package clause carries the
// "Code generated ... DO NOT EDIT." marker.
func IsGenerated(data []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		if generatedMarker.Match(line) {
			return true
		}

		if bytes.HasPrefix(line, []byte("package ")) {
			return false
		}
	}

	return false
}

// CountLines returns the number of newline-delimited lines in data.
// A non-empty buffer without a trailing newline counts the last partial line.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	lines := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		lines++
	}

	return lines
}

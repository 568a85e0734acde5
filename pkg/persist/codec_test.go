package persist

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testState is a struct for codec testing.
type testState struct {
	Name   string         `json:"name"   yaml:"name"`
	Count  int            `json:"count"  yaml:"count"`
	Values map[string]int `json:"values" yaml:"values"`
}

func TestJSONCodec_Indent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, NewJSONCodec().Encode(&buf, testState{Name: "x"}))
	assert.Contains(t, buf.String(), "\n  \"name\": \"x\"")

	buf.Reset()

	require.NoError(t, (&JSONCodec{}).Encode(&buf, testState{Name: "x"}))
	assert.Equal(t, "{\"name\":\"x\",\"count\":0,\"values\":null}\n", buf.String())
}

func TestYAMLCodec_Encode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, NewYAMLCodec().Encode(&buf, testState{Name: "unit", Count: 3, Values: map[string]int{"a": 1}}))
	assert.Equal(t, "name: unit\ncount: 3\nvalues:\n  a: 1\n", buf.String())
}

func TestCodecFor(t *testing.T) {
	t.Parallel()

	codec, err := CodecFor("out/summary.JSON")
	require.NoError(t, err)
	assert.Equal(t, ".json", codec.Extension())

	codec, err = CodecFor("summary.yml")
	require.NoError(t, err)
	assert.Equal(t, ".yaml", codec.Extension())

	_, err = CodecFor("summary.gob")
	require.ErrorIs(t, err, ErrUnknownExtension)
}

func TestSaveLoadFile(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"state.json", "state.yaml", "state.yml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "nested", name)
			original := testState{Name: "test", Count: 42, Values: map[string]int{"a": 1}}

			require.NoError(t, SaveFile(path, original))

			_, err := os.Stat(path)
			require.NoError(t, err)

			var restored testState

			require.NoError(t, LoadFile(path, &restored))
			assert.Equal(t, original, restored)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var state testState

	err := LoadFile(filepath.Join(dir, "missing.json"), &state)
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))

	err = LoadFile(bad, &state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode state")
}

package memory

import (
	"bytes"
	"path/filepath"
	"testing"

	"cms-maintenance/internal/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFixture = `
nodes:
  - id: n2
    path: /b
    properties:
      - {name: "sys:en-state", value: 2}
  - id: n1
    path: /a
    type: nt:unstructured
    properties:
      - {name: "i18n:en-title", value: "Hi"}
      - {name: "i18n:en-old", value: "x"}
  - path: /c
    type: nt:file
`

func TestParseFixture(t *testing.T) {
	store, err := ParseFixture([]byte(testFixture))
	require.NoError(t, err)

	props, ok := store.Snapshot("n1")
	require.True(t, ok)
	assert.Equal(t, []content.Property{
		{Name: "i18n:en-title", Value: "Hi"},
		{Name: "i18n:en-old", Value: "x"},
	}, props)

	props, _ = store.Snapshot("n2")
	assert.Equal(t, 2, props[0].Value)
}

func TestParseFixture_Invalid(t *testing.T) {
	_, err := ParseFixture([]byte("nodes:\n  - properties: []\n"))
	assert.Error(t, err)

	_, err = ParseFixture([]byte("nodes:\n  - {id: a, path: /a}\n  - {id: a, path: /b}\n"))
	assert.Error(t, err)

	_, err = ParseFixture([]byte("nodes: ["))
	assert.Error(t, err)
}

func TestWriteFixture_RoundTrip(t *testing.T) {
	store, err := ParseFixture([]byte(testFixture))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dump.yaml")
	require.NoError(t, store.WriteFixture(path))

	loaded, err := LoadFixture(path)
	require.NoError(t, err)

	for _, id := range []string{"n1", "n2"} {
		want, _ := store.Snapshot(id)
		got, ok := loaded.Snapshot(id)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	var a, b bytes.Buffer
	require.NoError(t, store.Dump(&a))
	require.NoError(t, loaded.Dump(&b))
	assert.Equal(t, a.String(), b.String())
}

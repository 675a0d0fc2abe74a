package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStructures = `
structures:
  - name: article
    properties:
      - name: title
      - name: body
        type: text
      - name: blocks
        type: block
        children: [type, text]
  - name: homepage
    properties:
      - name: title
`

func TestParseStructures(t *testing.T) {
	reg, err := ParseStructures([]byte(testStructures))
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	article, ok := reg.Get("article")
	require.True(t, ok)
	require.Len(t, article.Properties, 3)
	assert.Equal(t, PropertyTypeText, article.Properties[0].Type, "type defaults to text")
	assert.Equal(t, []string{"type", "text"}, article.Properties[2].Children)

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestParseStructures_Invalid(t *testing.T) {
	cases := map[string]string{
		"no name":        "structures:\n  - properties: []\n",
		"duplicate":      "structures:\n  - name: a\n  - name: a\n",
		"unknown type":   "structures:\n  - name: a\n    properties:\n      - name: x\n        type: image\n",
		"empty block":    "structures:\n  - name: a\n    properties:\n      - name: x\n        type: block\n",
		"not yaml":       "structures: [",
		"property no id": "structures:\n  - name: a\n    properties:\n      - type: text\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseStructures([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestLoadStructures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "structures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testStructures), 0o600))

	reg, err := LoadStructures(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	_, err = LoadStructures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

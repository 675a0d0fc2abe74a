package cleanup

import (
	"testing"

	"cms-maintenance/internal/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingNode_NeverMutatesWrappedNode(t *testing.T) {
	real := content.NewBaseNode("n1", "/a", content.NodeTypeUnstructured, []content.Property{
		{Name: "i18n:en-title", Value: "Hi"},
		{Name: "i18n:en-body", Value: "Body"},
	})
	rec := NewRecordingNode(real)

	rec.SetProperty("i18n:en-title", "Hello")
	rec.SetProperty("i18n:en-new", "New")
	require.NoError(t, rec.RemoveProperty("i18n:en-body"))

	assert.False(t, real.Dirty())
	assert.Equal(t, []content.Property{
		{Name: "i18n:en-title", Value: "Hi"},
		{Name: "i18n:en-body", Value: "Body"},
	}, real.Properties())
}

func TestRecordingNode_ReadsSeeOverlay(t *testing.T) {
	real := content.NewBaseNode("n1", "/a", content.NodeTypeUnstructured, []content.Property{
		{Name: "i18n:en-title", Value: "Hi"},
		{Name: "i18n:en-body", Value: "Body"},
		{Name: "sys:en-state", Value: 2},
	})
	rec := NewRecordingNode(real)
	assert.Equal(t, "n1", rec.Identifier())
	assert.Equal(t, "/a", rec.Path())

	rec.SetProperty("i18n:en-title", "Hello")
	rec.SetProperty("i18n:en-new", "New")
	require.NoError(t, rec.RemoveProperty("i18n:en-body"))

	p, ok := rec.Property("i18n:en-title")
	require.True(t, ok)
	assert.Equal(t, "Hello", p.Value)

	p, ok = rec.Property("sys:en-state")
	require.True(t, ok, "untouched reads go to the real node")
	assert.Equal(t, 2, p.Value)

	assert.False(t, rec.HasProperty("i18n:en-body"))
	assert.True(t, rec.HasProperty("i18n:en-new"))

	assert.Equal(t, []content.Property{
		{Name: "i18n:en-title", Value: "Hello"},
		{Name: "sys:en-state", Value: 2},
		{Name: "i18n:en-new", Value: "New"},
	}, rec.Properties())
}

func TestRecordingNode_WrittenPropertyKeys(t *testing.T) {
	real := content.NewBaseNode("n1", "/a", content.NodeTypeUnstructured, []content.Property{
		{Name: "i18n:en-old", Value: "x"},
	})
	rec := NewRecordingNode(real)
	assert.Empty(t, rec.WrittenPropertyKeys())

	rec.SetProperty("i18n:en-b", 1)
	rec.SetProperty("i18n:en-a", 1)
	rec.SetProperty("i18n:en-b", 2)
	require.NoError(t, rec.RemoveProperty("i18n:en-old"))

	assert.Equal(t, []string{"i18n:en-b", "i18n:en-a", "i18n:en-old"}, rec.WrittenPropertyKeys())
	assert.True(t, rec.Written("i18n:en-old"))
	assert.False(t, rec.Written("i18n:en-c"))

	keys := rec.WrittenPropertyKeys()
	keys[0] = "mutated"
	assert.Equal(t, "i18n:en-b", rec.WrittenPropertyKeys()[0])
}

func TestRecordingNode_RemoveMissing(t *testing.T) {
	rec := NewRecordingNode(content.NewBaseNode("n1", "/a", content.NodeTypeUnstructured, nil))

	assert.ErrorIs(t, rec.RemoveProperty("nope"), content.ErrPropertyNotFound)
	assert.Empty(t, rec.WrittenPropertyKeys())

	rec.SetProperty("x", 1)
	require.NoError(t, rec.RemoveProperty("x"))
	assert.ErrorIs(t, rec.RemoveProperty("x"), content.ErrPropertyNotFound)

	rec.SetProperty("x", 2)
	assert.True(t, rec.HasProperty("x"), "write after removal restores the property")
}

package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_LabelVariants(t *testing.T) {
	g, err := Decode(strings.NewReader(`{
	  "objects": [
	    {"id": 1, "label": "Burger", "type": "FOOD"},
	    {"id": 2, "class_name": "cup"},
	    {"id": 3, "label": "", "class_name": "bowl"},
	    {"id": 4, "label": "Chopsticks", "class_name": "utensil"},
	    {"id": 5, "bbox": [0, 0, 10, 10]}
	  ],
	  "scene": {"description": "A family eating lunch"}
	}`))
	require.NoError(t, err)
	require.Len(t, g.Objects, 5)

	assert.Equal(t, "Burger", g.Objects[0].Label)
	assert.Equal(t, "FOOD", g.Objects[0].Type)
	assert.Equal(t, "cup", g.Objects[1].Label)
	assert.Equal(t, "bowl", g.Objects[2].Label)
	assert.Equal(t, "Chopsticks", g.Objects[3].Label)
	assert.False(t, g.Objects[4].Labeled())
	assert.Equal(t, "5", g.Objects[4].IDString())
	assert.Equal(t, "A family eating lunch", g.Scene.Description)
}

func TestDecode_MissingFields(t *testing.T) {
	g, err := Decode(strings.NewReader(`{"objects": [{"label": "Tree"}]}`))
	require.NoError(t, err)
	require.Len(t, g.Objects, 1)
	assert.Nil(t, g.Objects[0].ID)
	assert.Equal(t, "-", g.Objects[0].IDString())
	assert.Empty(t, g.Scene.Description)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"objects": [`))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = Decode(strings.NewReader(`{"objects": "none"}`))
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)

	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"objects": [{"id": 7, "class_name": "lantern"}]}`), 0o644))

	g, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, g.Objects, 1)
	assert.Equal(t, "lantern", g.Objects[0].Label)
	require.NotNil(t, g.Objects[0].ID)
	assert.Equal(t, 7, *g.Objects[0].ID)
}

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robostock/catalog-ingest/internal/entity"
)

const sampleURDF = `<?xml version="1.0"?>
<robot name="robo_arm_mk2">
  <link name="base_link">
    <visual>
      <geometry>
        <mesh filename="meshes/abb_base.stl"/>
      </geometry>
    </visual>
  </link>
  <joint name="shoulder_joint" type="revolute"/>
</robot>`

func TestFlatten_URDF(t *testing.T) {
	text, err := Flatten([]byte(sampleURDF))
	require.NoError(t, err)

	assert.Contains(t, text, "robot name=robo_arm_mk2")
	assert.Contains(t, text, "link name=base_link")
	assert.Contains(t, text, "mesh filename=meshes/abb_base.stl")
	assert.Contains(t, text, "joint name=shoulder_joint type=revolute")
}

func TestFlatten_InvalidXML(t *testing.T) {
	_, err := Flatten([]byte("<robot><unclosed></robot>"))
	assert.Error(t, err)
}

func TestURDFSource_ListAndFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arm.urdf")
	require.NoError(t, os.WriteFile(path, []byte(sampleURDF), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644))

	src := NewURDFSource(dir, nil)
	docs, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "arm.urdf", docs[0].FileName)
	assert.Equal(t, entity.SourceURDFExtract, docs[0].Kind)

	ex, err := src.FetchText(context.Background(), docs[0])
	require.NoError(t, err)
	assert.Contains(t, ex.FullText, "robo_arm_mk2")
	require.Len(t, ex.PageMap, 1)
	assert.Equal(t, 1, ex.PageMap[0].Page)
}

func TestURDFSource_MissingDirListsEmpty(t *testing.T) {
	src := NewURDFSource(filepath.Join(t.TempDir(), "absent"), nil)
	docs, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

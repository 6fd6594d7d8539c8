package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/metadata"
)

const sampleLSX = `<?xml version="1.0" encoding="UTF-8"?>
<save>
  <version major="4" minor="0" revision="0" build="0"/>
  <region id="Config">
    <node id="root">
      <children>
        <node id="ModuleInfo">
          <attribute id="UUID" value="11111111-1111-1111-1111-111111111111" type="guid"/>
          <attribute id="Name" value="TestMod" type="LSString"/>
          <attribute id="Folder" value="TestMod" type="LSString"/>
          <attribute id="Version64" value="36028797018963968" type="int64"/>
          <attribute id="Tags" value="Combat;Overhaul,Items" type="LSString"/>
          <attribute id="Created" value="2024-03-05T10:00:00Z" type="FixedString"/>
          <children>
            <node id="Dependencies">
              <children>
                <node id="Dependency">
                  <attribute id="UUID" value="22222222-2222-2222-2222-222222222222" type="guid"/>
                </node>
              </children>
            </node>
          </children>
        </node>
      </children>
    </node>
  </region>
</save>`

func TestParseMetaLSX_ExtractsModuleInfo(t *testing.T) {
	meta := metadata.ParseMetaLSX([]byte(sampleLSX))

	assert.Equal(t, "11111111-1111-1111-1111-111111111111", meta.Module.UUID)
	assert.Equal(t, "TestMod", meta.Module.Name)
	assert.Equal(t, "TestMod", meta.Module.Folder)
	assert.Equal(t, uint64(36028797018963968), meta.Module.Version)
	assert.Equal(t, []string{"Combat", "Overhaul", "Items"}, meta.Tags)
	assert.Equal(t, []string{"22222222-2222-2222-2222-222222222222"}, meta.Dependencies)
	require.NotNil(t, meta.CreatedAt)
}

func TestParseMetaLSX_OutsideCreatedIsFallbackOnly(t *testing.T) {
	doc := `<save>
  <attribute id="Created" value="2020-01-01" type="FixedString"/>
  <node id="root">
    <children>
      <node id="ModuleInfo">
        <attribute id="UUID" value="u" type="guid"/>
        <attribute id="Created" value="2024-06-01" type="FixedString"/>
      </node>
    </children>
  </node>
</save>`
	meta := metadata.ParseMetaLSX([]byte(doc))
	require.NotNil(t, meta.CreatedAt)

	expected := metadata.ParseCreatedAt("2024-06-01")
	require.NotNil(t, expected)
	assert.Equal(t, *expected, *meta.CreatedAt)
}

func TestParseCreatedAt_Formats(t *testing.T) {
	assert.NotNil(t, metadata.ParseCreatedAt("2024-03-05T10:00:00Z"))
	assert.NotNil(t, metadata.ParseCreatedAt("2024-03-05T10:00:00"))
	assert.NotNil(t, metadata.ParseCreatedAt("2024-03-05 10:00:00"))
	assert.NotNil(t, metadata.ParseCreatedAt("2024-03-05"))
	assert.Nil(t, metadata.ParseCreatedAt("not-a-date"))
}

func TestParseJSONMods_SingleAndArray(t *testing.T) {
	array := `{"Mods":[{"UUID":"a","Created":"2024-01-01"},{"Name":"NoTimestamp"}]}`
	mods := metadata.ParseJSONMods([]byte(array))
	require.Len(t, mods, 1)
	assert.Equal(t, "a", *mods[0].UUID)

	single := `{"Folder":"Solo","created":"2024-02-02"}`
	mods = metadata.ParseJSONMods([]byte(single))
	require.Len(t, mods, 1)
	assert.Equal(t, "Solo", *mods[0].Folder)
}

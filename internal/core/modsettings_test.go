package core_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agistaris/sigillink/internal/core"
	"github.com/agistaris/sigillink/internal/domain"
)

const sampleModsettings = `<?xml version="1.0" encoding="UTF-8"?>
<save>
    <version major="4" minor="0" revision="9" build="200" />
    <region id="ModuleSettings">
        <node id="root">
            <children>
                <node id="Mods">
                    <children>
                        <node id="ModuleShortDesc">
                            <attribute id="Folder" type="LSString" value="Gustav" />
                            <attribute id="MD5" type="LSString" value="" />
                            <attribute id="Name" type="LSString" value="Gustav" />
                            <attribute id="PublishHandle" type="uint64" value="0" />
                            <attribute id="UUID" type="guid" value="28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8" />
                            <attribute id="Version64" type="int64" value="1" />
                        </node>
                        <node id="ModuleShortDesc">
                            <attribute id="Folder" type="LSString" value="OldThirdParty" />
                            <attribute id="MD5" type="LSString" value="" />
                            <attribute id="Name" type="LSString" value="OldThirdParty" />
                            <attribute id="PublishHandle" type="uint64" value="0" />
                            <attribute id="UUID" type="guid" value="old-uuid" />
                            <attribute id="Version64" type="int64" value="1" />
                        </node>
                    </children>
                </node>
                <node id="ModOrder">
                    <children>
                        <node id="Module">
                            <attribute id="UUID" type="FixedString" value="28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8" />
                        </node>
                        <node id="Module">
                            <attribute id="UUID" type="FixedString" value="old-uuid" />
                        </node>
                    </children>
                </node>
            </children>
        </node>
    </region>
</save>`

func TestReadLoadOrder_ParsesModulesAndOrder(t *testing.T) {
	doc, err := parseLoadOrderForTest(t, sampleModsettings)
	require.NoError(t, err)
	require.Len(t, doc.Modules, 2)
	require.Equal(t, []string{"28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8", "old-uuid"}, doc.Order)

	snap := doc.Snapshot()
	require.Len(t, snap.Modules, 1)
	require.Equal(t, "old-uuid", snap.Modules[0].UUID)
	require.Equal(t, []string{"old-uuid"}, snap.Order)
}

func TestBuildLoadOrder_PreservesBaseAndAppendsInstalled(t *testing.T) {
	doc, err := parseLoadOrderForTest(t, sampleModsettings)
	require.NoError(t, err)

	installed := []domain.PackageInfo{{UUID: "new-uuid", Name: "NewMod", Folder: "NewMod", Version: 1}}
	rebuilt := core.BuildLoadOrder(doc, installed, []string{"new-uuid"})

	var names []string
	for _, m := range rebuilt.Modules {
		names = append(names, m.UUID)
	}
	require.Contains(t, names, "28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8") // base preserved
	require.Contains(t, names, "old-uuid")                             // unmanaged third-party preserved
	require.Contains(t, names, "new-uuid")                             // newly installed

	require.Equal(t, "28ac9ce2-2aba-8cda-b3b5-6e922f71b6b8", rebuilt.Order[0]) // base first
	require.Contains(t, rebuilt.Order, "new-uuid")
}

func TestWriteLoadOrder_AtomicRenameAndFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modsettings.lsx")

	doc := core.LoadOrderDoc{
		VersionMajor: "4", VersionMinor: "8", VersionRevision: "0", VersionBuild: "500",
		Modules: []core.ModuleNode{{Folder: "Gustav", Name: "Gustav", UUID: "base-uuid"}},
		Order:   []string{"base-uuid"},
	}
	require.NoError(t, core.WriteLoadOrder(path, doc))

	_, err := os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	require.True(t, strings.HasPrefix(text, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"))
	require.Contains(t, text, "value=\"base-uuid\" />")
}

func parseLoadOrderForTest(t *testing.T, xmlText string) (core.LoadOrderDoc, error) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "modsettings.lsx")
	require.NoError(t, os.WriteFile(path, []byte(xmlText), 0o644))
	return core.ReadLoadOrder(path)
}

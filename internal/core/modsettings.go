package core

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agistaris/sigillink/internal/domain"
)

// ModuleNode is one <node id="ModuleShortDesc"> entry from the game's
// load-order config, carrying its attributes verbatim so unmanaged
// third-party entries round-trip untouched.
type ModuleNode struct {
	Folder        string
	MD5           string
	Name          string
	PublishHandle uint64
	UUID          string
	Version64     uint64
}

// LoadOrderDoc is the parsed shape of the game's load-order config (§6):
// the Mods list (every known module, base and third-party) and the
// ModOrder list (UUIDs in load order), both in on-disk document order.
type LoadOrderDoc struct {
	VersionMajor, VersionMinor, VersionRevision, VersionBuild string
	Modules                                                   []ModuleNode
	Order                                                      []string
}

func defaultLoadOrderDoc() LoadOrderDoc {
	return LoadOrderDoc{VersionMajor: "4", VersionMinor: "8", VersionRevision: "0", VersionBuild: "500"}
}

// ReadLoadOrder parses path, returning a default empty document (not an
// error) if the file does not yet exist.
func ReadLoadOrder(path string) (LoadOrderDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultLoadOrderDoc(), nil
		}
		return LoadOrderDoc{}, fmt.Errorf("read load-order config: %w", err)
	}
	return parseLoadOrderXML(data)
}

type loadOrderFrame struct {
	id              string
	underMods       bool
	underModOrder   bool
	attrs           map[string]string
}

func parseLoadOrderXML(data []byte) (LoadOrderDoc, error) {
	doc := defaultLoadOrderDoc()

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false

	var stack []loadOrderFrame

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return LoadOrderDoc{}, fmt.Errorf("parse load-order config: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "version":
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "major":
						doc.VersionMajor = a.Value
					case "minor":
						doc.VersionMinor = a.Value
					case "revision":
						doc.VersionRevision = a.Value
					case "build":
						doc.VersionBuild = a.Value
					}
				}
			case "node":
				id := attrValueXML(el.Attr, "id")
				parentUnderMods, parentUnderModOrder := false, false
				if len(stack) > 0 {
					top := stack[len(stack)-1]
					parentUnderMods = top.underMods
					parentUnderModOrder = top.underModOrder
				}
				frame := loadOrderFrame{
					id:            id,
					underMods:     parentUnderMods || id == "Mods",
					underModOrder: parentUnderModOrder || id == "ModOrder",
					attrs:         map[string]string{},
				}
				stack = append(stack, frame)
			case "attribute":
				if len(stack) == 0 {
					continue
				}
				top := &stack[len(stack)-1]
				top.attrs[attrValueXML(el.Attr, "id")] = attrValueXML(el.Attr, "value")
			}
		case xml.EndElement:
			if el.Name.Local != "node" || len(stack) == 0 {
				continue
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch {
			case frame.underMods && frame.id == "ModuleShortDesc":
				doc.Modules = append(doc.Modules, ModuleNode{
					Folder:        frame.attrs["Folder"],
					MD5:           frame.attrs["MD5"],
					Name:          frame.attrs["Name"],
					PublishHandle: parseUint(frame.attrs["PublishHandle"]),
					UUID:          frame.attrs["UUID"],
					Version64:     parseUint(frame.attrs["Version64"]),
				})
			case frame.underModOrder && frame.id == "Module":
				if uuid, ok := frame.attrs["UUID"]; ok {
					doc.Order = append(doc.Order, uuid)
				}
			}
		}
	}

	return doc, nil
}

func attrValueXML(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func parseUint(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

// Snapshot is the non-base subset of a load-order config, the shape most
// callers outside the deployer actually want.
type Snapshot struct {
	Modules []domain.PackageInfo
	Order   []string
}

// Snapshot filters out base modules, matching read_modsettings_snapshot's
// original behavior.
func (d LoadOrderDoc) Snapshot() Snapshot {
	var snap Snapshot
	baseUUIDs := make(map[string]struct{})
	for _, m := range d.Modules {
		if domain.IsBaseModule(m.Name, m.Folder) {
			baseUUIDs[m.UUID] = struct{}{}
			continue
		}
		snap.Modules = append(snap.Modules, domain.PackageInfo{
			UUID:          m.UUID,
			Name:          m.Name,
			Folder:        m.Folder,
			Version:       m.Version64,
			MD5:           m.MD5,
			PublishHandle: m.PublishHandle,
		})
	}
	for _, uuid := range d.Order {
		if _, isBase := baseUUIDs[uuid]; !isBase {
			snap.Order = append(snap.Order, uuid)
		}
	}
	return snap
}

// BuildLoadOrder rewrites existing per §4.8 step 6: base modules are kept
// in place, installed packages are (re)written into Mods, enabledOrder
// (profile order, enabled subset only) becomes the new ModOrder head, and
// any previously-listed module this deploy does not manage is preserved
// at the tail so the file stays additive-safe.
func BuildLoadOrder(existing LoadOrderDoc, installed []domain.PackageInfo, enabledOrder []string) LoadOrderDoc {
	out := existing
	out.Modules = nil
	out.Order = nil

	var baseNodes []ModuleNode
	var baseUUIDOrder []string
	baseUUIDs := make(map[string]struct{})
	for _, m := range existing.Modules {
		if domain.IsBaseModule(m.Name, m.Folder) {
			baseNodes = append(baseNodes, m)
			baseUUIDOrder = append(baseUUIDOrder, m.UUID)
			baseUUIDs[m.UUID] = struct{}{}
		}
	}

	installedUUIDs := make(map[string]struct{}, len(installed))
	for _, info := range installed {
		installedUUIDs[info.UUID] = struct{}{}
	}

	out.Modules = append(out.Modules, baseNodes...)
	for _, m := range existing.Modules {
		if _, isBase := baseUUIDs[m.UUID]; isBase {
			continue
		}
		if _, isInstalled := installedUUIDs[m.UUID]; isInstalled {
			continue
		}
		out.Modules = append(out.Modules, m)
	}
	for _, info := range installed {
		out.Modules = append(out.Modules, moduleShortDescFromInfo(info))
	}

	out.Order = append(out.Order, baseUUIDOrder...)
	enabledSet := make(map[string]struct{}, len(enabledOrder))
	for _, uuid := range enabledOrder {
		enabledSet[uuid] = struct{}{}
		out.Order = append(out.Order, uuid)
	}
	for _, uuid := range existing.Order {
		if _, isBase := baseUUIDs[uuid]; isBase {
			continue
		}
		if _, isEnabled := enabledSet[uuid]; isEnabled {
			continue
		}
		if _, isInstalled := installedUUIDs[uuid]; isInstalled {
			continue
		}
		out.Order = append(out.Order, uuid)
	}

	return out
}

func moduleShortDescFromInfo(info domain.PackageInfo) ModuleNode {
	return ModuleNode{
		Folder:        info.Folder,
		MD5:           info.MD5,
		Name:          info.Name,
		PublishHandle: info.PublishHandle,
		UUID:          info.UUID,
		Version64:     info.Version,
	}
}

// WriteLoadOrder renders doc and writes it to path via write-to-temp-then-
// rename, per §5's atomicity guarantee for the load-order config.
func WriteLoadOrder(path string, doc LoadOrderDoc) error {
	xmlText := renderLoadOrderXML(doc)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create load-order config dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(xmlText), 0o644); err != nil {
		return fmt.Errorf("write load-order config temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize load-order config: %w", err)
	}
	return nil
}

func renderLoadOrderXML(doc LoadOrderDoc) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<save>\n")
	indent(&b, 1)
	fmt.Fprintf(&b, "<version major=\"%s\" minor=\"%s\" revision=\"%s\" build=\"%s\" />\n",
		doc.VersionMajor, doc.VersionMinor, doc.VersionRevision, doc.VersionBuild)
	indent(&b, 1)
	b.WriteString("<region id=\"ModuleSettings\">\n")
	indent(&b, 2)
	b.WriteString("<node id=\"root\">\n")
	indent(&b, 3)
	b.WriteString("<children>\n")

	indent(&b, 4)
	b.WriteString("<node id=\"Mods\">\n")
	indent(&b, 5)
	b.WriteString("<children>\n")
	for _, m := range doc.Modules {
		indent(&b, 6)
		b.WriteString("<node id=\"ModuleShortDesc\">\n")
		writeAttr(&b, 7, "Folder", "LSString", m.Folder)
		writeAttr(&b, 7, "MD5", "LSString", m.MD5)
		writeAttr(&b, 7, "Name", "LSString", m.Name)
		writeAttr(&b, 7, "PublishHandle", "uint64", strconv.FormatUint(m.PublishHandle, 10))
		writeAttr(&b, 7, "UUID", "guid", m.UUID)
		writeAttr(&b, 7, "Version64", "int64", strconv.FormatUint(m.Version64, 10))
		indent(&b, 6)
		b.WriteString("</node>\n")
	}
	indent(&b, 5)
	b.WriteString("</children>\n")
	indent(&b, 4)
	b.WriteString("</node>\n")

	indent(&b, 4)
	b.WriteString("<node id=\"ModOrder\">\n")
	indent(&b, 5)
	b.WriteString("<children>\n")
	for _, uuid := range doc.Order {
		indent(&b, 6)
		b.WriteString("<node id=\"Module\">\n")
		writeAttr(&b, 7, "UUID", "FixedString", uuid)
		indent(&b, 6)
		b.WriteString("</node>\n")
	}
	indent(&b, 5)
	b.WriteString("</children>\n")
	indent(&b, 4)
	b.WriteString("</node>\n")

	indent(&b, 3)
	b.WriteString("</children>\n")
	indent(&b, 2)
	b.WriteString("</node>\n")
	indent(&b, 1)
	b.WriteString("</region>\n")
	b.WriteString("</save>\n")
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("    ")
	}
}

func writeAttr(b *strings.Builder, depth int, id, typ, value string) {
	indent(b, depth)
	fmt.Fprintf(b, "<attribute id=\"%s\" type=\"%s\" value=\"%s\" />\n", id, typ, escapeXMLAttr(value))
}

func escapeXMLAttr(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
	)
	return replacer.Replace(s)
}

// Package metadata extracts mod identity from a package's embedded meta.lsx
// descriptor (an XML-ish node tree) and from companion info.json files.
package metadata

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/agistaris/sigillink/internal/domain"
)

// ModuleInfo is the subset of a ModuleInfo node's attributes this core
// cares about.
type ModuleInfo struct {
	UUID        string
	Name        string
	Folder      string
	Version     uint64
	MD5         string
	Author      string
	Description string
	ModuleType  string
}

// Meta is the parsed result of a meta.lsx document.
type Meta struct {
	Module       ModuleInfo
	Dependencies []string // dependency UUIDs
	Tags         []string
	CreatedAt    *int64
}

// node is a stack frame used while walking the descriptor.
type node struct {
	id             string
	inModuleInfo   bool
	inDependencies bool
	inDependency   bool
}

// ParseMetaLSX walks the decoded descriptor bytes and extracts module
// identity, dependency UUIDs, tags, and a resolved creation timestamp.
//
// The walker maintains an explicit stack of <node id="..."> frames. For
// every self-closing <attribute id=".." value=".."/> encountered, ancestor
// flags recomputed on push/pop decide where the value is routed:
//   - inside Dependencies/Dependency: a "UUID" attribute is a dependency id.
//   - inside ModuleInfo (outside its Dependencies subtree): attributes
//     populate ModuleInfo, and "Tags" /
//     "Created" / "CreatedOn" populate Tags / a module-scoped timestamp.
//   - a "Created" attribute seen outside ModuleInfo is kept only as a
//     fallback, used when no module-scoped timestamp was ever seen.
func ParseMetaLSX(data []byte) Meta {
	var meta Meta
	var outsideCreated *int64
	var moduleCreated *int64

	var stack []node
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	current := func() node {
		if len(stack) == 0 {
			return node{}
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "node":
				id := attrValue(t.Attr, "id")
				parent := current()
				n := node{id: id}
				n.inModuleInfo = parent.inModuleInfo || id == "ModuleInfo"
				n.inDependencies = parent.inDependencies || id == "Dependencies"
				n.inDependency = n.inDependencies && (parent.inDependency || id == "Dependency")
				stack = append(stack, n)
			case "attribute":
				id := attrValue(t.Attr, "id")
				value := attrValue(t.Attr, "value")
				cur := current()

				if cur.inDependencies && cur.inDependency && id == "UUID" {
					meta.Dependencies = append(meta.Dependencies, value)
				}

				if cur.inModuleInfo && !cur.inDependencies {
					switch id {
					case "UUID":
						meta.Module.UUID = value
					case "Name":
						meta.Module.Name = value
					case "Folder":
						meta.Module.Folder = value
					case "Version64":
						if v, err := strconv.ParseUint(value, 10, 64); err == nil {
							meta.Module.Version = v
						}
					case "MD5":
						meta.Module.MD5 = value
					case "Author":
						meta.Module.Author = value
					case "Description":
						meta.Module.Description = value
					case "ModuleType":
						meta.Module.ModuleType = value
					case "Tags":
						meta.Tags = splitTags(value)
					case "Created", "CreatedOn":
						if ts := ParseCreatedAt(value); ts != nil {
							moduleCreated = ts
						}
					}
				} else if id == "Created" || id == "CreatedOn" {
					if ts := ParseCreatedAt(value); ts != nil && outsideCreated == nil {
						outsideCreated = ts
					}
				}
			}
		case xml.EndElement:
			if t.Name.Local == "node" && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if moduleCreated != nil {
		meta.CreatedAt = moduleCreated
	} else {
		meta.CreatedAt = outsideCreated
	}

	return meta
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// splitTags splits a Tags attribute value on any of ';', ',', '|'.
func splitTags(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ';' || r == ',' || r == '|'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ToPackageInfo converts the parsed ModuleInfo into the domain.PackageInfo
// shape stored on a ModEntry's Package target.
func (m Meta) ToPackageInfo() domain.PackageInfo {
	return domain.PackageInfo{
		UUID:        m.Module.UUID,
		Name:        m.Module.Name,
		Folder:      m.Module.Folder,
		Version:     m.Module.Version,
		MD5:         m.Module.MD5,
		Author:      m.Module.Author,
		Description: m.Module.Description,
		ModuleType:  m.Module.ModuleType,
	}
}

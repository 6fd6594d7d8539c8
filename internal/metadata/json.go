package metadata

import (
	"encoding/json"
	"os"
)

// JSONModInfo is one entry from an info.json/mod.json/modinfo.json's "Mods"
// array (or a single bare object), used to correlate a created timestamp
// back to a package by UUID, folder, or name.
type JSONModInfo struct {
	UUID      *string
	Folder    *string
	Name      *string
	CreatedAt *int64
}

type jsonModRaw struct {
	UUID      *string `json:"UUID"`
	Folder    *string `json:"Folder"`
	Name      *string `json:"Name"`
	Created   *string `json:"Created"`
	CreatedLC *string `json:"created"`
}

type jsonModsDoc struct {
	Mods []jsonModRaw `json:"Mods"`
}

// ReadJSONMods reads and parses an info.json-shaped file, tolerating either
// a {"Mods": [...]} wrapper or a single bare mod object. Entries lacking a
// Created/created field are dropped, matching the original's requirement
// that every contributed entry carry a timestamp.
func ReadJSONMods(path string) []JSONModInfo {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return ParseJSONMods(raw)
}

// ParseJSONMods is the pure parsing half of ReadJSONMods, split out for
// testing without touching the filesystem.
func ParseJSONMods(raw []byte) []JSONModInfo {
	var doc jsonModsDoc
	if err := json.Unmarshal(raw, &doc); err == nil && len(doc.Mods) > 0 {
		return parseJSONModList(doc.Mods)
	}

	var single jsonModRaw
	if err := json.Unmarshal(raw, &single); err == nil {
		if info, ok := parseJSONMod(single); ok {
			return []JSONModInfo{info}
		}
	}
	return nil
}

func parseJSONModList(raws []jsonModRaw) []JSONModInfo {
	out := make([]JSONModInfo, 0, len(raws))
	for _, r := range raws {
		if info, ok := parseJSONMod(r); ok {
			out = append(out, info)
		}
	}
	return out
}

func parseJSONMod(r jsonModRaw) (JSONModInfo, bool) {
	created := r.Created
	if created == nil {
		created = r.CreatedLC
	}
	if created == nil {
		return JSONModInfo{}, false
	}
	ts := ParseCreatedAt(*created)
	if ts == nil {
		return JSONModInfo{}, false
	}
	return JSONModInfo{UUID: r.UUID, Folder: r.Folder, Name: r.Name, CreatedAt: ts}, true
}

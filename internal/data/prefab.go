package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PrefabEntry describes an entity to spawn at startup.
type PrefabEntry struct {
	Name     string      `yaml:"name"`
	Tag      string      `yaml:"tag"`
	Layers   []string    `yaml:"layers"`
	Position [3]float32  `yaml:"position"`
	Velocity *[3]float32 `yaml:"velocity"` // nil: no Velocity component
	Script   string      `yaml:"script"`   // empty: no Script component
	Parent   string      `yaml:"parent"`   // name of an earlier prefab
	Count    int         `yaml:"count"`    // copies to spawn; 0 means 1
}

// Copies returns how many entities the entry spawns.
func (e *PrefabEntry) Copies() int {
	if e.Count <= 0 {
		return 1
	}
	return e.Count
}

// PrefabTable holds prefabs in file order, which is also spawn order.
type PrefabTable struct {
	prefabs []*PrefabEntry
	byName  map[string]*PrefabEntry
}

// LoadPrefabTable loads prefabs.yaml.
func LoadPrefabTable(path string) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefab list: %w", err)
	}
	return ParsePrefabTable(raw)
}

// ParsePrefabTable parses a prefab list. Names must be unique and a parent
// must be declared before its children.
func ParsePrefabTable(raw []byte) (*PrefabTable, error) {
	var entries []PrefabEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse prefab list: %w", err)
	}
	t := &PrefabTable{
		prefabs: make([]*PrefabEntry, 0, len(entries)),
		byName:  make(map[string]*PrefabEntry, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if e.Name == "" {
			return nil, fmt.Errorf("prefab %d: missing name", i)
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("prefab %q: duplicate name", e.Name)
		}
		if e.Parent != "" {
			if _, ok := t.byName[e.Parent]; !ok {
				return nil, fmt.Errorf("prefab %q: parent %q not declared before it", e.Name, e.Parent)
			}
		}
		t.byName[e.Name] = e
		t.prefabs = append(t.prefabs, e)
	}
	return t, nil
}

// Get returns the prefab with the given name, or nil if none.
func (t *PrefabTable) Get(name string) *PrefabEntry {
	return t.byName[name]
}

// All returns the prefabs in spawn order.
func (t *PrefabTable) All() []*PrefabEntry {
	return t.prefabs
}

// Count returns the total number of prefabs loaded.
func (t *PrefabTable) Count() int {
	return len(t.prefabs)
}

// Entities returns how many entities spawning every prefab creates.
func (t *PrefabTable) Entities() int {
	n := 0
	for _, p := range t.prefabs {
		n += p.Copies()
	}
	return n
}

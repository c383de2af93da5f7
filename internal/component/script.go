package component

// Script binds a behaviour script to an entity. Pure data: the script
// instance itself lives in the scripting engine, keyed by entity.
type Script struct {
	Name string
}

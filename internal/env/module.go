package env

// ModuleInterface is the exported surface of an already-compiled module:
// enough of its environment entries to resolve references from a
// downstream module's imports.
type ModuleInterface struct {
	Name         string
	Types        map[string]Entry // DataEntry / TypeSynEntry, keyed by source name
	Constructors map[string]Entry // ConEntry, keyed by source name
	Functions    map[string]Entry // FuncEntry, keyed by source name
}

// NewModuleInterface creates an empty interface for the given module name.
func NewModuleInterface(name string) *ModuleInterface {
	return &ModuleInterface{
		Name:         name,
		Types:        map[string]Entry{},
		Constructors: map[string]Entry{},
		Functions:    map[string]Entry{},
	}
}

// Export records one entry in the module's interface, keyed by its source
// (unqualified) name.
func (m *ModuleInterface) Export(key string, e Entry) {
	switch e.(type) {
	case *DataEntry, *TypeSynEntry:
		m.Types[key] = e
	case *ConEntry:
		m.Constructors[key] = e
	case *FuncEntry:
		m.Functions[key] = e
	}
}

// moduleCache is the process-local, read-only-during-compilation cache of
// already-loaded module interfaces.
type moduleCache struct {
	byName map[string]*ModuleInterface
}

func newModuleCache() *moduleCache {
	return &moduleCache{byName: map[string]*ModuleInterface{}}
}

// Register adds a compiled module's interface to the cache. Intended to be
// called only by the driver between module compilations, never mid-pass.
func (c *moduleCache) Register(iface *ModuleInterface) {
	c.byName[iface.Name] = iface
}

// Lookup returns a previously-registered module's interface.
func (c *moduleCache) Lookup(name string) (*ModuleInterface, bool) {
	iface, ok := c.byName[name]
	return iface, ok
}

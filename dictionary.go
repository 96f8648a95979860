// dictionary.go - the character dictionary (component C3)

package swf

// Dictionary is the set-once, read-many character table built while
// parsing a file (and, recursively, a DefineSprite's nested tag stream).
// It never mutates after parse completes, so display-tree nodes may hold
// a *Character directly without any lifetime coordination with the parser.
type Dictionary struct {
	byID       map[uint16]*Character
	exportName map[string]uint16
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{byID: make(map[uint16]*Character), exportName: make(map[string]uint16)}
}

// Define installs a character under id, failing if the id is already bound:
// the format guarantees character ids are assigned once, and a collision
// indicates a malformed or adversarial file rather than a legitimate redefine.
func (d *Dictionary) Define(id uint16, c *Character) error {
	if _, exists := d.byID[id]; exists {
		return newErr(DuplicateCharacterId, "Dictionary.Define", "character id already bound")
	}
	c.ID = id
	d.byID[id] = c
	return nil
}

// Lookup returns the character bound to id, or (nil, false) if none exists.
// Callers in the display tree and parser treat a miss as a DictionaryMiss,
// logged and skipped rather than fatal, per the runtime error recovery
// policy: a bad reference should not stop the rest of the movie playing.
func (d *Dictionary) Lookup(id uint16) (*Character, bool) {
	c, ok := d.byID[id]
	return c, ok
}

// BindExportName records an ExportAssets alias; a future external-loading
// surface (outside this player's scope) would use this to resolve a shared
// library reference by name instead of by local id.
func (d *Dictionary) BindExportName(name string, id uint16) {
	d.exportName[name] = id
	if c, ok := d.byID[id]; ok {
		c.ExportName = name
	}
}

// LookupExportName resolves a name bound by ExportAssets.
func (d *Dictionary) LookupExportName(name string) (*Character, bool) {
	id, ok := d.exportName[name]
	if !ok {
		return nil, false
	}
	return d.Lookup(id)
}

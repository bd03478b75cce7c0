package api

//IDField is the canonical name of a document's identifier, the one callers use
//regardless of the active backend. It matches the document store's native key;
//the relational backend maps it to its own primary key column.
const IDField = "_id"

//Document represents a single record of a collection: a mapping from field
//name to value. Field shape is caller-defined; the only key with reserved
//meaning is IDField.
type Document map[string]interface{}

//ID returns the canonical identifier of the document, or nil when absent.
func (d Document) ID() interface{} {
	return d[IDField]
}

package dialect

import (
	"github.com/xdbsoft/polystore/api"
)

//NormalizeOne reshapes a relational row into the canonical document form
func NormalizeOne(d api.Document) api.Document {
	return ToCanonical(d)
}

//NormalizeMany normalizes every row of a result set, preserving input order.
//It neither deduplicates nor re-sorts.
func NormalizeMany(docs []api.Document) []api.Document {
	for i, d := range docs {
		docs[i] = ToCanonical(d)
	}
	return docs
}

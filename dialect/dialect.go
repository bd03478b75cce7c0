//Package dialect translates between the document query algebra and the
//relational query-builder algebra: identifier mapping, filter, sort and
//update translation, and normalization of row results back into the
//canonical document shape. All functions are pure and never mutate their
//arguments; the relational backend threads its arguments through them before
//dispatch and its results through them on the way back.
package dialect

import (
	"github.com/xdbsoft/polystore/api"
)

//NativeIDField is the primary key column of the relational backend
const NativeIDField = "id"

//ToNative renames the canonical identifier key of a filter to the relational
//primary key column, exactly once, preserving every other entry. Filters
//without the canonical key are returned unchanged, which also makes the
//transform idempotent.
func ToNative(f api.Filter) api.Filter {

	c, ok := f[api.IDField]
	if !ok {
		return f
	}

	out := make(api.Filter, len(f))
	for k, v := range f {
		if k != api.IDField {
			out[k] = v
		}
	}
	out[NativeIDField] = c

	return out
}

//ToCanonical adds the canonical identifier key to a row that carries only the
//native one. The native key is kept, so the transform is non-destructive and
//idempotent. A nil document stays nil.
func ToCanonical(d api.Document) api.Document {

	if d == nil {
		return nil
	}

	id, ok := d[NativeIDField]
	if !ok {
		return d
	}
	if _, ok := d[api.IDField]; ok {
		return d
	}

	out := make(api.Document, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	out[api.IDField] = id

	return out
}

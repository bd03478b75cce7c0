package dialect

import (
	"github.com/xdbsoft/polystore/api"
)

//DefaultScanLimit bounds a paginated scan when the caller gave an offset but
//no limit: the relational backend cannot skip rows without a bounded range.
//Substituting this bound is a compatibility compromise, not a correctness
//guarantee; callers that expect more rows past an offset must pass an explicit
//limit.
const DefaultScanLimit = 1000

//OrderColumn returns the ordering key for the relational backend. The builder
//takes a single ordering key per call, so only the first entry of the sort
//specification is honored; further entries are a documented limitation of the
//relational path, not silently equivalent to the document store's multi-key
//sort.
func OrderColumn(sort []api.SortField) (column string, descending bool, ok bool) {
	if len(sort) == 0 {
		return "", false, false
	}
	return sort[0].Field, sort[0].Descending, true
}

//Window converts the caller's limit/skip pair into the effective bounded
//range of the relational backend, substituting DefaultScanLimit when an
//offset is requested without a limit.
func Window(limit, skip int64) (int64, int64) {
	if skip > 0 && limit <= 0 {
		limit = DefaultScanLimit
	}
	return limit, skip
}

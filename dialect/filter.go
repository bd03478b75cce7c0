package dialect

import (
	"github.com/xdbsoft/polystore/api"
)

//Conditions flattens a filter into the map-condition form of the query
//builder: equality constraints keep their literal, membership constraints
//carry their value set as a slice, which the builder renders as an IN
//predicate. Filters are a conjunction of per-field constraints, so a single
//pass reconstructs them; there is no tree to walk. An empty filter yields nil,
//meaning no predicate at all.
func Conditions(f api.Filter) map[string]interface{} {

	if len(f) == 0 {
		return nil
	}

	out := make(map[string]interface{}, len(f))
	for field, c := range f {
		if c.IsMembership() {
			out[field] = c.Values()
		} else {
			out[field] = c.Literal()
		}
	}

	return out
}

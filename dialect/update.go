package dialect

import (
	"time"

	"github.com/xdbsoft/polystore/api"
)

//UpdatedAtField is the last-modification timestamp column of the relational
//backend, stamped on every insert and update.
const UpdatedAtField = "updated_at"

//CreatedAtField is the creation timestamp column of the relational backend
const CreatedAtField = "created_at"

//Columns converts an update expression into the column-update map of the
//relational backend, stamping the last-modified timestamp with now. A
//caller-supplied timestamp field loses: the translator's write wins.
func Columns(u api.Update, now time.Time) map[string]interface{} {

	fields := u.Fields()

	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[UpdatedAtField] = now.UTC()

	return out
}

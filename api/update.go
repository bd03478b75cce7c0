package api

import (
	"fmt"
	"strings"
)

//Update is a partial-update expression: the set of field assignments to apply
//to every matched document.
type Update struct {
	fields map[string]interface{}
}

//Set builds an update expression assigning the given fields
func Set(fields map[string]interface{}) Update {
	return Update{fields: fields}
}

//Fields returns the field assignments of the expression
func (u Update) Fields() map[string]interface{} {
	return u.fields
}

const setOperator = "$set"

//ParseUpdate decodes the two loose payload shapes of an update expression: a
//flat field→value mapping, or the mapping wrapped in a "$set" operator. Any
//other operator key is a translation ambiguity and is rejected rather than
//silently applied as a field assignment.
func ParseUpdate(raw map[string]interface{}) (Update, error) {

	if wrapped, ok := raw[setOperator]; ok {
		if len(raw) != 1 {
			return Update{}, ambiguityError("update mixes $set with other entries")
		}
		fields, ok := wrapped.(map[string]interface{})
		if !ok {
			return Update{}, ambiguityError("$set expects a field mapping")
		}
		return Set(fields), nil
	}

	for k := range raw {
		if strings.HasPrefix(k, "$") {
			return Update{}, ambiguityError(fmt.Sprintf("unrecognized update operator %q", k))
		}
	}

	return Set(raw), nil
}

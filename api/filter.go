package api

import (
	"fmt"
	"strings"
)

//Filter selects documents by a conjunction of per-field constraints. There is
//no disjunction and no nesting: every entry must hold for a document to match.
type Filter map[string]Condition

type conditionKind int

const (
	condEq conditionKind = iota
	condIn
)

//Condition constrains a single field of a filter, either to equal a literal or
//to be a member of a value set. The zero value is an equality against nil.
type Condition struct {
	kind   conditionKind
	value  interface{}
	values []interface{}
}

//Eq builds an equality constraint against a literal value
func Eq(value interface{}) Condition {
	return Condition{kind: condEq, value: value}
}

//In builds a membership constraint against a set of values
func In(values ...interface{}) Condition {
	return Condition{kind: condIn, values: values}
}

//IsMembership returns whether the condition is a membership-in-set constraint
func (c Condition) IsMembership() bool {
	return c.kind == condIn
}

//Literal returns the value of an equality constraint
func (c Condition) Literal() interface{} {
	return c.value
}

//Values returns the value set of a membership constraint
func (c Condition) Values() []interface{} {
	return c.values
}

const inOperator = "$in"

//ParseFilter decodes the loose mapping form of a filter, as received on the
//wire, into its tagged form. A field value that is a plain literal (including
//a nested mapping without operator keys) becomes an equality constraint; a
//mapping holding exactly the "$in" operator becomes a membership constraint.
//Any other operator key is a translation ambiguity and is rejected rather than
//silently treated as equality.
func ParseFilter(raw map[string]interface{}) (Filter, error) {
	if raw == nil {
		return nil, nil
	}

	f := make(Filter, len(raw))
	for field, value := range raw {

		expr, ok := value.(map[string]interface{})
		if !ok || !hasOperatorKey(expr) {
			f[field] = Eq(value)
			continue
		}

		if len(expr) != 1 {
			return nil, ambiguityError(fmt.Sprintf("field %q mixes operators with literals", field))
		}

		in, ok := expr[inOperator]
		if !ok {
			return nil, ambiguityError(fmt.Sprintf("field %q uses an unrecognized operator", field))
		}

		values, ok := in.([]interface{})
		if !ok {
			return nil, ambiguityError(fmt.Sprintf("field %q: %s expects a value list", field, inOperator))
		}

		f[field] = In(values...)
	}

	return f, nil
}

func hasOperatorKey(expr map[string]interface{}) bool {
	for k := range expr {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

type ambiguityError string

func (err ambiguityError) Error() string {
	return string(err)
}

func (err ambiguityError) IsTranslationAmbiguity() bool {
	return true
}

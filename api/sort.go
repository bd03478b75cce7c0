package api

import "fmt"

//SortField is one entry of a sort specification
type SortField struct {
	Field      string
	Descending bool
}

//Asc sorts by the given field in ascending order
func Asc(field string) SortField {
	return SortField{Field: field}
}

//Desc sorts by the given field in descending order
func Desc(field string) SortField {
	return SortField{Field: field, Descending: true}
}

//ParseSort decodes the two loose caller shapes of a sort specification: a bare
//field name, or a [field, direction] pair where the direction code -1 means
//descending and 1 ascending. Anything else is rejected as ambiguous.
func ParseSort(raw []interface{}) ([]SortField, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	sort := make([]SortField, 0, len(raw))
	for _, entry := range raw {

		switch e := entry.(type) {
		case string:
			sort = append(sort, Asc(e))

		case []interface{}:
			if len(e) != 2 {
				return nil, ambiguityError("sort entry is not a [field, direction] pair")
			}
			field, ok := e[0].(string)
			if !ok {
				return nil, ambiguityError("sort entry field is not a string")
			}
			desc, err := parseDirection(e[1])
			if err != nil {
				return nil, err
			}
			sort = append(sort, SortField{Field: field, Descending: desc})

		default:
			return nil, ambiguityError(fmt.Sprintf("unrecognized sort entry of type %T", entry))
		}
	}

	return sort, nil
}

func parseDirection(v interface{}) (bool, error) {

	var code int
	switch d := v.(type) {
	case int:
		code = d
	case float64: // JSON numbers decode as float64
		code = int(d)
	default:
		return false, ambiguityError(fmt.Sprintf("unrecognized sort direction of type %T", v))
	}

	switch code {
	case 1:
		return false, nil
	case -1:
		return true, nil
	}
	return false, ambiguityError(fmt.Sprintf("unrecognized sort direction %d", code))
}

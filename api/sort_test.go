package api

import (
	"reflect"
	"testing"
)

func TestParseSort(t *testing.T) {

	cases := []struct {
		name     string
		raw      []interface{}
		expected []SortField
	}{
		{
			name:     "empty",
			raw:      nil,
			expected: nil,
		},
		{
			name:     "bare field name",
			raw:      []interface{}{"name"},
			expected: []SortField{Asc("name")},
		},
		{
			name:     "field direction pairs",
			raw:      []interface{}{[]interface{}{"name", -1}, []interface{}{"age", 1}},
			expected: []SortField{Desc("name"), Asc("age")},
		},
		{
			name:     "JSON decoded direction",
			raw:      []interface{}{[]interface{}{"name", float64(-1)}},
			expected: []SortField{Desc("name")},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sort, err := ParseSort(c.raw)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(sort, c.expected) {
				t.Errorf("Expected %v, got %v", c.expected, sort)
			}
		})
	}
}

func TestParseSort_Ambiguous(t *testing.T) {

	cases := []struct {
		name string
		raw  []interface{}
	}{
		{
			name: "entry of unrecognized type",
			raw:  []interface{}{42},
		},
		{
			name: "pair with too many entries",
			raw:  []interface{}{[]interface{}{"name", -1, "extra"}},
		},
		{
			name: "direction out of range",
			raw:  []interface{}{[]interface{}{"name", 2}},
		},
		{
			name: "direction of unrecognized type",
			raw:  []interface{}{[]interface{}{"name", "desc"}},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseSort(c.raw)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !isAmbiguity(err) {
				t.Errorf("Expected a translation ambiguity, got %v", err)
			}
		})
	}
}

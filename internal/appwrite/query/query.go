// Package query builds the JSON filter expressions accepted by the
// documents list endpoint.
package query

import "encoding/json"

// Query is one filter, ordering or paging expression.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// String encodes q the way the backend expects it in queries[].
func (q Query) String() string {
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	return string(b)
}

func Equal[T any](attribute string, values ...T) Query {
	return Query{Method: "equal", Attribute: attribute, Values: anySlice(values)}
}

func Contains(attribute string, values ...string) Query {
	return Query{Method: "contains", Attribute: attribute, Values: anySlice(values)}
}

// Or matches documents satisfying any of queries.
func Or(queries ...Query) Query {
	return Query{Method: "or", Values: anySlice(queries)}
}

func Limit(n int) Query {
	return Query{Method: "limit", Values: []any{n}}
}

func OrderAsc(attribute string) Query {
	return Query{Method: "orderAsc", Attribute: attribute}
}

func OrderDesc(attribute string) Query {
	return Query{Method: "orderDesc", Attribute: attribute}
}

// Strings encodes qs for a list request.
func Strings(qs []Query) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.String())
	}
	return out
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

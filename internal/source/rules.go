package source

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Rule is a path of object keys into a decoded JSON document. The empty rule
// selects the document root.
type Rule []string

// Path builds a rule from keys.
func Path(keys ...string) Rule {
	return Rule(keys)
}

func (r Rule) String() string {
	if len(r) == 0 {
		return "<root>"
	}
	return strings.Join(r, ".")
}

func (r Rule) extract(doc any) (any, bool) {
	cur := doc
	for _, key := range r {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// Nested is the standard rule set for a payload named key: the backend may
// put it under data.data, under data, at the top level, or return the
// payload itself as data or as the whole body.
func Nested(key string) []Rule {
	return []Rule{
		Path("data", "data", key),
		Path("data", key),
		Path(key),
		Path("data", "data"),
		Path("data"),
		Path(),
	}
}

// Envelope is the rule set for payloads with no inner key.
func Envelope() []Rule {
	return []Rule{
		Path("data", "data"),
		Path("data"),
		Path(),
	}
}

// Decoder checks that an extracted value has the expected shape and converts
// it. Returning false moves on to the next rule.
type Decoder[T any] func(raw any) (T, bool)

// List accepts a JSON array whose every element decodes into E.
func List[E any]() Decoder[[]E] {
	return func(raw any) ([]E, bool) {
		items, ok := raw.([]any)
		if !ok {
			return nil, false
		}
		out := make([]E, 0, len(items))
		for _, item := range items {
			var e E
			if err := Convert(item, &e); err != nil {
				return nil, false
			}
			out = append(out, e)
		}
		return out, true
	}
}

// Object accepts a JSON object that decodes into T.
func Object[T any]() Decoder[T] {
	return func(raw any) (T, bool) {
		var out T
		if _, ok := raw.(map[string]any); !ok {
			return out, false
		}
		if err := Convert(raw, &out); err != nil {
			return out, false
		}
		return out, true
	}
}

// Number accepts a JSON number or a numeric string.
func Number() Decoder[decimal.Decimal] {
	return func(raw any) (decimal.Decimal, bool) {
		return ToDecimal(raw)
	}
}

// Count accepts a non-negative integral number, or an array whose length is
// the count.
func Count() Decoder[int] {
	return func(raw any) (int, bool) {
		if items, ok := raw.([]any); ok {
			return len(items), true
		}
		d, ok := ToDecimal(raw)
		if !ok || d.IsNegative() || !d.Equal(d.Truncate(0)) {
			return 0, false
		}
		return int(d.IntPart()), true
	}
}

// Text accepts a non-empty JSON string.
func Text() Decoder[string] {
	return func(raw any) (string, bool) {
		s, ok := raw.(string)
		return s, ok && s != ""
	}
}

// Extract applies rules to a raw response body, for callers that already
// hold a response such as the write paths.
func Extract[T any](body []byte, rules []Rule, decode Decoder[T]) (T, bool) {
	var zero T
	doc, err := parseDocument(body)
	if err != nil {
		return zero, false
	}
	for _, rule := range rules {
		raw, ok := rule.extract(doc)
		if !ok {
			continue
		}
		if v, ok := decode(raw); ok {
			return v, true
		}
	}
	return zero, false
}

// ToDecimal converts a decoded JSON number or numeric string.
func ToDecimal(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(v), true
	default:
		return decimal.Zero, false
	}
}

// Convert re-decodes a generic JSON value into out.
func Convert(raw any, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func parseDocument(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies a group, member, loan request or transaction. The API is not
// consistent about identifier types, so both JSON strings and JSON numbers
// decode into the same ID.
type ID string

// UnmarshalJSON accepts "42", 42 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id %s: %w", data, err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Less is a total order over IDs: integer IDs come first, compared by value
// so 2 sorts before 10, then every other ID in lexical order.
func (id ID) Less(other ID) bool {
	a, errA := strconv.ParseInt(string(id), 10, 64)
	b, errB := strconv.ParseInt(string(other), 10, 64)
	switch {
	case errA == nil && errB == nil:
		if a != b {
			return a < b
		}
		// "07" and "7" are the same number; keep them ordered anyway.
		return id < other
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return id < other
	}
}

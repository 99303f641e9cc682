// Package models provides data models for the respond service.
//
// Struct tags: `db` names the column for scany, `json` the API attribute.
// Nullable columns are pointers.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Role names with special meaning.
const (
	RoleAdmin = "ADMIN"
)

// EncodedGroups is the legacy text encoding of asset group membership ("[1,2]").
// Clients may send it either as that string or as a JSON array of ids; both
// are kept in string form, and parse failures are handled by the service.
type EncodedGroups string

func (e *EncodedGroups) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*e = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = EncodedGroups(s)
	default:
		// Raw array or anything else: keep the literal text.
		*e = EncodedGroups(data)
	}
	return nil
}

// FlexibleID accepts an id sent as a JSON number or a numeric string.
type FlexibleID int64

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*f = FlexibleID(n)
	return nil
}

// OptionalID distinguishes an absent id from an explicit null. Set is true
// whenever the key was present; Value is nil for null.
type OptionalID struct {
	Set   bool
	Value *int64
}

// SetID returns an OptionalID holding id.
func SetID(id int64) OptionalID {
	return OptionalID{Set: true, Value: &id}
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id FlexibleID
	if err := id.UnmarshalJSON(data); err != nil {
		return err
	}
	v := int64(id)
	o.Value = &v
	return nil
}

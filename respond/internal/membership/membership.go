// Package membership handles the legacy encoding of asset group membership:
// a text column holding a JSON array of group ids such as "[1,2,3]".
//
// The asset_group_assign table is the system of record. This package exists
// for rows written before that table and for the fan-out that populates it.
package membership

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// patterns returns the four textual shapes id can take inside an encoded list.
// The delimiters keep id 1 from matching "[12]".
func patterns(id int64) (first, middle, last, sole string) {
	s := strconv.FormatInt(id, 10)
	return "[" + s + ",", "," + s + ",", "," + s + "]", "[" + s + "]"
}

// Predicate returns a SQL filter matching rows whose column encodes a list
// containing id.
func Predicate(id int64, column string) sq.Sqlizer {
	first, middle, last, sole := patterns(id)
	return sq.Or{
		sq.Like{column: first + "%"},
		sq.Like{column: "%" + middle + "%"},
		sq.Like{column: "%" + last},
		sq.Eq{column: sole},
	}
}

// Matches applies the same four-pattern test as Predicate to an in-memory value.
func Matches(id int64, encoded string) bool {
	first, middle, last, sole := patterns(id)
	return strings.HasPrefix(encoded, first) ||
		strings.Contains(encoded, middle) ||
		strings.HasSuffix(encoded, last) ||
		encoded == sole
}

// Parse decodes an encoded list. A blank value means "no list" and returns
// nil without error; anything that is not a JSON array of integers fails.
func Parse(encoded string) ([]int64, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(encoded), &ids); err != nil {
		return nil, fmt.Errorf("malformed group list %q: %w", encoded, err)
	}
	return ids, nil
}

// Encode renders ids in the legacy format ("[1,2]"). Empty input gives "[]".
func Encode(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Column renders ids for the legacy asset_group_id column. No ids stores NULL.
func Column(ids []int64) *string {
	if len(ids) == 0 {
		return nil
	}
	s := Encode(ids)
	return &s
}

package membership

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		encoded string
		want    bool
	}{
		{"[1]", true},
		{"[1,2]", true},
		{"[2,1]", true},
		{"[2,1,3]", true},
		{"[12]", false},
		{"[21]", false},
		{"[12,31]", false},
		{"[2,11,3]", false},
		{"[]", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.encoded, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(1, tt.encoded))
		})
	}
}

func TestPredicateSQL(t *testing.T) {
	sql, args, err := sq.Select("asset_id").From("asset").
		Where(Predicate(1, "asset_group_id")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT asset_id FROM asset WHERE (asset_group_id LIKE $1 OR asset_group_id LIKE $2 OR asset_group_id LIKE $3 OR asset_group_id = $4)",
		sql)
	assert.Equal(t, []interface{}{"[1,%", "%,1,%", "%,1]", "[1]"}, args)
}

// likeMatch evaluates a LIKE pattern that only uses a leading and/or trailing %.
func likeMatch(pattern, s string) bool {
	prefix := len(pattern) > 0 && pattern[0] == '%'
	suffix := len(pattern) > 1 && pattern[len(pattern)-1] == '%'
	core := pattern
	if prefix {
		core = core[1:]
	}
	if suffix {
		core = core[:len(core)-1]
	}
	switch {
	case prefix && suffix:
		return contains(s, core)
	case prefix:
		return len(s) >= len(core) && s[len(s)-len(core):] == core
	case suffix:
		return len(s) >= len(core) && s[:len(core)] == core
	default:
		return s == core
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// The SQL predicate and Matches must agree on every shape.
func TestPredicateAgreesWithMatches(t *testing.T) {
	_, args, err := Predicate(7, "g").ToSql()
	require.NoError(t, err)

	for _, encoded := range []string{"[7]", "[7,8]", "[8,7]", "[8,7,9]", "[77]", "[17,70]", "[]"} {
		t.Run(encoded, func(t *testing.T) {
			sqlMatch := likeMatch(args[0].(string), encoded) ||
				likeMatch(args[1].(string), encoded) ||
				likeMatch(args[2].(string), encoded) ||
				encoded == args[3].(string)
			assert.Equal(t, Matches(7, encoded), sqlMatch)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    []int64
		wantErr bool
	}{
		{"two ids", "[1,2]", []int64{1, 2}, false},
		{"single", "[5]", []int64{5}, false},
		{"empty list", "[]", []int64{}, false},
		{"blank", "  ", nil, false},
		{"spaces allowed", "[1, 2]", []int64{1, 2}, false},
		{"truncated", "[1,", nil, true},
		{"not a list", "1,2", nil, true},
		{"strings", `["a"]`, nil, true},
		{"floats", "[1.5]", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.encoded)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "[]", Encode(nil))
	assert.Equal(t, "[3]", Encode([]int64{3}))
	assert.Equal(t, "[1,2,30]", Encode([]int64{1, 2, 30}))

	ids, err := Parse(Encode([]int64{4, 9}))
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 9}, ids)
}

func TestColumn(t *testing.T) {
	assert.Nil(t, Column(nil))
	assert.Nil(t, Column([]int64{}))

	got := Column([]int64{4, 9})
	require.NotNil(t, got)
	assert.Equal(t, "[4,9]", *got)
	assert.True(t, Matches(9, *got))
}

package value

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for _, tag := range Types {
		got, err := ParseType(string(tag))
		require.NoError(t, err)
		assert.Equal(t, tag, got)
	}

	_, err := ParseType("float")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown value type")
}

func TestValueTypeTags(t *testing.T) {
	tests := []struct {
		v    Value
		want Type
	}{
		{String("x"), TypeString},
		{Int(1), TypeInt},
		{Bool(true), TypeBool},
		{NewTime(time.Unix(0, 0)), TypeTime},
		{Duration(time.Minute), TypeDuration},
		{NewStringList("a"), TypeStringList},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.Type())
	}
}

func TestEqual(t *testing.T) {
	loc := time.FixedZone("X", 3600)
	a := NewTime(time.Date(2026, 1, 5, 10, 0, 0, 0, loc))
	b := NewTime(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))

	assert.True(t, Equal(a, b))
	assert.True(t, Equal(NewStringList("a", "b"), NewStringList("a", "b")))
	assert.False(t, Equal(NewStringList("a"), NewStringList("a", "b")))
	assert.False(t, Equal(Int(1), String("1")))
	assert.True(t, Equal(Int(7), Int(7)))
	assert.False(t, Equal(nil, Int(7)))
}

func TestFromAny(t *testing.T) {
	ts := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		typ  Type
		raw  any
		want Value
	}{
		{"string", TypeString, "hi", String("hi")},
		{"int", TypeInt, 3, Int(3)},
		{"int64", TypeInt, int64(3), Int(3)},
		{"integral float", TypeInt, float64(42), Int(42)},
		{"json number", TypeInt, json.Number("9"), Int(9)},
		{"bool", TypeBool, true, Bool(true)},
		{"time string", TypeTime, "2026-01-05T09:00:00Z", NewTime(ts)},
		{"time value", TypeTime, ts, NewTime(ts)},
		{"duration string", TypeDuration, "25m", Duration(25 * time.Minute)},
		{"strings", TypeStringList, []any{"a", "b"}, NewStringList("a", "b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.typ, tt.raw)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %#v", got)
		})
	}
}

func TestFromAnyRejects(t *testing.T) {
	_, err := FromAny(TypeInt, 1.5)
	assert.Error(t, err)

	_, err = FromAny(TypeString, 3)
	assert.Error(t, err)

	_, err = FromAny(TypeTime, "yesterday")
	assert.Error(t, err)

	_, err = FromAny(TypeStringList, []any{"a", 1})
	assert.Error(t, err)

	_, err = FromAny(Type("float"), 1)
	assert.Error(t, err)
}

func TestFromAnyFloatInt64Bounds(t *testing.T) {
	_, err := FromAny(TypeInt, float64(1<<63))
	assert.Error(t, err)

	v, err := FromAny(TypeInt, float64(-1<<63))
	require.NoError(t, err)
	assert.Equal(t, Int(-1<<63), v)
}

func TestToAnyRoundTrip(t *testing.T) {
	values := []Value{
		String("x"),
		Int(-4),
		Bool(false),
		NewTime(time.Date(2026, 3, 1, 12, 30, 0, 5, time.UTC)),
		Duration(90 * time.Second),
		NewStringList("a", "b"),
	}
	for _, v := range values {
		back, err := FromAny(v.Type(), ToAny(v))
		require.NoError(t, err)
		assert.True(t, Equal(v, back), "%s did not survive", v.Type())
	}
}

func TestMapClone(t *testing.T) {
	m := Map{"l": NewStringList("a")}
	c := m.Clone()
	c["l"].(StringList)[0] = "z"
	assert.Equal(t, "a", m["l"].(StringList)[0])
	assert.Nil(t, Map(nil).Clone())
}

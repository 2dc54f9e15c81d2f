package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_SetKeepsFirstPosition(t *testing.T) {
	t.Parallel()

	r := NewRecord(2)
	r.Set("b", String("1"))
	r.Set("a", String("2"))
	r.Set("b", String("3"))

	assert.Equal(t, []string{"b", "a"}, r.Keys())
	assert.Equal(t, 2, r.Len())

	v, ok := r.Get("b")
	require.True(t, ok)
	assert.Equal(t, "3", v.String())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestValue_IdentityIncludesKind(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, Number("1"), String("1"))
	assert.Equal(t, Number("1"), Number("1"))
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, "true", Bool(true).String())
	assert.Equal(t, KindNested, Nested(`{"a":1}`).Kind())
}

func TestSyntheticColumns(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"var1", "var2", "var3"}, SyntheticColumns(3))
	assert.Empty(t, SyntheticColumns(0))
}

func TestFromRow(t *testing.T) {
	t.Parallel()

	r := FromRow([]string{"name", "age"}, []string{"Alice", "30"})
	assert.Equal(t, []string{"name", "age"}, r.Keys())
	v, _ := r.Get("age")
	assert.Equal(t, String("30"), v)
}

package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{`"quoted"`, "quoted"},
		{`'single'`, "single"},
		{`  " padded inside "  `, "padded inside"},
		{`""`, ""},
		{`"'mixed'"`, "mixed"},
		{"it's fine", "it's fine"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clean(tt.in), "Clean(%q)", tt.in)
	}
}

func TestParsePositiveInt(t *testing.T) {
	t.Parallel()
	n, err := ParsePositiveInt(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = ParsePositiveInt(`"7"`)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	for _, bad := range []string{"", "0", "-3", "abc", "1.5", "0x10", "12abc"} {
		_, err := ParsePositiveInt(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()
	for _, v := range []string{"true", "TRUE", "1", "yes", "On"} {
		b, err := ParseBool(v)
		require.NoError(t, err, v)
		assert.True(t, b, v)
	}
	for _, v := range []string{"false", "0", "no", "OFF"} {
		b, err := ParseBool(v)
		require.NoError(t, err, v)
		assert.False(t, b, v)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	d, err := ParseDate("2021-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2021-03-04T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	for _, bad := range []string{"04/03/2021", "2021-13-01", "yesterday"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestPayload_String(t *testing.T) {
	t.Parallel()
	p, err := FromJSON([]byte(`{"name":"x","n":12,"flag":true,"nothing":null,"list":[1,2]}`))
	require.NoError(t, err)

	v, ok, err := p.String("name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	v, ok, _ = p.String("n")
	assert.True(t, ok)
	assert.Equal(t, "12", v)

	v, _, _ = p.String("flag")
	assert.Equal(t, "true", v)

	v, ok, _ = p.String("nothing")
	assert.True(t, ok)
	assert.Equal(t, "", v)

	_, ok, _ = p.String("missing")
	assert.False(t, ok)

	_, ok, err = p.String("list")
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrNotScalar)

	_, err = FromJSON([]byte(`[1,2,3]`))
	assert.Error(t, err)

	empty, err := FromJSON(nil)
	require.NoError(t, err)
	assert.False(t, empty.Has("anything"))
}

package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) *Value {
	t.Helper()
	v, err := Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func TestParseKeepsKeyOrder(t *testing.T) {
	v := mustParse(t, `{"parent":"block/cube","textures":{"up":"a","down":"b"},"elements":[]}`)

	assert.Equal(t, []string{"parent", "textures", "elements"}, v.Keys())
	textures, ok := v.Get("textures")
	require.True(t, ok)
	assert.Equal(t, []string{"up", "down"}, textures.Keys())
}

func TestParseRejectsTrailingData(t *testing.T) {
	_, err := Parse([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	v := mustParse(t, `{"pack":{"pack_format":15,"description":"<3 & more"},"list":[1,2.5],"empty":{},"none":[]}`)

	assert.Equal(t,
		`{"pack":{"pack_format":15,"description":"<3 & more"},"list":[1,2.5],"empty":{},"none":[]}`,
		string(Compact(v)))

	want := `{
  "pack": {
    "pack_format": 15,
    "description": "<3 & more"
  },
  "list": [
    1,
    2.5
  ],
  "empty": {},
  "none": []
}
`
	assert.Equal(t, want, string(Indent(v)))
}

func TestNumbersKeepLiteralText(t *testing.T) {
	v := mustParse(t, `[1, 1.50, -0, 1e3]`)
	assert.Equal(t, `[1,1.50,-0,1e3]`, string(Compact(v)))

	f, ok := v.Items()[3].AsFloat()
	require.True(t, ok)
	assert.Equal(t, 1000.0, f)

	assert.Equal(t, "-0.25", string(Compact(NewFloat(-0.25))))
	assert.Equal(t, "16", string(Compact(NewFloat(16))))
}

func TestObjectMutation(t *testing.T) {
	v := NewObject()
	v.Set("b", NewInt(1))
	v.Set("a", NewInt(2))
	v.Set("b", NewInt(3))
	assert.Equal(t, []string{"b", "a"}, v.Keys())

	v.Delete("b")
	assert.Equal(t, []string{"a"}, v.Keys())
	assert.False(t, v.Has("b"))
}

func TestCloneIsDeep(t *testing.T) {
	v := mustParse(t, `{"a":{"b":[1,2]}}`)
	c := v.Clone()

	inner, _ := c.Get("a")
	inner.Set("b", NewString("changed"))

	orig, _ := v.Get("a")
	b, _ := orig.Get("b")
	assert.True(t, b.IsArray())
	assert.False(t, Equal(v, c))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(mustParse(t, `{"a":1,"b":2}`), mustParse(t, `{"b":2,"a":1.0}`)))
	assert.False(t, Equal(mustParse(t, `[1,2]`), mustParse(t, `[2,1]`)))
	assert.False(t, Equal(mustParse(t, `"1"`), mustParse(t, `1`)))
}

func TestFromAnyAndToAny(t *testing.T) {
	v := FromAny(map[string]interface{}{
		"zeta":  []interface{}{"x", 2},
		"alpha": true,
		"mid":   nil,
	})

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, v.Keys())
	assert.Equal(t, `{"alpha":true,"mid":null,"zeta":["x",2]}`, string(Compact(v)))

	back := v.ToAny().(map[string]interface{})
	assert.Equal(t, true, back["alpha"])
	assert.Equal(t, []interface{}{"x", int64(2)}, back["zeta"])
}

func TestStrings(t *testing.T) {
	v := mustParse(t, `["a", 1, "b", null]`)
	assert.Equal(t, []string{"a", "b"}, v.Strings())
}

func TestBind(t *testing.T) {
	var args struct {
		Path      string `mapstructure:"path"`
		Recursive bool   `mapstructure:"recursive"`
		Seed      int64  `mapstructure:"seed"`
		Offset    float64
	}
	v := mustParse(t, `{"path":"assets/minecraft/models","recursive":"true","seed":12,"offset":0.5}`)

	require.NoError(t, v.Bind(&args))
	assert.Equal(t, "assets/minecraft/models", args.Path)
	assert.True(t, args.Recursive)
	assert.Equal(t, int64(12), args.Seed)
	assert.Equal(t, 0.5, args.Offset)
}

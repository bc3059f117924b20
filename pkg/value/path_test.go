package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	assert.Nil(t, ParsePath(""))
	assert.Equal(t, Path{"textures", "*"}, ParsePath("textures/*"))
	assert.Equal(t, "a/b", Path{"a", "b"}.String())
	assert.True(t, ParsePath("a/*/c").HasWildcard())
	assert.False(t, ParsePath("a/b").HasWildcard())
}

func TestGet(t *testing.T) {
	root := mustParse(t, `{"elements":[{"from":[0,0,0]},{"from":[1,2,3]}],"textures":{"a":"x","b":"y"}}`)

	tests := []struct {
		name   string
		path   string
		want   []string
		wantOK bool
	}{
		{"literal", "textures/a", []string{`"x"`}, true},
		{"array index", "elements/1/from", []string{`[1,2,3]`}, true},
		{"wildcard over object", "textures/*", []string{`"x"`, `"y"`}, true},
		{"wildcard over array", "elements/*/from/0", []string{`0`, `1`}, true},
		{"missing literal", "textures/c", nil, false},
		{"index out of range", "elements/5", nil, false},
		{"wildcard with no matches", "textures/*/deeper", nil, true},
		{"root", "", []string{string(Compact(root))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Get(root, ParsePath(tt.path))
			assert.Equal(t, tt.wantOK, ok)

			var encoded []string
			for _, v := range got {
				encoded = append(encoded, string(Compact(v)))
			}
			assert.Equal(t, tt.want, encoded)
		})
	}
}

func TestSetThenGetRoundTrip(t *testing.T) {
	paths := []string{"a", "a/b", "textures/layer0", "elements/0/from", "deep/new/key"}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			root := mustParse(t, `{"a":{"b":1},"textures":{},"elements":[{"from":[0,0,0]}]}`)
			want := mustParse(t, `{"value":[1,"two",null]}`)

			root = Set(root, ParsePath(p), want, SetOptions{CreateMissing: true})

			got, ok := Get(root, ParsePath(p))
			require.True(t, ok)
			require.Len(t, got, 1)
			assert.True(t, Equal(want, got[0]))
		})
	}
}

func TestSetWildcardMutatesEveryBranch(t *testing.T) {
	root := mustParse(t, `{"a":{"x":1},"b":{"x":2},"c":{"x":3}}`)

	Set(root, ParsePath("*/x"), NewString("same"), SetOptions{})

	for _, k := range []string{"a", "b", "c"} {
		got, ok := Get(root, Path{k, "x"})
		require.True(t, ok)
		s, _ := got[0].AsString()
		assert.Equal(t, "same", s, k)
	}
}

func TestSetWildcardBranchesAreIndependent(t *testing.T) {
	root := mustParse(t, `{"a":{},"b":{}}`)
	Set(root, ParsePath("*"), mustParse(t, `{"n":0}`), SetOptions{})

	a, _ := Get(root, ParsePath("a"))
	a[0].Set("n", NewInt(9))

	b, _ := Get(root, ParsePath("b/n"))
	n, _ := b[0].AsInt()
	assert.Equal(t, int64(0), n)
}

func TestSetMerge(t *testing.T) {
	tests := []struct {
		name  string
		merge bool
		want  string
	}{
		{"merge", true, `{"t":{"a":1,"b":2}}`},
		{"replace", false, `{"t":{"b":2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, `{"t":{"a":1}}`)
			Set(root, ParsePath("t"), mustParse(t, `{"b":2}`), SetOptions{Merge: tt.merge})
			assert.Equal(t, tt.want, string(Compact(root)))
		})
	}
}

func TestSetMergeNeedsTwoObjects(t *testing.T) {
	root := mustParse(t, `{"t":"string"}`)
	Set(root, ParsePath("t"), mustParse(t, `{"b":2}`), SetOptions{Merge: true})
	assert.Equal(t, `{"t":{"b":2}}`, string(Compact(root)))
}

func TestSetCreateMissing(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		createMissing bool
		want          string
	}{
		{"builds nested maps", "display/gui/scale", true, `{"parent":"x","display":{"gui":{"scale":1}}}`},
		{"skipped without flag", "display/gui/scale", false, `{"parent":"x"}`},
		{"terminal key always set", "ambientocclusion", false, `{"parent":"x","ambientocclusion":1}`},
		{"wildcard below missing key skipped", "display/*/scale", true, `{"parent":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, `{"parent":"x"}`)
			Set(root, ParsePath(tt.path), NewInt(1), SetOptions{CreateMissing: tt.createMissing})
			assert.Equal(t, tt.want, string(Compact(root)))
		})
	}
}

func TestSetEmptyPathReplacesRoot(t *testing.T) {
	root := mustParse(t, `{"a":1}`)

	replaced := Set(root, nil, mustParse(t, `{"b":2}`), SetOptions{})
	assert.Equal(t, `{"b":2}`, string(Compact(replaced)))

	merged := Set(root, nil, mustParse(t, `{"b":2}`), SetOptions{Merge: true})
	assert.Equal(t, `{"a":1,"b":2}`, string(Compact(merged)))
}

func TestReplaceText(t *testing.T) {
	root := mustParse(t, `{"textures":{"all":"block/stone","side":"block/stone_side","count":4}}`)

	n, err := ReplaceText(root, ParsePath("textures/*"), `^block/(\w+)$`, `custom/\1`)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t,
		`{"textures":{"all":"custom/stone","side":"custom/stone_side","count":4}}`,
		string(Compact(root)))
}

func TestReplaceTextDollarIsLiteral(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		replacement string
		want        string
	}{
		{name: "group-like dollar", pattern: "stone", replacement: "$5", want: "block/$5"},
		{name: "braced dollar", pattern: "stone", replacement: "${1}x", want: "block/${1}x"},
		{name: "dollar next to backslash group", pattern: `^(block)/stone$`, replacement: `$\1$`, want: "$block$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, `{"all":"block/stone"}`)
			n, err := ReplaceText(root, ParsePath("all"), tt.pattern, tt.replacement)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			leaf, ok := root.Get("all")
			require.True(t, ok)
			got, ok := leaf.AsString()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplaceTextLiteralPath(t *testing.T) {
	root := mustParse(t, `{"parent":"block/cube_all"}`)

	n, err := ReplaceText(root, ParsePath("parent"), "cube_all", "cube_column")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, `{"parent":"block/cube_column"}`, string(Compact(root)))

	_, err = ReplaceText(root, ParsePath("parent"), "(", "x")
	assert.Error(t, err)
}

package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/errors"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New[int]("patch type")
	require.NoError(t, r.Register("replace", 1))
	require.NoError(t, r.Register("remove", 2))
	require.NoError(t, r.Register("mixin_json", 3))

	v, ok := r.Lookup("remove")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, []string{"replace", "remove", "mixin_json"}, r.Names())
	assert.Equal(t, 3, r.Count())

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegisterErrors(t *testing.T) {
	tests := []struct {
		name     string
		register string
		wantCode errors.ErrorCode
	}{
		{name: "empty name", register: "", wantCode: errors.ErrInvalidInput},
		{name: "duplicate", register: "a", wantCode: errors.ErrAlreadyExists},
		{name: "clashes with alias", register: "b", wantCode: errors.ErrAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New[string]("selector type")
			require.NoError(t, r.Register("a", "first"))
			require.NoError(t, r.Alias("b", "a"))

			err := r.Register(tt.register, "second")
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.wantCode))
		})
	}
}

func TestAlias(t *testing.T) {
	r := New[string]("argument")
	require.NoError(t, r.Register("blockstates", "states"))
	require.NoError(t, r.Alias("blocksates", "blockstates"))

	v, ok := r.Lookup("blocksates")
	assert.True(t, ok)
	assert.Equal(t, "states", v)
	assert.True(t, r.Has("blocksates"))
	assert.Equal(t, []string{"blockstates"}, r.Names())

	assert.True(t, errors.IsErrorCode(r.Alias("x", "nothing"), errors.ErrNotFound))
	assert.True(t, errors.IsErrorCode(r.Alias("blockstates", "blockstates"), errors.ErrAlreadyExists))
}

func TestGet(t *testing.T) {
	r := New[int]("modifier kind")
	require.NoError(t, r.Register("model_margin", 1))

	_, err := r.Get("spin")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Equal(t, []string{"model_margin"}, errors.GetErrorDetails(err)["available"])

	v, err := r.Get("model_margin")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestMustRegisterPanics(t *testing.T) {
	r := New[int]("thing")
	MustRegister(r, "a", 1)
	assert.Panics(t, func() { MustRegister(r, "a", 2) })
}

func TestConcurrentAccess(t *testing.T) {
	r := New[int]("thing")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(string(rune('a'+i%26))+string(rune('a'+i/26)), i)
			_ = r.Names()
			_, _ = r.Lookup("aa")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, r.Count())
}

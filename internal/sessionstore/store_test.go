package sessionstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("k", []byte(`[1,2,3]`))
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte(`[1,2,3]`), v)

	s.Delete("k")
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()

	in := []byte("abc")
	s.Set("k", in)
	in[0] = 'x'

	v, _ := s.Get("k")
	assert.Equal(t, []byte("abc"), v, "stored value must not alias the caller's slice")

	v[0] = 'y'
	again, _ := s.Get("k")
	assert.Equal(t, []byte("abc"), again)
}

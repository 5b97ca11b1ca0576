package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delph-in/gomrs/codec"
	"github.com/delph-in/gomrs/mrs"
)

type fakeCodec struct {
	name string
	exts []string
}

func (f fakeCodec) Name() string         { return f.name }
func (f fakeCodec) Extensions() []string { return f.exts }

func (f fakeCodec) Decode(data []byte) (*mrs.Graph, error) {
	return mrs.Builder{}.Build()
}

func (f fakeCodec) Encode(g *mrs.Graph, opts *codec.Options) ([]byte, error) {
	return []byte(f.name), nil
}

func TestRegistryLookup(t *testing.T) {
	r := codec.NewRegistry()
	r.Register(fakeCodec{name: "simplemrs", exts: []string{".mrs", ".smrs"}})
	r.Register(fakeCodec{name: "mrx", exts: []string{".mrx"}})
	r.Register(fakeCodec{name: "mrs-json", exts: []string{".mrs.json"}})

	t.Run("by name", func(t *testing.T) {
		require.NotNil(t, r.ByName("simplemrs"))
		assert.Equal(t, "simplemrs", r.ByName("simplemrs").Name())
		assert.Nil(t, r.ByName("prolog"))
	})

	t.Run("by file", func(t *testing.T) {
		require.NotNil(t, r.ByFile("corpus/item-001.mrs"))
		assert.Equal(t, "simplemrs", r.ByFile("corpus/item-001.mrs").Name())
		assert.Equal(t, "simplemrs", r.ByFile("UPPER.SMRS").Name(), "extension match is case-insensitive")
		assert.Equal(t, "mrx", r.ByFile("item.mrx").Name())
		assert.Nil(t, r.ByFile("notes.txt"))
	})

	t.Run("longest suffix wins", func(t *testing.T) {
		assert.Equal(t, "mrs-json", r.ByFile("item.mrs.json").Name())
		assert.Equal(t, "simplemrs", r.ByFile("item.mrs").Name())
	})

	t.Run("names sorted", func(t *testing.T) {
		assert.Equal(t, []string{"mrs-json", "mrx", "simplemrs"}, r.Names())
	})
}

func TestRegistryDecode(t *testing.T) {
	r := codec.NewRegistry()
	r.Register(fakeCodec{name: "simplemrs", exts: []string{".mrs"}})

	g, err := r.Decode("a.mrs", []byte("[ ]"))
	require.NoError(t, err)
	assert.NotNil(t, g)

	_, err = r.Decode("a.unknown", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no codec for file type")
}

func TestRegistryReplace(t *testing.T) {
	r := codec.NewRegistry()
	r.Register(fakeCodec{name: "simplemrs", exts: []string{".mrs"}})
	r.Register(fakeCodec{name: "simplemrs", exts: []string{".mrs", ".simple"}})

	assert.Equal(t, []string{"simplemrs"}, r.Names())
	require.NotNil(t, r.ByFile("a.simple"))
}

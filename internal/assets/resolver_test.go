package assets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/assetpairs/api"
	"github.com/agentic-research/assetpairs/internal/source"
)

// batchOf builds raw files from name/content pairs. Names ending in .json get
// a default document unless a content is given.
func batchOf(t *testing.T, specs ...string) []source.RawFile {
	t.Helper()
	var files []source.RawFile
	for _, s := range specs {
		name, content := s, ""
		for i := 0; i < len(s); i++ {
			if s[i] == '=' {
				name, content = s[:i], s[i+1:]
				break
			}
		}
		if content == "" && RoleOf(name) == RoleMetadata {
			stem, _ := splitExt(name)
			content = fmt.Sprintf(`{"name":"Item %s"}`, stem)
		}
		files = append(files, source.RawFile{Name: name, Content: []byte(content)})
	}
	return files
}

func resolve(t *testing.T, files []source.RawFile) (*Batch, error) {
	t.Helper()
	r := NewResolver("assets")
	r.Workers = 4
	return r.Resolve(context.Background(), files)
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
	var ae *Error
	require.True(t, errors.As(err, &ae))
	return ae
}

func TestResolve_EndToEnd(t *testing.T) {
	files := batchOf(t, `0.json={"name":"Item #0"}`, "0.png=png", "0.mp4=mp4")

	b, err := resolve(t, files)
	require.NoError(t, err)
	require.Len(t, b.Pairs, 1)

	got := b.Pairs[0]
	assert.Equal(t, api.LogicalIndex(0), got.Index)
	assert.Equal(t, "Item #0", got.Pair.Name)
	assert.Equal(t, "assets/0.json", got.Pair.Metadata)
	assert.Equal(t, Digest("assets/0.json"), got.Pair.MetadataHash)
	assert.Equal(t, "assets/0.png", got.Pair.Image)
	assert.Equal(t, Digest("assets/0.png"), got.Pair.ImageHash)
	assert.Equal(t, "assets/0.mp4", got.Pair.Animation)
	assert.Equal(t, Digest("assets/0.mp4"), got.Pair.AnimationHash)
	assert.Equal(t, files, b.Files)
}

func TestResolve_HashesPathNotBytes(t *testing.T) {
	a, err := resolve(t, batchOf(t, "0.json", "0.png=one"))
	require.NoError(t, err)
	b, err := resolve(t, batchOf(t, "0.json", "0.png=two"))
	require.NoError(t, err)

	assert.Equal(t, a.Pairs[0].Pair.ImageHash, b.Pairs[0].Pair.ImageHash)
	assert.NotEqual(t, Digest("one"), a.Pairs[0].Pair.ImageHash)
}

func TestResolve_NoAnimation(t *testing.T) {
	b, err := resolve(t, batchOf(t, "0.json", "0.jpeg"))
	require.NoError(t, err)
	p := b.Pairs[0].Pair
	assert.False(t, p.HasAnimation())
	assert.Empty(t, p.AnimationHash)
}

func TestResolve_CollectionSentinel(t *testing.T) {
	b, err := resolve(t, batchOf(t,
		`collection.json={"name":"My Collection"}`, "collection.png",
		"0.json", "0.png",
	))
	require.NoError(t, err)
	require.Len(t, b.Pairs, 2)

	assert.Equal(t, api.CollectionIndex, b.Pairs[0].Index)
	assert.True(t, b.Pairs[0].Index.IsCollection())
	assert.Equal(t, "My Collection", b.Pairs[0].Pair.Name)
	assert.Equal(t, api.LogicalIndex(0), b.Pairs[1].Index)
}

func TestResolve_OrderFollowsMetadataEnumeration(t *testing.T) {
	b, err := resolve(t, batchOf(t, "2.json", "0.json", "1.json", "0.png", "1.png", "2.png"))
	require.NoError(t, err)

	var order []api.LogicalIndex
	for _, p := range b.Pairs {
		order = append(order, p.Index)
	}
	assert.Equal(t, []api.LogicalIndex{2, 0, 1}, order)

	sorted := b.Sorted()
	assert.Equal(t, api.LogicalIndex(0), sorted[0].Index)
	assert.Equal(t, api.LogicalIndex(2), sorted[2].Index)
	assert.Equal(t, api.LogicalIndex(2), b.Pairs[0].Index, "Sorted must not reorder the batch")
}

func TestResolve_Errors(t *testing.T) {
	t.Run("no selection", func(t *testing.T) {
		_, err := resolve(t, nil)
		requireKind(t, err, NoSelection)
	})

	t.Run("no metadata", func(t *testing.T) {
		_, err := resolve(t, batchOf(t, "0.png"))
		requireKind(t, err, NoMetadataFiles)
	})

	t.Run("gap", func(t *testing.T) {
		_, err := resolve(t, batchOf(t, "0.json", "1.json", "3.json", "0.png", "1.png", "3.png"))
		ae := requireKind(t, err, MissingIndex)
		assert.Equal(t, "2", ae.Index)
		assert.Equal(t, "missing metadata file '2.json'", err.Error())
	})

	t.Run("two images", func(t *testing.T) {
		b, err := resolve(t, batchOf(t, "0.json", "0.png", "0.jpg"))
		ae := requireKind(t, err, MissingImage)
		assert.Equal(t, "0", ae.Index)
		assert.Nil(t, b)
	})

	t.Run("no image", func(t *testing.T) {
		_, err := resolve(t, batchOf(t, "0.json"))
		requireKind(t, err, MissingImage)
		assert.Equal(t, "couldn't find an image filename at index 0", err.Error())
	})

	t.Run("no collection image", func(t *testing.T) {
		_, err := resolve(t, batchOf(t, "collection.json", "0.json", "0.png"))
		requireKind(t, err, MissingImage)
		assert.Equal(t, "couldn't find the collection image filename", err.Error())
	})

	t.Run("two animations", func(t *testing.T) {
		_, err := resolve(t, batchOf(t, "0.json", "0.png", "0.mp4", "0.webm"))
		ae := requireKind(t, err, AmbiguousAnimation)
		assert.Equal(t, "0", ae.Index)
	})

	t.Run("malformed animation name", func(t *testing.T) {
		_, err := resolve(t, batchOf(t, "0.json", "0.png", "intro.mp4"))
		ae := requireKind(t, err, MalformedIndex)
		assert.Equal(t, "intro.mp4", ae.File)
	})

	t.Run("invalid json", func(t *testing.T) {
		b, err := resolve(t, batchOf(t, `0.json={"name":`, "0.png"))
		ae := requireKind(t, err, InvalidMetadataJSON)
		assert.Equal(t, "0.json", ae.File)
		assert.Nil(t, b)
	})

	t.Run("index beyond int32 is a gap", func(t *testing.T) {
		_, err := resolve(t, batchOf(t, "0.json", "0.png", "3000000000.json", "3000000000.png"))
		ae := requireKind(t, err, MissingIndex)
		assert.Equal(t, "1", ae.Index)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := resolve(t, batchOf(t, `0.json={"symbol":"X"}`, "0.png"))
		requireKind(t, err, InvalidMetadataJSON)
	})
}

func TestResolve_LooselyTypedMetadata(t *testing.T) {
	docs := []string{
		`{"name":"Item #0","seller_fee_basis_points":"500"}`,
		`{"name":"Item #0","seller_fee_basis_points":500.0}`,
		`{"name":"Item #0","attributes":{}}`,
		`{"name":"Item #0","properties":{"creators":[{"address":"abc","share":"100"}]}}`,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			b, err := resolve(t, batchOf(t, "0.json="+doc, "0.png"))
			require.NoError(t, err)
			require.Len(t, b.Pairs, 1)
			assert.Equal(t, "Item #0", b.Pairs[0].Pair.Name)
		})
	}
}

func TestResolve_FirstErrorInEnumerationOrder(t *testing.T) {
	t.Run("parse error before later lookup error", func(t *testing.T) {
		_, err := resolve(t, batchOf(t, "0.json=nope", "1.json", "0.png"))
		requireKind(t, err, InvalidMetadataJSON)
	})

	t.Run("lookup error before later parse error", func(t *testing.T) {
		_, err := resolve(t, batchOf(t, "0.json", "1.json=nope", "1.png"))
		requireKind(t, err, MissingImage)
	})

	t.Run("earliest of many parse errors", func(t *testing.T) {
		specs := []string{}
		for i := 0; i < 20; i++ {
			specs = append(specs, fmt.Sprintf("%d.png", i))
			if i >= 7 {
				specs = append(specs, fmt.Sprintf("%d.json=bad", i))
			} else {
				specs = append(specs, fmt.Sprintf("%d.json", i))
			}
		}
		_, err := resolve(t, batchOf(t, specs...))
		ae := requireKind(t, err, InvalidMetadataJSON)
		assert.Equal(t, "7.json", ae.File)
	})
}

func TestResolve_CaseInsensitiveExtensions(t *testing.T) {
	b, err := resolve(t, batchOf(t, "0.JSON", "0.PNG", "0.Mp4"))
	require.NoError(t, err)
	assert.Equal(t, "assets/0.PNG", b.Pairs[0].Pair.Image)
	assert.Equal(t, "assets/0.Mp4", b.Pairs[0].Pair.Animation)
}

func TestResolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewResolver("").Resolve(ctx, batchOf(t, "0.json", "0.png"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveSource_Empty(t *testing.T) {
	_, err := NewResolver("").ResolveSource(context.Background(), source.Static(nil))
	requireKind(t, err, NoSelection)
}

func TestResolve_LargeBatch(t *testing.T) {
	var specs []string
	for i := 999; i >= 0; i-- {
		specs = append(specs, fmt.Sprintf("%d.json", i), fmt.Sprintf("%d.gif", i))
	}
	b, err := resolve(t, batchOf(t, specs...))
	require.NoError(t, err)
	require.Equal(t, 1000, b.Len())
	for _, p := range b.Pairs {
		assert.Equal(t, fmt.Sprintf("Item %d", p.Index), p.Pair.Name)
	}
}

func TestBatch_File(t *testing.T) {
	b, err := resolve(t, batchOf(t, "0.json", "0.png=img"))
	require.NoError(t, err)

	f, ok := b.File("0.png")
	require.True(t, ok)
	assert.Equal(t, "img", f.Text())

	_, ok = b.File("1.png")
	assert.False(t, ok)
}

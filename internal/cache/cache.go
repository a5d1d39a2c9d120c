// Package cache builds and maintains the cache document consumed by the
// registration step. Items are keyed by logical index and carry the path
// digests computed during resolution, so re-running an unchanged layout
// reuses earlier uploads.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/RoaringBitmap/roaring"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/assetpairs/api"
	"github.com/agentic-research/assetpairs/internal/assets"
)

// FromBatch builds a fresh cache with one item per resolved pair.
func FromBatch(b *assets.Batch) *api.Cache {
	c := api.NewCache()
	for _, p := range b.Pairs {
		c.Items[p.Index.Key()] = p.Pair.IntoCacheItem()
	}
	return c
}

// Load reads a cache document. A missing file yields an empty cache.
func Load(fs billy.Filesystem, path string) (*api.Cache, error) {
	data, err := util.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return api.NewCache(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}
	c := api.NewCache()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse cache %s: %w", path, err)
	}
	if c.Items == nil {
		c.Items = make(map[string]api.CacheItem)
	}
	for key := range c.Items {
		if _, err := strconv.Atoi(key); err != nil {
			return nil, fmt.Errorf("parse cache %s: invalid item key %q", path, key)
		}
	}
	return c, nil
}

// Save writes c as indented JSON.
func Save(fs billy.Filesystem, path string, c *api.Cache) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	data = append(data, '\n')
	if err := util.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", path, err)
	}
	return nil
}

// Plan summarizes what a merge decided per item index.
// The collection entry cannot live in a uint32 bitmap and is tracked apart.
type Plan struct {
	Reused  *roaring.Bitmap
	Upload  *roaring.Bitmap
	OnChain *roaring.Bitmap
	Dropped []string

	CollectionReused  bool
	CollectionUpload  bool
	CollectionOnChain bool
}

func newPlan() *Plan {
	return &Plan{
		Reused:  roaring.New(),
		Upload:  roaring.New(),
		OnChain: roaring.New(),
	}
}

// NeedsUpload lists item indices needing upload, ascending, collection first.
func (p *Plan) NeedsUpload() []api.LogicalIndex {
	var out []api.LogicalIndex
	if p.CollectionUpload {
		out = append(out, api.CollectionIndex)
	}
	it := p.Upload.Iterator()
	for it.HasNext() {
		out = append(out, api.LogicalIndex(it.Next()))
	}
	return out
}

// Summary is a one-line description for logs and CLI output.
func (p *Plan) Summary() string {
	reused := p.Reused.GetCardinality()
	upload := p.Upload.GetCardinality()
	if p.CollectionReused {
		reused++
	}
	if p.CollectionUpload {
		upload++
	}
	onChain := p.OnChain.GetCardinality()
	if p.CollectionOnChain {
		onChain++
	}
	return fmt.Sprintf("%d reused, %d to upload, %d on chain, %d dropped",
		reused, upload, onChain, len(p.Dropped))
}

// Merge reconciles a previously saved cache with a freshly resolved one.
// Items whose digests are unchanged keep their links and on-chain state;
// everything else is replaced and scheduled for upload. Items missing from
// fresh are dropped. The program section is carried over from existing.
func Merge(existing, fresh *api.Cache) (*api.Cache, *Plan) {
	out := api.NewCache()
	plan := newPlan()
	if existing != nil {
		out.Program = existing.Program
	}

	for key, item := range fresh.Items {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		prev, ok := lookup(existing, key)
		reuse := ok && prev.SameContent(item)
		if reuse {
			out.Items[key] = prev
		} else {
			out.Items[key] = item
		}

		if api.LogicalIndex(idx).IsCollection() {
			plan.CollectionReused = reuse
			plan.CollectionUpload = !reuse
			plan.CollectionOnChain = reuse && prev.OnChain
			continue
		}
		if idx < 0 {
			continue
		}
		if reuse {
			plan.Reused.Add(uint32(idx))
			if prev.OnChain {
				plan.OnChain.Add(uint32(idx))
			}
		} else {
			plan.Upload.Add(uint32(idx))
		}
	}

	if existing != nil {
		for key := range existing.Items {
			if _, ok := fresh.Items[key]; !ok {
				plan.Dropped = append(plan.Dropped, key)
			}
		}
		sort.Strings(plan.Dropped)
	}
	return out, plan
}

func lookup(c *api.Cache, key string) (api.CacheItem, bool) {
	if c == nil {
		return api.CacheItem{}, false
	}
	item, ok := c.Items[key]
	return item, ok
}

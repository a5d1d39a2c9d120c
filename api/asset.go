package api

import "strconv"

// CollectionName is the reserved basename of the collection-level asset.
const CollectionName = "collection"

// LogicalIndex is the zero-based position of a collection item.
// CollectionIndex marks the collection-level entry instead of an item.
type LogicalIndex int

// CollectionIndex is the sentinel index for the collection entry.
const CollectionIndex LogicalIndex = -1

// IsCollection reports whether i is the collection sentinel.
func (i LogicalIndex) IsCollection() bool { return i == CollectionIndex }

// Key returns the cache key for the index ("-1" for the collection).
func (i LogicalIndex) Key() string { return strconv.Itoa(int(i)) }

// AssetPair is a validated metadata + image (+ optional animation) triple.
// Paths are logical paths under the assets base directory; hashes are digests
// of those path strings. Name comes from the metadata document. Animation and
// AnimationHash are empty when the item has no animation file.
type AssetPair struct {
	Name          string `json:"name"`
	Metadata      string `json:"metadata"`
	MetadataHash  string `json:"metadata_hash"`
	Image         string `json:"image"`
	ImageHash     string `json:"image_hash"`
	Animation     string `json:"animation,omitempty"`
	AnimationHash string `json:"animation_hash,omitempty"`
}

// HasAnimation reports whether an animation file was paired.
func (p AssetPair) HasAnimation() bool { return p.Animation != "" }

// IntoCacheItem converts the pair into a fresh, not-yet-on-chain cache item.
// Link fields hold the logical paths until an upload replaces them.
func (p AssetPair) IntoCacheItem() CacheItem {
	return CacheItem{
		Name:          p.Name,
		ImageHash:     p.ImageHash,
		ImageLink:     p.Image,
		MetadataHash:  p.MetadataHash,
		MetadataLink:  p.Metadata,
		OnChain:       false,
		AnimationHash: p.AnimationHash,
		AnimationLink: p.Animation,
	}
}

// IndexedPair is one resolved entry of a batch.
type IndexedPair struct {
	Index LogicalIndex `json:"index"`
	Pair  AssetPair    `json:"pair"`
}

// CacheItem is one entry of the candy-machine cache document.
type CacheItem struct {
	Name          string `json:"name"`
	ImageHash     string `json:"image_hash"`
	ImageLink     string `json:"image_link"`
	MetadataHash  string `json:"metadata_hash"`
	MetadataLink  string `json:"metadata_link"`
	OnChain       bool   `json:"onChain"`
	AnimationHash string `json:"animation_hash,omitempty"`
	AnimationLink string `json:"animation_link,omitempty"`
}

// SameContent reports whether two items address the same assets.
func (c CacheItem) SameContent(o CacheItem) bool {
	return c.ImageHash == o.ImageHash &&
		c.MetadataHash == o.MetadataHash &&
		c.AnimationHash == o.AnimationHash
}

// CacheProgram holds the on-chain accounts recorded after registration.
type CacheProgram struct {
	CandyMachine        string `json:"candyMachine"`
	CandyGuard          string `json:"candyGuard"`
	CandyMachineCreator string `json:"candyMachineCreator"`
	CollectionMint      string `json:"collectionMint"`
}

// Cache is the document handed to the registration step.
// Items are keyed by LogicalIndex.Key().
type Cache struct {
	Program CacheProgram         `json:"program"`
	Items   map[string]CacheItem `json:"items"`
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{Items: make(map[string]CacheItem)}
}

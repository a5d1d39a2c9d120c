package stage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/assetpairs/api"
)

// StagedPair is a pair row read back from a staging database.
type StagedPair struct {
	Index         api.LogicalIndex
	Name          string
	MetadataHash  string
	ImageHash     string
	AnimationHash string
	BatchID       string
}

// StreamItems calls fn for every staged item in (index, kind) order.
// Only one item's content is held in memory at a time.
func StreamItems(dbPath string, fn func(Item) error) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query("SELECT hash, kind, path, name, idx, content FROM items ORDER BY idx, kind")
	if err != nil {
		return fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	for rows.Next() {
		var it Item
		var kind string
		var idx int
		if err := rows.Scan(&it.Hash, &kind, &it.Path, &it.Name, &idx, &it.Content); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		it.Kind = Kind(kind)
		it.Index = api.LogicalIndex(idx)
		if err := fn(it); err != nil {
			return err
		}
	}
	return rows.Err()
}

// LoadPairs returns all staged pairs ordered by index.
func LoadPairs(dbPath string) ([]StagedPair, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	rows, err := db.Query("SELECT idx, name, metadata_hash, image_hash, animation_hash, batch_id FROM pairs ORDER BY idx")
	if err != nil {
		return nil, fmt.Errorf("query pairs: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var pairs []StagedPair
	for rows.Next() {
		var p StagedPair
		var idx int
		var anim sql.NullString
		if err := rows.Scan(&idx, &p.Name, &p.MetadataHash, &p.ImageHash, &anim, &p.BatchID); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		p.Index = api.LogicalIndex(idx)
		p.AnimationHash = anim.String
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return pairs, nil
}

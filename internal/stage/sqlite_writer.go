// Package stage persists a resolved batch as an upload payload: every file a
// pair references is stored once, keyed by its path digest, next to the pair
// rows that tie them together.
package stage

import (
	"database/sql"
	"fmt"
	"path"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/assetpairs/api"
	"github.com/agentic-research/assetpairs/internal/assets"
)

// Kind is the role of a staged item.
type Kind string

const (
	KindMetadata  Kind = "metadata"
	KindImage     Kind = "image"
	KindAnimation Kind = "animation"
)

// Item is one staged file.
type Item struct {
	Hash    string
	Kind    Kind
	Path    string
	Name    string
	Index   api.LogicalIndex
	Content []byte
}

// Writer stages items and pairs into a SQLite database, committing in batches.
type Writer struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtItem  *sql.Stmt
	stmtPair  *sql.Stmt
	batchID   string
	batchSize int
	count     int
	mu        sync.Mutex
}

// NewWriter opens (or creates) dbPath and initializes the schema.
func NewWriter(dbPath string) (*Writer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS items (
		hash TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		path TEXT NOT NULL,
		name TEXT NOT NULL,
		idx INTEGER NOT NULL,
		size INTEGER NOT NULL,
		batch_id TEXT NOT NULL,
		content BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_items_idx ON items(idx, kind);

	CREATE TABLE IF NOT EXISTS pairs (
		idx INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		metadata_hash TEXT NOT NULL,
		image_hash TEXT NOT NULL,
		animation_hash TEXT,
		batch_id TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &Writer{
		db:        db,
		batchID:   uuid.NewString(),
		batchSize: 500,
	}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

// BatchID identifies the rows written by this writer.
func (w *Writer) BatchID() string { return w.batchID }

func (w *Writer) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmtItem, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO items (hash, kind, path, name, idx, size, batch_id, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	w.stmtPair, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO pairs (idx, name, metadata_hash, image_hash, animation_hash, batch_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	return err
}

func (w *Writer) commitTx() error {
	if w.stmtItem != nil {
		_ = w.stmtItem.Close()
	}
	if w.stmtPair != nil {
		_ = w.stmtPair.Close()
	}
	return w.tx.Commit()
}

// rotate commits once batchSize rows are pending. Callers hold mu.
func (w *Writer) rotate() error {
	w.count++
	if w.count < w.batchSize {
		return nil
	}
	if err := w.commitTx(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	w.count = 0
	return w.beginTx()
}

// AddItem stages one file.
func (w *Writer) AddItem(it Item) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.stmtItem.Exec(it.Hash, string(it.Kind), it.Path, it.Name, int(it.Index),
		len(it.Content), w.batchID, it.Content); err != nil {
		return fmt.Errorf("insert item %s: %w", it.Path, err)
	}
	return w.rotate()
}

// AddPair stages the row linking a pair's items.
func (w *Writer) AddPair(p api.IndexedPair) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var anim *string
	if p.Pair.HasAnimation() {
		h := p.Pair.AnimationHash
		anim = &h
	}
	if _, err := w.stmtPair.Exec(int(p.Index), p.Pair.Name, p.Pair.MetadataHash, p.Pair.ImageHash,
		anim, w.batchID); err != nil {
		return fmt.Errorf("insert pair %d: %w", p.Index, err)
	}
	return w.rotate()
}

type itemRef struct {
	kind Kind
	path string
	hash string
}

// StageBatch writes every pair of b together with the bytes of the files it
// references. It returns the number of items staged.
func (w *Writer) StageBatch(b *assets.Batch) (int, error) {
	n := 0
	for _, p := range b.Pairs {
		if err := w.AddPair(p); err != nil {
			return n, err
		}
		refs := []itemRef{
			{KindMetadata, p.Pair.Metadata, p.Pair.MetadataHash},
			{KindImage, p.Pair.Image, p.Pair.ImageHash},
		}
		if p.Pair.HasAnimation() {
			refs = append(refs, itemRef{KindAnimation, p.Pair.Animation, p.Pair.AnimationHash})
		}
		for _, ref := range refs {
			name := path.Base(ref.path)
			f, ok := b.File(name)
			if !ok {
				return n, fmt.Errorf("stage %s: file not in batch", name)
			}
			if err := w.AddItem(Item{
				Hash:    ref.hash,
				Kind:    ref.kind,
				Path:    ref.path,
				Name:    name,
				Index:   p.Index,
				Content: f.Content,
			}); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// Close commits pending rows and closes the database.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}
	return w.db.Close()
}

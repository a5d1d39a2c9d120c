package assets

import (
	"fmt"
	"path"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/assetpairs/api"
)

// QueryRow holds the JSONPath results for one metadata document.
type QueryRow struct {
	Index  api.LogicalIndex
	File   string
	Values []any
}

// Query evaluates a JSONPath selector against every metadata document in the
// batch and returns one row per pair in logical index order.
func Query(b *Batch, selector string) ([]QueryRow, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}

	pairs := b.Sorted()
	rows := make([]QueryRow, 0, len(pairs))
	for _, p := range pairs {
		name := path.Base(p.Pair.Metadata)
		f, ok := b.File(name)
		if !ok {
			return nil, fmt.Errorf("metadata file %s not in batch", name)
		}
		doc, err := oj.ParseString(f.Text())
		if err != nil {
			return nil, errInvalidMetadata(name, err)
		}
		rows = append(rows, QueryRow{Index: p.Index, File: name, Values: x.Get(doc)})
	}
	return rows, nil
}

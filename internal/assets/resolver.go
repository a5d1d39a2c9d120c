// Package assets turns a raw batch of user files into validated asset pairs:
// metadata documents matched with exactly one image and at most one animation,
// indexed 0..n-1 (plus the optional collection entry) and addressed by the
// digest of their logical paths.
package assets

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/agentic-research/assetpairs/api"
	"github.com/agentic-research/assetpairs/internal/logging"
	"github.com/agentic-research/assetpairs/internal/source"
)

// DefaultBasePath is the logical directory assets are addressed under.
const DefaultBasePath = "candy-machine/assets"

// Batch is a fully validated resolution. Pairs keep metadata enumeration order.
// Files is the untouched input so uploaders can read bytes by name.
type Batch struct {
	Pairs []api.IndexedPair
	Files []source.RawFile
}

// Len returns the number of resolved pairs, collection included.
func (b *Batch) Len() int { return len(b.Pairs) }

// Sorted returns the pairs ordered by logical index (collection first).
func (b *Batch) Sorted() []api.IndexedPair {
	out := make([]api.IndexedPair, len(b.Pairs))
	copy(out, b.Pairs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// File returns the first input file called name.
func (b *Batch) File(name string) (source.RawFile, bool) {
	for _, f := range b.Files {
		if f.Name == name {
			return f, true
		}
	}
	return source.RawFile{}, false
}

// Resolver drives pair resolution. BasePath prefixes every logical path
// before digesting; Workers bounds concurrent metadata parsing (zero means
// GOMAXPROCS).
type Resolver struct {
	BasePath string
	Workers  int
	Log      logging.Logger
}

func NewResolver(basePath string) *Resolver {
	return &Resolver{BasePath: basePath, Log: logging.Nop{}}
}

// ResolveSource selects files from src and resolves them.
func (r *Resolver) ResolveSource(ctx context.Context, src source.Source) (*Batch, error) {
	files, err := src.Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("select files: %w", err)
	}
	return r.Resolve(ctx, files)
}

// located is a pair whose files have been found but whose metadata is unread.
type located struct {
	index    api.LogicalIndex
	metaName string
	pair     api.AssetPair
}

// Resolve validates files and assembles one pair per metadata document.
// It fails on the first problem and never returns partial output.
func (r *Resolver) Resolve(ctx context.Context, files []source.RawFile) (*Batch, error) {
	if len(files) == 0 {
		return nil, errNoSelection()
	}
	names := source.Names(files)

	classified, err := Classify(names)
	if err != nil {
		return nil, err
	}
	if err := EnsureSequential(classified.Metadata); err != nil {
		return nil, err
	}

	// Lookups are cheap and ordered; stop at the first failure. Metadata is
	// only parsed for the pairs before it, so the error reported is the one a
	// one-at-a-time walk would have hit first.
	var lookupErr error
	pending := make([]located, 0, len(classified.Metadata))
	for _, metaName := range classified.Metadata {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l, err := r.locate(metaName, names)
		if err != nil {
			lookupErr = err
			break
		}
		pending = append(pending, l)
	}

	if err := r.parseAll(ctx, files, pending); err != nil {
		return nil, err
	}
	if lookupErr != nil {
		return nil, lookupErr
	}

	batch := &Batch{Pairs: make([]api.IndexedPair, len(pending)), Files: files}
	for i, l := range pending {
		batch.Pairs[i] = api.IndexedPair{Index: l.index, Pair: l.pair}
		r.logger().Debug("resolved pair",
			"index", int(l.index),
			"name", l.pair.Name,
			"image", l.pair.Image,
			"animation", l.pair.Animation)
	}
	r.logger().Info("resolved batch", "pairs", len(batch.Pairs), "files", len(files))
	return batch, nil
}

func (r *Resolver) locate(metaName string, names []string) (located, error) {
	stem, _ := splitExt(metaName)

	var index api.LogicalIndex
	if stem == api.CollectionName {
		index = api.CollectionIndex
	} else if n, ok := parseIndex(stem); ok {
		index = api.LogicalIndex(n)
	} else {
		return located{}, errMalformed(metaName)
	}

	images := matching(pairPattern(stem, imageExts), names)
	if len(images) != 1 {
		return located{}, errMissingImage(stem)
	}
	animations := matching(pairPattern(stem, animationExts), names)
	if len(animations) > 1 {
		return located{}, errAmbiguousAnimation(stem)
	}

	base := r.basePath()
	metaPath := JoinPath(base, metaName)
	imagePath := JoinPath(base, images[0])
	pair := api.AssetPair{
		Metadata:     metaPath,
		MetadataHash: Digest(metaPath),
		Image:        imagePath,
		ImageHash:    Digest(imagePath),
	}
	if len(animations) == 1 {
		pair.Animation = JoinPath(base, animations[0])
		pair.AnimationHash = Digest(pair.Animation)
	}
	return located{index: index, metaName: metaName, pair: pair}, nil
}

// parseAll reads every pending metadata document on a bounded pool. Each
// worker owns one slot; the earliest failing slot is reported.
func (r *Resolver) parseAll(ctx context.Context, files []source.RawFile, pending []located) error {
	byName := make(map[string]int, len(files))
	for i := len(files) - 1; i >= 0; i-- {
		byName[files[i].Name] = i
	}

	errs := make([]error, len(pending))
	var g errgroup.Group
	g.SetLimit(r.workers())
	for i := range pending {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			l := &pending[i]
			md, err := ParseMetadata(files[byName[l.metaName]].Content)
			if err != nil {
				errs[i] = errInvalidMetadata(l.metaName, err)
				return nil
			}
			l.pair.Name = md.Name
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func pairPattern(stem, exts string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(stem) + `\.(` + exts + `)$`)
}

func matching(re *regexp.Regexp, names []string) []string {
	var out []string
	for _, n := range names {
		if re.MatchString(n) {
			out = append(out, n)
		}
	}
	return out
}

func (r *Resolver) basePath() string {
	if r.BasePath == "" {
		return DefaultBasePath
	}
	return r.BasePath
}

func (r *Resolver) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (r *Resolver) logger() logging.Logger {
	if r.Log == nil {
		return logging.Nop{}
	}
	return r.Log
}

// Package source supplies the raw file batch that the asset resolver works on.
// A Source is selected once per invocation; the resolver only reads names and
// content from what it returns.
package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// RawFile is one user-supplied file. Callers own it; readers must not mutate Content.
type RawFile struct {
	Name    string
	Content []byte
}

// Text returns the file content as a string.
func (f RawFile) Text() string { return string(f.Content) }

// Size returns the content length in bytes.
func (f RawFile) Size() int64 { return int64(len(f.Content)) }

// Source hands over the batch of files chosen by the user.
// An empty, nil-error result means nothing was selected.
type Source interface {
	Select(ctx context.Context) ([]RawFile, error)
}

// Static is a Source backed by an in-memory slice.
type Static []RawFile

// Select implements Source.
func (s Static) Select(ctx context.Context) ([]RawFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []RawFile(s), nil
}

// FSSource reads every regular file of one directory on a billy filesystem.
// Subdirectories and dotfiles are skipped.
type FSSource struct {
	FS  billy.Filesystem
	Dir string
}

// NewFSSource creates a source over dir on fs.
func NewFSSource(fs billy.Filesystem, dir string) *FSSource {
	return &FSSource{FS: fs, Dir: dir}
}

// Select implements Source. Files are returned in name order.
func (s *FSSource) Select(ctx context.Context) ([]RawFile, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	infos, err := s.FS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	files := make([]RawFile, 0, len(infos))
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if info.IsDir() || !info.Mode().IsRegular() || strings.HasPrefix(info.Name(), ".") {
			continue
		}
		p := s.FS.Join(dir, info.Name())
		content, err := util.ReadFile(s.FS, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, RawFile{Name: info.Name(), Content: content})
	}
	return files, nil
}

// Names returns the file names of files in order.
func Names(files []RawFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

var (
	_ Source = Static(nil)
	_ Source = (*FSSource)(nil)
)

package questionset

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// Loader turns an allow-listed source id into a Set.
type Loader interface {
	Load(ctx context.Context, sourceID string) (Set, error)
}

// FileLoader reads sources straight from disk.
type FileLoader struct {
	Catalog *Catalog
}

func NewFileLoader(c *Catalog) *FileLoader { return &FileLoader{Catalog: c} }

func (l *FileLoader) Load(ctx context.Context, sourceID string) (Set, error) {
	if err := ctx.Err(); err != nil {
		return Set{}, err
	}
	src, ok := l.Catalog.Lookup(sourceID)
	if !ok {
		return Set{}, loadErr(sourceID, "not an approved source", ErrUnknownSource)
	}
	f, err := os.Open(src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Set{}, loadErr(sourceID, "file not found", err)
		}
		return Set{}, loadErr(sourceID, "cannot open file", err)
	}
	defer f.Close()
	return Parse(sourceID, f)
}

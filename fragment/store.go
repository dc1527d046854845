package fragment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/gridgo/codec"
	"github.com/hupe1980/gridgo/vfs"
)

// Store persists fragment metadata on a VFS. Attribute blobs are written by
// the engine directly; the store only handles the metadata document that
// commits them.
type Store struct {
	fs     vfs.VFS
	codec  codec.Codec
	logger *slog.Logger
}

// NewStore creates a store. A nil codec falls back to codec.Default and a
// nil logger discards.
func NewStore(fs vfs.VFS, c codec.Codec, logger *slog.Logger) *Store {
	if c == nil {
		c = codec.Default
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Store{fs: fs, codec: c, logger: logger}
}

// MetaPath returns the metadata blob path of a fragment within an array.
func MetaPath(arrayURI, fragURI string) string {
	return path.Join(arrayURI, fragURI, MetaFileName)
}

// BlobPath returns the path of a named blob within a fragment directory.
func BlobPath(arrayURI, fragURI, name string) string {
	return path.Join(arrayURI, fragURI, name)
}

// Save writes a fragment's metadata document. This is the commit point: once
// Save returns, the fragment is visible to readers.
func (s *Store) Save(ctx context.Context, arrayURI string, meta *Meta) error {
	data, err := s.codec.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal fragment meta: %w", err)
	}

	if err := s.fs.Put(ctx, MetaPath(arrayURI, meta.URI), data); err != nil {
		return fmt.Errorf("put fragment meta: %w", err)
	}

	s.logger.Debug("fragment committed", slog.String("array", arrayURI),
		slog.String("fragment", meta.URI), slog.Uint64("cells", meta.CellNum))

	return nil
}

// Load reads one fragment's metadata document.
func (s *Store) Load(ctx context.Context, arrayURI, fragURI string) (*Meta, error) {
	blob, err := s.fs.Open(ctx, MetaPath(arrayURI, fragURI))
	if err != nil {
		return nil, fmt.Errorf("open fragment meta: %w", err)
	}
	defer blob.Close()

	data, err := vfs.ReadAll(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("read fragment meta: %w", err)
	}

	meta := new(Meta)
	if err := s.codec.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("unmarshal fragment meta: %w", err)
	}

	return meta, nil
}

// List loads the metadata of every committed fragment of an array, ordered
// oldest first. Fragments whose metadata blob is absent are in-flight or
// aborted writes and are skipped.
func (s *Store) List(ctx context.Context, arrayURI string) ([]*Meta, error) {
	names, err := s.fs.List(ctx, arrayURI+"/")
	if err != nil {
		return nil, fmt.Errorf("list array: %w", err)
	}

	var metas []*Meta
	for _, name := range names {
		if !strings.HasSuffix(name, "/"+MetaFileName) {
			continue
		}

		fragURI := path.Base(path.Dir(name))
		meta, err := s.Load(ctx, arrayURI, fragURI)
		if err != nil {
			return nil, err
		}

		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		if metas[i].Timestamp != metas[j].Timestamp {
			return metas[i].Timestamp < metas[j].Timestamp
		}
		return metas[i].URI < metas[j].URI
	})

	return metas, nil
}

// Delete removes a fragment completely. The metadata blob goes first so a
// crash mid-delete never leaves a committed fragment with missing blobs.
func (s *Store) Delete(ctx context.Context, arrayURI, fragURI string) error {
	if err := s.fs.Delete(ctx, MetaPath(arrayURI, fragURI)); err != nil {
		return fmt.Errorf("delete fragment meta: %w", err)
	}

	names, err := s.fs.List(ctx, path.Join(arrayURI, fragURI)+"/")
	if err != nil {
		return fmt.Errorf("list fragment: %w", err)
	}

	for _, name := range names {
		if err := s.fs.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete fragment blob %s: %w", name, err)
		}
	}

	return nil
}

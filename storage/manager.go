// Package storage ties the persistence concerns together: a Manager bundles
// the VFS an array lives on, the codec for control documents, the fragment
// store, and the resource controller that bounds engine IO.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/hupe1980/gridgo/codec"
	"github.com/hupe1980/gridgo/fragment"
	"github.com/hupe1980/gridgo/resource"
	"github.com/hupe1980/gridgo/schema"
	"github.com/hupe1980/gridgo/vfs"
)

// SchemaFileName is the name of the schema document inside an array
// directory. Its presence is what makes a URI an array.
const SchemaFileName = "__array_schema.json"

// ErrArrayExists is returned by CreateArray for a URI that already holds an
// array.
var ErrArrayExists = errors.New("array already exists")

// ErrArrayNotFound is returned when a URI holds no array schema.
var ErrArrayNotFound = errors.New("array not found")

// Option configures a Manager.
type Option func(*Manager)

// WithCodec sets the codec for schema and fragment metadata documents.
func WithCodec(c codec.Codec) Option {
	return func(m *Manager) {
		if c != nil {
			m.codec = c
		}
	}
}

// WithLogger sets the structured logger. The default discards all output.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithResourceController bounds engine memory and IO. The default controller
// is unlimited except for a small concurrent-IO cap.
func WithResourceController(rc *resource.Controller) Option {
	return func(m *Manager) {
		if rc != nil {
			m.res = rc
		}
	}
}

// Manager coordinates all storage access for arrays on one VFS. It is safe
// for concurrent use.
type Manager struct {
	fs     vfs.VFS
	codec  codec.Codec
	logger *slog.Logger
	res    *resource.Controller
	frags  *fragment.Store
}

// NewManager creates a manager on the given VFS.
func NewManager(fs vfs.VFS, opts ...Option) *Manager {
	m := &Manager{
		fs:     fs,
		codec:  codec.Default,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.res == nil {
		m.res = resource.NewController(resource.Config{})
	}

	m.frags = fragment.NewStore(fs, m.codec, m.logger)

	return m
}

// FS returns the underlying VFS.
func (m *Manager) FS() vfs.VFS { return m.fs }

// Codec returns the control-document codec.
func (m *Manager) Codec() codec.Codec { return m.codec }

// Logger returns the manager's logger.
func (m *Manager) Logger() *slog.Logger { return m.logger }

// Resources returns the resource controller engines throttle through.
func (m *Manager) Resources() *resource.Controller { return m.res }

// Fragments returns the fragment store.
func (m *Manager) Fragments() *fragment.Store { return m.frags }

// CreateArray writes the schema document for a new array. The URI must not
// already hold one.
func (m *Manager) CreateArray(ctx context.Context, uri string, sch *schema.ArraySchema) error {
	if ok, err := m.ArrayExists(ctx, uri); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %s", ErrArrayExists, uri)
	}

	data, err := m.codec.Marshal(sch)
	if err != nil {
		return fmt.Errorf("marshal array schema: %w", err)
	}

	if err := m.fs.Put(ctx, path.Join(uri, SchemaFileName), data); err != nil {
		return fmt.Errorf("put array schema: %w", err)
	}

	m.logger.Info("array created", slog.String("uri", uri),
		slog.Int("attrs", len(sch.Attributes())))

	return nil
}

// LoadSchema reads an array's schema document.
func (m *Manager) LoadSchema(ctx context.Context, uri string) (*schema.ArraySchema, error) {
	blob, err := m.fs.Open(ctx, path.Join(uri, SchemaFileName))
	if err != nil {
		if errors.Is(err, vfs.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrArrayNotFound, uri)
		}
		return nil, fmt.Errorf("open array schema: %w", err)
	}
	defer blob.Close()

	data, err := vfs.ReadAll(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("read array schema: %w", err)
	}

	sch := new(schema.ArraySchema)
	if err := m.codec.Unmarshal(data, sch); err != nil {
		return nil, fmt.Errorf("unmarshal array schema: %w", err)
	}

	return sch, nil
}

// ArrayExists reports whether the URI holds an array schema.
func (m *Manager) ArrayExists(ctx context.Context, uri string) (bool, error) {
	blob, err := m.fs.Open(ctx, path.Join(uri, SchemaFileName))
	if err != nil {
		if errors.Is(err, vfs.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, blob.Close()
}

// DeleteArray removes an array and all its fragments. The schema document
// goes first so a crash mid-delete never leaves a readable array with
// missing fragments.
func (m *Manager) DeleteArray(ctx context.Context, uri string) error {
	if err := m.fs.Delete(ctx, path.Join(uri, SchemaFileName)); err != nil {
		return fmt.Errorf("delete array schema: %w", err)
	}

	names, err := m.fs.List(ctx, uri+"/")
	if err != nil {
		return fmt.Errorf("list array: %w", err)
	}

	for _, name := range names {
		if err := m.fs.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete array blob %s: %w", name, err)
		}
	}

	m.logger.Info("array deleted", slog.String("uri", uri))

	return nil
}

// OpenBlob opens a fragment blob for reading under the IO throttle.
func (m *Manager) OpenBlob(ctx context.Context, arrayURI, fragURI, name string) (vfs.Blob, error) {
	return m.fs.Open(ctx, fragment.BlobPath(arrayURI, fragURI, name))
}

// CreateBlob opens a fragment blob for streaming writes.
func (m *Manager) CreateBlob(ctx context.Context, arrayURI, fragURI, name string) (vfs.WritableBlob, error) {
	return m.fs.Create(ctx, fragment.BlobPath(arrayURI, fragURI, name))
}

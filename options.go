package gridgo

import (
	"github.com/hupe1980/gridgo/codec"
	"github.com/hupe1980/gridgo/resource"
	"github.com/hupe1980/gridgo/storage"
	"github.com/hupe1980/gridgo/vfs"
)

// Options configure how an array handle accesses storage.
type Options struct {
	// VFS is the storage the array lives on. Defaults to an in-memory
	// filesystem; use vfs.NewLocalFS for persistence or the minio/s3
	// subpackages for object stores.
	VFS vfs.VFS

	// Codec encodes schema and fragment metadata documents.
	Codec codec.Codec

	// Logger receives structured logs. Defaults to a no-op logger.
	Logger *Logger

	// Resources bounds engine memory and IO. Nil means a default
	// controller with a small concurrent-IO cap and no other limits.
	Resources *resource.Controller
}

func defaultOptions() *Options {
	return &Options{
		VFS:    vfs.NewMemFS(),
		Codec:  codec.Default,
		Logger: NoopLogger(),
	}
}

func (o *Options) manager() *storage.Manager {
	return storage.NewManager(o.VFS,
		storage.WithCodec(o.Codec),
		storage.WithLogger(o.Logger.Logger),
		storage.WithResourceController(o.Resources),
	)
}

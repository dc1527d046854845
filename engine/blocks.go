package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/gridgo/internal/tile"
	"github.com/hupe1980/gridgo/schema"
	"github.com/hupe1980/gridgo/vfs"
)

// writeBlocks compresses raw into tile blocks and streams them to a fragment
// blob. It returns the on-disk size. IO runs under the resource controller's
// concurrency cap and byte-rate throttle.
func (b *base) writeBlocks(ctx context.Context, fragURI, name string, raw []byte, c schema.Compressor) (uint64, error) {
	wb, err := b.sm.CreateBlob(ctx, b.arrayURI, fragURI, name)
	if err != nil {
		return 0, fmt.Errorf("create blob %s: %w", name, err)
	}

	var size uint64
	for off := 0; off < len(raw) || off == 0; off += b.tileSize {
		end := min(off+b.tileSize, len(raw))

		block, err := tile.Compress(raw[off:end], c)
		if err != nil {
			_ = wb.Abort()
			return 0, err
		}

		if err := b.sm.Resources().AcquireIO(ctx, int64(len(block))); err != nil {
			_ = wb.Abort()
			return 0, err
		}
		_, werr := wb.Write(block)
		b.sm.Resources().ReleaseIO()
		if werr != nil {
			_ = wb.Abort()
			return 0, fmt.Errorf("write blob %s: %w", name, werr)
		}

		size += uint64(len(block))

		if end == len(raw) {
			break
		}
	}

	if err := wb.Sync(); err != nil {
		_ = wb.Abort()
		return 0, fmt.Errorf("sync blob %s: %w", name, err)
	}
	if err := wb.Close(); err != nil {
		return 0, fmt.Errorf("close blob %s: %w", name, err)
	}

	return size, nil
}

// readBlocks loads a fragment blob and decompresses its concatenated tile
// blocks back into one contiguous byte slice.
func (b *base) readBlocks(ctx context.Context, fragURI, name string, c schema.Compressor) ([]byte, error) {
	blob, err := b.sm.OpenBlob(ctx, b.arrayURI, fragURI, name)
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", name, err)
	}
	defer blob.Close()

	if err := b.sm.Resources().AcquireIO(ctx, blob.Size()); err != nil {
		return nil, err
	}
	data, err := vfs.ReadAll(ctx, blob)
	b.sm.Resources().ReleaseIO()
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}

	var raw []byte
	for len(data) > 0 {
		n, err := tile.BlockLen(data)
		if err != nil {
			return nil, err
		}
		if n > len(data) {
			return nil, tile.ErrTruncated
		}

		chunk, err := tile.Decompress(data[:n], c)
		if err != nil {
			return nil, err
		}

		raw = append(raw, chunk...)
		data = data[n:]
	}

	return raw, nil
}

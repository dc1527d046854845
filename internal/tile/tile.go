// Package tile implements the block compression applied to attribute tiles.
//
// Block format: [uncompressedSize uint32][compressedSize uint32][data...],
// little-endian. A compressedSize of 0 marks a block stored verbatim, which
// happens when compression is disabled or does not pay off.
package tile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/gridgo/schema"
)

const headerSize = 8

// ErrTruncated is returned when a block is shorter than its header claims.
var ErrTruncated = errors.New("tile: truncated block")

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Compress encodes one tile block with the given compressor. Blocks whose
// compressed form saves less than 10% are stored verbatim.
func Compress(data []byte, c schema.Compressor) ([]byte, error) {
	var compressed []byte
	switch c {
	case schema.NoCompression:
		return stored(data), nil
	case schema.LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("tile: lz4 compress: %w", err)
		}
		if n == 0 {
			// Incompressible.
			return stored(data), nil
		}
		compressed = buf[:n]
	case schema.Zstd:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, make([]byte, 0, len(data)/2+headerSize))
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("tile: unknown compressor %d", uint8(c))
	}

	if float64(len(compressed)) > float64(len(data))*0.9 {
		return stored(data), nil
	}

	out := make([]byte, headerSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[headerSize:], compressed)
	return out, nil
}

// stored wraps data in a block header with compressedSize 0.
func stored(data []byte) []byte {
	out := make([]byte, headerSize+len(data))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], 0)
	copy(out[headerSize:], data)
	return out
}

// Decompress decodes one tile block produced by Compress. The compressor must
// match the one used on write; it is recorded in the fragment metadata.
func Decompress(block []byte, c schema.Compressor) ([]byte, error) {
	if len(block) < headerSize {
		return nil, ErrTruncated
	}
	rawSize := binary.LittleEndian.Uint32(block[0:])
	compSize := binary.LittleEndian.Uint32(block[4:])
	body := block[headerSize:]

	if compSize == 0 {
		if uint32(len(body)) < rawSize {
			return nil, ErrTruncated
		}
		out := make([]byte, rawSize)
		copy(out, body[:rawSize])
		return out, nil
	}
	if uint32(len(body)) < compSize {
		return nil, ErrTruncated
	}
	body = body[:compSize]

	switch c {
	case schema.LZ4:
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("tile: lz4 decompress: %w", err)
		}
		if uint32(n) != rawSize {
			return nil, fmt.Errorf("tile: lz4 decompressed %d bytes, want %d", n, rawSize)
		}
		return out, nil
	case schema.Zstd:
		dec := getZstdDecoder()
		out, err := dec.DecodeAll(body, make([]byte, 0, rawSize))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("tile: zstd decompress: %w", err)
		}
		if uint32(len(out)) != rawSize {
			return nil, fmt.Errorf("tile: zstd decompressed %d bytes, want %d", len(out), rawSize)
		}
		return out, nil
	case schema.NoCompression:
		return nil, fmt.Errorf("tile: compressed block but compressor is %s", c)
	default:
		return nil, fmt.Errorf("tile: unknown compressor %d", uint8(c))
	}
}

// BlockLen returns the total length of the block starting at data, or an
// error if the header is truncated. Used to walk concatenated blocks.
func BlockLen(data []byte) (int, error) {
	if len(data) < headerSize {
		return 0, ErrTruncated
	}
	rawSize := binary.LittleEndian.Uint32(data[0:])
	compSize := binary.LittleEndian.Uint32(data[4:])
	if compSize == 0 {
		return headerSize + int(rawSize), nil
	}
	return headerSize + int(compSize), nil
}

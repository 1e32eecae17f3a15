package store

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// pageCodec compresses page snapshots and content. Input without the zstd
// frame magic is returned as is, so plain files written by hand or by an
// uncompressed export still load.
type pageCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (c *pageCodec) Compress(val []byte) ([]byte, error) {
	return c.encoder.EncodeAll(val, make([]byte, 0, len(val)/4)), nil
}

func (c *pageCodec) Decompress(val []byte) ([]byte, error) {
	if !bytes.HasPrefix(val, zstdMagic) {
		return val, nil
	}
	return c.decoder.DecodeAll(val, nil)
}

func (c *pageCodec) Close() {
	_ = c.encoder.Close()
	c.decoder.Close()
}

func NewZstdCompressor() (CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &pageCodec{encoder: encoder, decoder: decoder}, nil
}

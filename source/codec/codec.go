// Package codec stores and restores entry payloads of database backed asset
// packs.
package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/mwantia/cncmaps/data"
)

const (
	FlagNone = 0
	FlagZstd = 1 << 0
)

var (
	encoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	})
	decoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil)
	})
)

// Encode returns the stored flags and payload for content.
func Encode(content []byte, compress bool) (int, []byte, error) {
	if !compress {
		return FlagNone, content, nil
	}

	enc, err := encoder()
	if err != nil {
		return 0, nil, err
	}
	return FlagZstd, enc.EncodeAll(content, nil), nil
}

// Decode restores content stored with flags.
func Decode(name string, flags int, payload []byte) ([]byte, error) {
	if flags&^FlagZstd != 0 {
		return nil, data.NewFormatError("asset pack entry", name, fmt.Errorf("unknown flags %x", flags))
	}
	if flags&FlagZstd == 0 {
		return payload, nil
	}

	dec, err := decoder()
	if err != nil {
		return nil, err
	}

	content, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, data.NewFormatError("asset pack entry", name, err)
	}
	return content, nil
}

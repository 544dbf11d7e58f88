package objhash

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DefaultLevel is the compression level used when a repository's
// configuration does not specify one.
const DefaultLevel = 1

// MinLevel and MaxLevel bound the integer Zstd level accepted by
// Compress, matching the configuration schema's `[1, 22]` range.
const (
	MinLevel = 1
	MaxLevel = 22
)

// encoderLevel maps Gato's integer compression level onto klauspost's
// speed-preset encoder levels. klauspost/compress/zstd exposes four
// presets rather than a raw 1..22 scale, so the integer range is
// bucketed: 1-4 fastest, 5-11 default, 12-18 better, 19-22 best. This
// mirrors the preset-bucketing idiom bureau-foundation-bureau uses for
// its own fixed "level 3" choice, generalized here to a configurable
// range.
func encoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 4:
		return zstd.SpeedFastest
	case level <= 11:
		return zstd.SpeedDefault
	case level <= 18:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// Compress encodes data with Zstd at the given level, clamped to
// [MinLevel, MaxLevel].
func Compress(data []byte, level int) ([]byte, error) {
	if level < MinLevel {
		level = MinLevel
	}
	if level > MaxLevel {
		level = MaxLevel
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(encoderLevel(level)))
	if err != nil {
		return nil, fmt.Errorf("compress: new encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// Decompress decodes Zstd-compressed bytes of arbitrary uncompressed
// size. It fails with a wrapped error on malformed input.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: new decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

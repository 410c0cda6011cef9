package repository

import (
	"encoding/hex"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
)

// Shared zstd state; Encoder.EncodeAll and Decoder.DecodeAll are safe for
// concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("repository: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("repository: zstd decoder initialization failed: " + err.Error())
	}
}

// compressContent packs document text for the network and disk stores.
func compressContent(content string) []byte {
	return zstdEncoder.EncodeAll([]byte(content), make([]byte, 0, len(content)/2+16))
}

func decompressContent(data []byte) (string, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return "", fmt.Errorf("decompress document: %w", err)
	}
	return string(raw), nil
}

// Digest returns the hex blake2b-256 of the document text.
func Digest(content string) string {
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

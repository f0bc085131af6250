package lz10

// Compressor compresses a complete payload.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor expands a complete payload.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// LZ10 is the Codec for Level-5 LZ10 payloads. When Strict is set,
// Decompress rejects output whose length differs from the prefix.
type LZ10 struct {
	Strict bool
}

var _ Codec = LZ10{}

// New returns a lenient LZ10 codec.
func New() LZ10 {
	return LZ10{}
}

// Compress implements Compressor.
func (c LZ10) Compress(data []byte) ([]byte, error) {
	return Compress(data)
}

// Decompress implements Decompressor.
func (c LZ10) Decompress(data []byte) ([]byte, error) {
	if c.Strict {
		return DecompressStrict(data)
	}
	return Decompress(data), nil
}

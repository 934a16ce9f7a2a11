/*
	This file supports serialization of raw pixel buffers with optional
	compression and checksum.  It is used when cells are evicted from memory.
*/

package ndimg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compression is the format of compression for serialized data.
// NOTE: Should be no more than 8 (3 bits) of compression types.
type Compression uint8

const (
	Uncompressed Compression = 0
	Snappy       Compression = 1
	Zstd         Compression = 2
)

func (compress Compression) String() string {
	switch compress {
	case Uncompressed:
		return "No compression"
	case Snappy:
		return "Go Snappy compression"
	case Zstd:
		return "Zstandard compression"
	default:
		return "Unknown compression"
	}
}

// ParseCompression converts a configuration value ("none", "snappy", "zstd").
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return Uncompressed, nil
	case "snappy":
		return Snappy, nil
	case "zstd":
		return Zstd, nil
	}
	return Uncompressed, fmt.Errorf("unknown compression %q", s)
}

// Checksum is the type of checksum employed for error checking stored data.
// NOTE: Should be no more than 4 (2 bits) of checksum types.
type Checksum uint8

const (
	NoChecksum Checksum = 0
	CRC32      Checksum = 1
)

func (checksum Checksum) String() string {
	switch checksum {
	case NoChecksum:
		return "No checksum"
	case CRC32:
		return "CRC32 checksum"
	default:
		return "Unknown checksum"
	}
}

// SerializationFormat is a single byte combining both compression and checksum methods.
type SerializationFormat uint8

func EncodeSerializationFormat(compress Compression, checksum Checksum) SerializationFormat {
	a := (uint8(compress) & 0x07) << 5
	b := (uint8(checksum) & 0x03) << 3
	return SerializationFormat(a | b)
}

func DecodeSerializationFormat(s SerializationFormat) (compress Compression, checksum Checksum) {
	compress = Compression(uint8(s) >> 5)
	checksum = Checksum((uint8(s) >> 3) & 0x03)
	return
}

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil)
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// SerializeData serializes a slice of bytes using optional compression and checksum.
func SerializeData(data []byte, compress Compression, checksum Checksum) ([]byte, error) {
	var buffer bytes.Buffer

	format := EncodeSerializationFormat(compress, checksum)
	if err := buffer.WriteByte(byte(format)); err != nil {
		return nil, err
	}

	var byteData []byte
	switch compress {
	case Uncompressed:
		byteData = data
	case Snappy:
		byteData = snappy.Encode(nil, data)
	case Zstd:
		enc, _, err := zstdCodecs()
		if err != nil {
			return nil, err
		}
		byteData = enc.EncodeAll(data, nil)
	default:
		return nil, fmt.Errorf("illegal compression (%s) during serialization", compress)
	}

	switch checksum {
	case NoChecksum:
	case CRC32:
		crcChecksum := crc32.ChecksumIEEE(byteData)
		if err := binary.Write(&buffer, binary.LittleEndian, crcChecksum); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("illegal checksum (%s) during serialization", checksum)
	}

	// The data is written last, after any checksum, so its length is implicit.
	if _, err := buffer.Write(byteData); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DeserializeData recovers bytes written by SerializeData, verifying any checksum.
func DeserializeData(s []byte) ([]byte, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("cannot deserialize empty data")
	}
	compress, checksum := DecodeSerializationFormat(SerializationFormat(s[0]))
	cdata := s[1:]

	switch checksum {
	case NoChecksum:
	case CRC32:
		if len(cdata) < 4 {
			return nil, fmt.Errorf("serialized data too short for checksum")
		}
		storedCrc32 := binary.LittleEndian.Uint32(cdata[:4])
		cdata = cdata[4:]
		if crcChecksum := crc32.ChecksumIEEE(cdata); crcChecksum != storedCrc32 {
			return nil, fmt.Errorf("bad checksum: stored %x got %x", storedCrc32, crcChecksum)
		}
	default:
		return nil, fmt.Errorf("illegal checksum in deserializing data")
	}

	switch compress {
	case Uncompressed:
		return cdata, nil
	case Snappy:
		return snappy.Decode(nil, cdata)
	case Zstd:
		_, dec, err := zstdCodecs()
		if err != nil {
			return nil, err
		}
		return dec.DecodeAll(cdata, nil)
	}
	return nil, fmt.Errorf("illegal compression format (%d) in deserialization", compress)
}

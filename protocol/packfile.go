package protocol

import (
	"bytes"
	"context"
	//nolint:gosec // The pack trailer checksum is defined over SHA-1.
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/grafana/microgit/log"
	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/protocol/object"
)

var (
	// ErrNoPackSignature is returned when the payload does not begin "PACK".
	ErrNoPackSignature = errors.New("payload has no packfile signature")

	// ErrTruncatedPack is returned when the payload ends inside an object
	// header or body. The reader is tainted afterwards.
	ErrTruncatedPack = errors.New("packfile is truncated")

	// ErrUnsupportedObjectType is returned for object type bits that do not
	// name a decodable object.
	ErrUnsupportedObjectType = errors.New("unsupported object type in packfile")

	// ErrInflatedDataIncorrectSize is returned when a body inflates to a
	// length other than the one its header declared. The cursor has still
	// advanced past the object, so the caller may skip it and read on.
	ErrInflatedDataIncorrectSize = errors.New("object data has the wrong size post-inflation")

	// ErrObjectTooLarge is returned when a header declares an inflated size
	// beyond MaxUnpackedObjectSize.
	ErrObjectTooLarge = errors.New("object exceeds the unpacked size limit")

	// ErrChecksumMismatch is returned by VerifyChecksum when the trailing
	// SHA-1 does not cover the bytes received.
	ErrChecksumMismatch = errors.New("packfile checksum mismatch")
)

// MaxUnpackedObjectSize bounds the inflated size a single object header may
// declare.
const MaxUnpackedObjectSize = 64 * 1024 * 1024

// packHeaderSize is the fixed prefix: signature, version, object count.
const packHeaderSize = 12

// PackfileObject is one decoded entry of a pack stream.
type PackfileObject struct {
	// Type of the object. For the delta types, Data is a delta payload.
	Type object.Type
	// Data is the inflated body.
	Data []byte
	// BaseID is set for OBJ_REF_DELTA: the identity of the delta base.
	BaseID hash.Hash
	// RelativeOffset is set for OBJ_OFS_DELTA: how many bytes before this
	// object's own header its base begins. Recorded, not resolved.
	RelativeOffset int64
}

// A PackfileReader decodes a pack: a 4-byte "PACK" signature, a 4-byte
// big-endian version, a 4-byte big-endian object count, that many encoded
// objects back to back, and a trailing SHA-1 over everything before it.
// Wire format: https://git-scm.com/docs/pack-format
//
// The pack is a concatenation of zlib streams with unknown compressed
// lengths, so each body is inflated through a *bytes.Reader and the cursor
// advanced by exactly the compressed bytes the inflater consumed.
type PackfileReader struct {
	payload []byte
	offset  int

	version   uint32
	count     uint32
	remaining uint32

	err error
}

// ParsePackfile validates the pack header and returns a reader positioned
// at the first object.
//
// A missing signature is an error; a version other than 2 is accepted with
// a warning, matching lenient behavior observed from real remotes.
func ParsePackfile(ctx context.Context, payload []byte) (*PackfileReader, error) {
	logger := log.FromContext(ctx)

	if len(payload) < packHeaderSize {
		return nil, fmt.Errorf("%w: %d header bytes", ErrTruncatedPack, len(payload))
	}
	if !bytes.HasPrefix(payload, packSignature) {
		return nil, ErrNoPackSignature
	}

	version := binary.BigEndian.Uint32(payload[4:8])
	if version != 2 {
		logger.Warn("unexpected packfile version", "version", version)
	}
	count := binary.BigEndian.Uint32(payload[8:12])

	logger.Debug("parsed packfile header", "version", version, "object_count", count, "pack_size", len(payload))

	return &PackfileReader{
		payload:   payload,
		offset:    packHeaderSize,
		version:   version,
		count:     count,
		remaining: count,
	}, nil
}

// Version returns the pack version the header declared.
func (p *PackfileReader) Version() uint32 { return p.version }

// Count returns the object count the header declared.
func (p *PackfileReader) Count() uint32 { return p.count }

// Remaining returns how many declared objects have not been read. A nonzero
// value after ReadObject returns io.EOF means the stream fell short.
func (p *PackfileReader) Remaining() uint32 { return p.remaining }

// ReadObject decodes the next object. It returns io.EOF when the declared
// count is exhausted or the cursor has reached the trailer.
//
// Two error classes come back:
//   - recoverable, with a non-nil object: ErrInflatedDataIncorrectSize.
//     The cursor has advanced; the caller may skip the object and continue.
//   - terminal: truncation and header corruption. The reader is tainted and
//     returns the same error from then on.
func (p *PackfileReader) ReadObject() (*PackfileObject, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.remaining == 0 || p.offset >= p.trailerOffset() {
		return nil, io.EOF
	}
	p.remaining--

	obj := &PackfileObject{}

	b, err := p.readByte()
	if err != nil {
		return nil, p.taint(err)
	}

	// Byte 0: continuation bit, 3 type bits, 4 low size bits.
	obj.Type = object.Type((b >> 4) & 0b111)
	size := uint64(b & 0b1111)
	shift := 4
	for b&0x80 != 0 {
		if b, err = p.readByte(); err != nil {
			return nil, p.taint(err)
		}
		size |= uint64(b&0x7f) << shift
		shift += 7
	}

	if size > MaxUnpackedObjectSize {
		return nil, p.taint(fmt.Errorf("%w: %d bytes declared", ErrObjectTooLarge, size))
	}

	switch obj.Type {
	case object.TypeCommit, object.TypeTree, object.TypeBlob, object.TypeTag:
		// Body follows directly.

	case object.TypeRefDelta:
		raw := p.take(hash.Size)
		if raw == nil {
			return nil, p.taint(fmt.Errorf("%w: ref-delta base identity", ErrTruncatedPack))
		}
		obj.BaseID, _ = hash.FromBytes(raw)

	case object.TypeOfsDelta:
		// A distinct variable-length encoding for the negative offset.
		offset, err := p.readNegativeOffset()
		if err != nil {
			return nil, p.taint(err)
		}
		obj.RelativeOffset = offset

	default:
		return nil, p.taint(fmt.Errorf("%w (%s; header byte %08b)", ErrUnsupportedObjectType, obj.Type, b))
	}

	data, err := p.readAndInflate()
	if err != nil {
		return nil, p.taint(err)
	}
	obj.Data = data

	if uint64(len(data)) != size {
		return obj, fmt.Errorf("%w: declared %d, inflated %d", ErrInflatedDataIncorrectSize, size, len(data))
	}

	return obj, nil
}

// VerifyChecksum compares the SHA-1 over all pack bytes before the trailer
// against the trailer itself.
func (p *PackfileReader) VerifyChecksum() error {
	if len(p.payload) < packHeaderSize+hash.Size {
		return fmt.Errorf("%w: no room for a trailer", ErrTruncatedPack)
	}

	body := p.payload[:p.trailerOffset()]
	trailer := p.payload[p.trailerOffset():]

	//nolint:gosec
	sum := sha1.Sum(body)
	if !bytes.Equal(sum[:], trailer) {
		return fmt.Errorf("%w: computed %x, trailer %x", ErrChecksumMismatch, sum, trailer)
	}
	return nil
}

// Checksum returns the trailing identity the remote sent for the pack.
func (p *PackfileReader) Checksum() hash.Hash {
	if len(p.payload) < hash.Size {
		return hash.Zero
	}
	h, _ := hash.FromBytes(p.payload[p.trailerOffset():])
	return h
}

func (p *PackfileReader) trailerOffset() int {
	if len(p.payload) < hash.Size {
		return 0
	}
	return len(p.payload) - hash.Size
}

func (p *PackfileReader) taint(err error) error {
	p.err = err
	return err
}

func (p *PackfileReader) readByte() (byte, error) {
	if p.offset >= len(p.payload) {
		return 0, fmt.Errorf("%w: object header", ErrTruncatedPack)
	}
	b := p.payload[p.offset]
	p.offset++
	return b, nil
}

// take returns the next n raw bytes and advances, or nil when they are not
// there.
func (p *PackfileReader) take(n int) []byte {
	if p.offset+n > len(p.payload) {
		return nil
	}
	b := p.payload[p.offset : p.offset+n]
	p.offset += n
	return b
}

// readNegativeOffset decodes the ofs-delta base offset:
// value = byte&0x7F, then while the continuation bit is set,
// value = ((value + 1) << 7) | (byte & 0x7F).
func (p *PackfileReader) readNegativeOffset() (int64, error) {
	b, err := p.readByte()
	if err != nil {
		return 0, err
	}
	value := int64(b & 0x7f)
	for b&0x80 != 0 {
		if b, err = p.readByte(); err != nil {
			return 0, err
		}
		value = ((value + 1) << 7) | int64(b&0x7f)
	}
	return value, nil
}

// readAndInflate inflates the zlib stream at the cursor and advances by
// exactly the compressed bytes consumed. The sub-reader is an io.ByteReader,
// so the inflater never reads ahead of its own stream.
func (p *PackfileReader) readAndInflate() ([]byte, error) {
	sub := bytes.NewReader(p.payload[p.offset:])
	avail := sub.Len()

	zr, err := zlib.NewReader(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedPack, err)
	}
	defer zr.Close()

	var data bytes.Buffer
	if _, err := io.Copy(&data, zr); err != nil {
		return nil, fmt.Errorf("inflating object at offset %d: %w", p.offset, eofIsUnexpected(err))
	}

	p.offset += avail - sub.Len()
	return data.Bytes(), nil
}

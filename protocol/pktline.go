package protocol

import (
	"errors"
	"fmt"
	"strconv"
)

// Pkt-lines are the framing unit of the smart transport. They are described
// in https://git-scm.com/docs/gitprotocol-common.
//
// A pkt-line is 4 ASCII hex digits of length followed by length-4 bytes of
// payload. A length of "0000" is a flush-pkt: a section delimiter with no
// payload. Receivers MUST treat textual payloads the same whether or not
// they carry a trailing LF.
const (
	// PktLineLengthSize is the 4 ASCII hex digits of the length field.
	// The length field counts itself, so the payload is length - 4.
	PktLineLengthSize = 4
	// MaxPktLineDataSize is the largest payload a single pkt-line may carry.
	MaxPktLineDataSize = 65516
	// MaxPktLineSize is the largest whole pkt-line, length field included.
	MaxPktLineSize = MaxPktLineDataSize + PktLineLengthSize
)

var (
	// ErrDataTooLarge is returned when a payload exceeds MaxPktLineDataSize.
	ErrDataTooLarge = errors.New("pkt-line payload is too large")

	// ErrMalformedPacket is returned when a length field is not hex or a
	// pkt-line declares more bytes than the buffer holds.
	ErrMalformedPacket = errors.New("malformed pkt-line")
)

// Pack is one unit of a pkt-line stream under construction: either a
// payload-carrying line or a special packet such as a flush.
type Pack interface {
	pktEncode() ([]byte, error)
}

// PackLine is a payload to be wrapped in a pkt-line frame.
type PackLine string

func (l PackLine) pktEncode() ([]byte, error) {
	if len(l) > MaxPktLineDataSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDataTooLarge, len(l))
	}
	return append([]byte(fmt.Sprintf("%04x", len(l)+PktLineLengthSize)), l...), nil
}

// SpecialPack is a pre-encoded special packet, emitted verbatim.
type SpecialPack []byte

func (s SpecialPack) pktEncode() ([]byte, error) {
	return s, nil
}

// FlushPacket is the "0000" flush-pkt.
var FlushPacket = SpecialPack("0000")

// FormatPacks encodes the given packs back to back. Flushes appear exactly
// where the caller places them; none is appended implicitly.
func FormatPacks(packs ...Pack) ([]byte, error) {
	var out []byte
	for _, p := range packs {
		b, err := p.pktEncode()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// ParsePacket decodes every payload-carrying pkt-line in b. Flush packets
// are dropped. On a decoding failure the remainder starts at the record that
// failed, so a caller can inspect bytes that were never pkt-framed.
func ParsePacket(b []byte) (lines [][]byte, remainder []byte, err error) {
	for len(b) > 0 {
		payload, rest, flush, err := nextPacket(b)
		if err != nil {
			return lines, b, err
		}
		b = rest
		if flush {
			continue
		}
		lines = append(lines, payload)
	}
	return lines, nil, nil
}

// nextPacket decodes a single pkt-line from the front of b.
// flush is true for the special packets with length < 4.
func nextPacket(b []byte) (payload []byte, rest []byte, flush bool, err error) {
	if len(b) < PktLineLengthSize {
		return nil, b, false, fmt.Errorf("%w: %d trailing bytes", ErrMalformedPacket, len(b))
	}

	length, err := strconv.ParseUint(string(b[:PktLineLengthSize]), 16, 32)
	if err != nil {
		return nil, b, false, fmt.Errorf("%w: length %q", ErrMalformedPacket, b[:PktLineLengthSize])
	}

	if length < PktLineLengthSize {
		// Flush (0000) and the v2 special packets carry no payload.
		return nil, b[PktLineLengthSize:], true, nil
	}

	if int(length) > len(b) {
		return nil, b, false, fmt.Errorf("%w: declared %d bytes, have %d", ErrMalformedPacket, length, len(b))
	}

	return b[PktLineLengthSize:length], b[length:], false, nil
}

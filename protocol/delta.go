package protocol

import (
	"errors"
	"fmt"
)

// ErrInvalidDelta is returned when a delta payload cannot be applied to its
// base: size disagreements, out-of-bounds copies, reserved instructions, or
// a result of the wrong length.
var ErrInvalidDelta = errors.New("invalid delta payload")

// ApplyDelta rebuilds a target payload from a base payload and a delta.
//
// The delta opens with two variable-length unsigned sizes (7 data bits per
// byte, high bit continues): the expected base length and the target
// length. Instruction bytes follow:
//
//	+----------+---------+---------+---------+---------+-------+-------+-------+
//	| 1xxxxxxx | offset1 | offset2 | offset3 | offset4 | size1 | size2 | size3 |
//	+----------+---------+---------+---------+---------+-------+-------+-------+
//
// A set high bit is a copy from the base: the low four bits gate which
// little-endian offset bytes follow, bits 4-6 gate the size bytes. A size
// of zero means 0x10000.
//
//	+----------+============+
//	| 0xxxxxxx |    data    |
//	+----------+============+
//
// A clear high bit is an insert of the next (cmd & 0x7F) delta bytes; a
// wholly zero instruction byte is reserved and rejected.
func ApplyDelta(base, delta []byte) ([]byte, error) {
	srcSize, delta, err := deltaHeaderSize(delta)
	if err != nil {
		return nil, fmt.Errorf("%w: source size: %v", ErrInvalidDelta, err)
	}
	if srcSize != uint64(len(base)) {
		return nil, fmt.Errorf("%w: source size %d, base is %d bytes", ErrInvalidDelta, srcSize, len(base))
	}

	targetSize, delta, err := deltaHeaderSize(delta)
	if err != nil {
		return nil, fmt.Errorf("%w: target size: %v", ErrInvalidDelta, err)
	}

	target := make([]byte, 0, targetSize)
	for len(delta) > 0 {
		cmd := delta[0]
		delta = delta[1:]

		switch {
		case cmd&0x80 != 0: // copy from base
			var offset, size uint64
			for bit := 0; bit < 4; bit++ {
				if cmd&(1<<bit) != 0 {
					if len(delta) == 0 {
						return nil, fmt.Errorf("%w: truncated copy offset", ErrInvalidDelta)
					}
					offset |= uint64(delta[0]) << (8 * bit)
					delta = delta[1:]
				}
			}
			for bit := 0; bit < 3; bit++ {
				if cmd&(1<<(4+bit)) != 0 {
					if len(delta) == 0 {
						return nil, fmt.Errorf("%w: truncated copy size", ErrInvalidDelta)
					}
					size |= uint64(delta[0]) << (8 * bit)
					delta = delta[1:]
				}
			}
			if size == 0 { // documented exception
				size = 0x10000
			}

			if offset+size < offset || offset+size > uint64(len(base)) {
				return nil, fmt.Errorf("%w: copy [%d, %d) outside base of %d bytes", ErrInvalidDelta, offset, offset+size, len(base))
			}
			if uint64(len(target))+size > targetSize {
				return nil, fmt.Errorf("%w: copy overflows target of %d bytes", ErrInvalidDelta, targetSize)
			}

			target = append(target, base[offset:offset+size]...)

		case cmd != 0: // insert from delta
			size := uint64(cmd & 0x7f)
			if uint64(len(delta)) < size {
				return nil, fmt.Errorf("%w: insert of %d bytes, %d left", ErrInvalidDelta, size, len(delta))
			}
			if uint64(len(target))+size > targetSize {
				return nil, fmt.Errorf("%w: insert overflows target of %d bytes", ErrInvalidDelta, targetSize)
			}

			target = append(target, delta[:size]...)
			delta = delta[size:]

		default:
			// Instruction 0x0 is reserved.
			return nil, fmt.Errorf("%w: reserved instruction 0x0", ErrInvalidDelta)
		}
	}

	if uint64(len(target)) != targetSize {
		return nil, fmt.Errorf("%w: produced %d bytes, target size is %d", ErrInvalidDelta, len(target), targetSize)
	}

	return target, nil
}

// deltaHeaderSize reads one variable-length unsigned size from the front of
// b: 7 data bits per byte, high bit set while more bytes follow.
func deltaHeaderSize(b []byte) (uint64, []byte, error) {
	var size uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= len(b) {
			return 0, nil, errors.New("truncated size")
		}
		c := b[i]
		size |= uint64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			return size, b[i+1:], nil
		}
	}
}

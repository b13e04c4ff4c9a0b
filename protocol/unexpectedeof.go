package protocol

import (
	"errors"
	"io"
)

// eofIsUnexpected converts a bare io.EOF into io.ErrUnexpectedEOF. Inside a
// record whose length is already known, running out of bytes is corruption,
// not a clean end of stream.
func eofIsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

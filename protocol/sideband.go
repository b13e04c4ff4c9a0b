package protocol

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grafana/microgit/log"
)

// Side-band multiplexing interleaves pack data with human-readable
// channels inside the same pkt-line stream. Each non-flush record's
// payload starts with a 1-byte band indicator.
const (
	bandPack     = 1 // pack data
	bandProgress = 2 // progress messages
	bandError    = 3 // fatal error message, terminates the stream
)

var (
	// ErrNoPackData is returned when a fetch response never produces a
	// PACK signature on band 1.
	ErrNoPackData = errors.New("no pack data in fetch response")
)

// RemoteError carries the band-3 messages a remote sent before aborting.
type RemoteError struct {
	Messages []string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: %s", strings.Join(e.Messages, "; "))
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrNoPackData
}

var packSignature = []byte("PACK")

// DemuxPack strips the pkt-line and side-band framing from the body of the
// git-upload-pack POST and returns the raw pack stream.
//
// Band-2 progress is routed to the context logger. Band-3 messages are
// collected; if the stream ends without any pack data they are returned in
// a RemoteError.
//
// A pragmatic tolerance carried over from real remotes: if a record (or
// un-framed trailing bytes) begins with a literal PACK signature, the rest
// of the stream is taken verbatim as pack data.
func DemuxPack(ctx context.Context, body []byte) ([]byte, error) {
	logger := log.FromContext(ctx)

	var pack []byte
	var remoteMsgs []string
	unframed := false

	for len(body) > 0 {
		payload, rest, flush, err := nextPacket(body)
		if err != nil {
			// Not pkt-framed at all. Accept a bare pack stream.
			if bytes.HasPrefix(body, packSignature) || (len(pack) > 0 && unframed) {
				pack = append(pack, body...)
				body = nil
				break
			}
			return nil, fmt.Errorf("demultiplexing fetch response: %w", err)
		}
		body = rest

		if flush {
			continue
		}
		if len(payload) == 0 {
			continue
		}

		switch {
		case unframed:
			pack = append(pack, payload...)

		case bytes.HasPrefix(payload, packSignature):
			// Pack data without side-band framing.
			unframed = true
			pack = append(pack, payload...)

		case payload[0] == bandPack:
			pack = append(pack, payload[1:]...)

		case payload[0] == bandProgress:
			logger.Info("remote progress", "message", strings.TrimSpace(string(payload[1:])))

		case payload[0] == bandError:
			msg := strings.TrimSpace(string(payload[1:]))
			logger.Warn("remote error", "message", msg)
			remoteMsgs = append(remoteMsgs, msg)

		default:
			// NAK, ACK and similar negotiation records.
			logger.Debug("negotiation record", "record", strings.TrimSpace(string(payload)))
		}
	}

	if !bytes.HasPrefix(pack, packSignature) {
		if len(remoteMsgs) > 0 {
			return nil, &RemoteError{Messages: remoteMsgs}
		}
		return nil, ErrNoPackData
	}

	return pack, nil
}

package protocol

import (
	"errors"
	"fmt"

	"github.com/grafana/microgit/protocol/hash"
)

// ErrNoWants is returned when an upload-pack request is built with no
// wanted identities.
var ErrNoWants = errors.New("upload-pack request needs at least one want")

// fetchCapabilities is the capability set declared on the first want line.
// It is part of the wire contract: a remote that does not understand it
// fails the POST. ofs-delta is declared even though the decoder does not
// resolve pack-offset deltas; remotes commonly send them regardless and the
// decoder skips them.
const fetchCapabilities = "multi_ack_detailed side-band-64k thin-pack ofs-delta"

// FormatUploadPackRequest builds the negotiation body POSTed to
// <url>/git-upload-pack: the wants, a flush, "done", and a final flush.
// The first want line carries the capability set and the client agent.
func FormatUploadPackRequest(agent string, wants []hash.Hash) ([]byte, error) {
	if len(wants) == 0 {
		return nil, ErrNoWants
	}

	packs := make([]Pack, 0, len(wants)+3)
	packs = append(packs, PackLine(fmt.Sprintf("want %s %s agent=%s\n", wants[0], fetchCapabilities, agent)))
	for _, want := range wants[1:] {
		packs = append(packs, PackLine(fmt.Sprintf("want %s\n", want)))
	}
	packs = append(packs,
		SpecialPack(FlushPacket),
		PackLine("done\n"),
		SpecialPack(FlushPacket),
	)

	return FormatPacks(packs...)
}

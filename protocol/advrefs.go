package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/grafana/microgit/protocol/hash"
)

// ErrEmptyAdvertisement is returned when the ref advertisement carries no
// ref lines at all.
var ErrEmptyAdvertisement = errors.New("ref advertisement contains no refs")

// SymrefPrefix marks a symbolic ref value in an Advertisement ref map,
// e.g. "ref: refs/heads/main". It matches the textual form of a symbolic
// ref file.
const SymrefPrefix = "ref: "

// Advertisement is the decoded form of the info/refs response of the v0
// smart transport: the refs the remote offers, plus the capability list
// from the first ref line.
//
// Ref values are either a 40-hex identity (direct) or "ref: <name>"
// (symbolic, recovered from a symref capability).
type Advertisement struct {
	Refs         map[string]string
	Capabilities []string
}

// Symbolic resolves name if it maps to a symbolic ref, returning the
// target ref name.
func (a *Advertisement) Symbolic(name string) (string, bool) {
	v, ok := a.Refs[name]
	if !ok || !strings.HasPrefix(v, SymrefPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(v, SymrefPrefix)), true
}

// Direct resolves name if it maps to an identity.
func (a *Advertisement) Direct(name string) (hash.Hash, bool) {
	v, ok := a.Refs[name]
	if !ok || strings.HasPrefix(v, SymrefPrefix) {
		return hash.Zero, false
	}
	h, err := hash.FromHex(strings.TrimSpace(v))
	if err != nil {
		return hash.Zero, false
	}
	return h, true
}

// ParseAdvertisement decodes the body of
// GET <url>/info/refs?service=git-upload-pack.
//
// The stream opens with a "# service=git-upload-pack" announcement record
// and a flush. The first ref line is "<sha> <name>\0<capabilities>"; a
// missing NUL is tolerated (the whole record is then sha and name). Every
// following record until the flush is "<sha> <name>". Each
// "symref=<name>:<target>" capability records name as a symbolic ref.
func ParseAdvertisement(body []byte) (*Advertisement, error) {
	lines, _, err := ParsePacket(body)
	if err != nil {
		return nil, fmt.Errorf("parsing advertisement: %w", err)
	}

	adv := &Advertisement{Refs: make(map[string]string)}

	first := true
	for _, line := range lines {
		if bytes.HasPrefix(line, []byte("# service=")) {
			continue
		}

		refPart := line
		if first {
			first = false
			var caps []byte
			if idx := bytes.IndexByte(line, 0); idx >= 0 {
				refPart, caps = line[:idx], line[idx+1:]
			}
			adv.parseCapabilities(caps)
		}

		id, name, err := parseRefRecord(refPart)
		if err != nil {
			return nil, err
		}
		// A symref capability already resolved this name symbolically;
		// HEAD in particular is advertised both ways.
		if existing, ok := adv.Refs[name]; ok && strings.HasPrefix(existing, SymrefPrefix) {
			continue
		}
		adv.Refs[name] = id.String()
	}

	if len(adv.Refs) == 0 {
		return nil, ErrEmptyAdvertisement
	}

	return adv, nil
}

// parseCapabilities records the capability list and folds every
// symref=<name>:<target> pair into the ref map.
func (a *Advertisement) parseCapabilities(caps []byte) {
	for _, capability := range strings.Fields(string(caps)) {
		a.Capabilities = append(a.Capabilities, capability)

		value, ok := strings.CutPrefix(capability, "symref=")
		if !ok {
			continue
		}
		name, target, ok := strings.Cut(value, ":")
		if !ok || name == "" || target == "" {
			continue
		}
		a.Refs[name] = SymrefPrefix + target
	}
}

// parseRefRecord decodes a "<40-hex> <name>" record.
func parseRefRecord(line []byte) (hash.Hash, string, error) {
	text := strings.TrimSuffix(string(line), "\n")
	idStr, name, ok := strings.Cut(text, " ")
	if !ok {
		return hash.Zero, "", fmt.Errorf("%w: ref record %q", ErrMalformedPacket, text)
	}

	id, err := hash.FromHex(idStr)
	if err != nil {
		return hash.Zero, "", fmt.Errorf("ref record %q: %w", text, err)
	}

	return id, name, nil
}

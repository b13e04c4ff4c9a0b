package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/grafana/microgit/protocol/hash"
)

// ErrInvalidCommit is returned when a commit payload cannot be decoded.
var ErrInvalidCommit = errors.New("invalid commit payload")

// Signature is an author or committer line: a display name, an email
// address, and the moment the change was recorded.
type Signature struct {
	Name  string
	Email string
	Time  time.Time
}

// String renders the signature the way it appears in a commit payload:
// "Name <email> <unix-seconds> <tz>".
func (s Signature) String() string {
	t := s.Time
	if t.IsZero() {
		t = time.Unix(0, 0).UTC()
	}
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, t.Unix(), t.Format("-0700"))
}

// Commit is the decoded form of a commit payload.
type Commit struct {
	// Tree is the identity of the root tree.
	Tree hash.Hash
	// Parents are the identities of parent commits, in payload order.
	Parents []hash.Hash
	// Author is the person who made the change.
	Author Signature
	// Committer is the person who recorded the commit.
	Committer Signature
	// Message is everything after the blank line, verbatim.
	Message string
}

// ParseCommit decodes a commit payload. Header lines are
// "tree <id>", zero or more "parent <id>", "author <sig>", "committer <sig>",
// then a blank line and the message. Unknown header lines are skipped so
// that gpgsig and similar extensions do not break decoding.
func ParseCommit(payload []byte) (*Commit, error) {
	header, message, found := bytes.Cut(payload, []byte("\n\n"))
	if !found {
		header = payload
	}

	c := &Commit{Message: string(message)}
	for line := range strings.Lines(string(header)) {
		line = strings.TrimSuffix(line, "\n")
		key, value, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}

		switch key {
		case "tree":
			id, err := hash.FromHex(value)
			if err != nil {
				return nil, fmt.Errorf("%w: tree: %v", ErrInvalidCommit, err)
			}
			c.Tree = id
		case "parent":
			id, err := hash.FromHex(value)
			if err != nil {
				return nil, fmt.Errorf("%w: parent: %v", ErrInvalidCommit, err)
			}
			c.Parents = append(c.Parents, id)
		case "author":
			c.Author = parseSignature(value)
		case "committer":
			c.Committer = parseSignature(value)
		}
	}

	if c.Tree.IsZero() {
		return nil, fmt.Errorf("%w: no tree line", ErrInvalidCommit)
	}

	return c, nil
}

// FormatCommit encodes a commit as its payload bytes.
func FormatCommit(c *Commit) ([]byte, error) {
	if c.Tree.IsZero() {
		return nil, fmt.Errorf("%w: no tree", ErrInvalidCommit)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "committer %s\n", c.Committer)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)

	return buf.Bytes(), nil
}

// parseSignature decodes "Name <email> <unix-seconds> <tz>". Malformed
// trailing fields degrade to a zero time rather than failing the commit.
func parseSignature(value string) Signature {
	var sig Signature

	open := strings.Index(value, " <")
	closing := strings.Index(value, ">")
	if open == -1 || closing == -1 || closing < open {
		sig.Name = value
		return sig
	}

	sig.Name = value[:open]
	sig.Email = value[open+2 : closing]

	rest := strings.TrimSpace(value[closing+1:])
	fields := strings.Fields(rest)
	if len(fields) >= 1 {
		if secs, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
			sig.Time = time.Unix(secs, 0).UTC()
			if len(fields) >= 2 {
				if loc := parseTimezone(fields[1]); loc != nil {
					sig.Time = sig.Time.In(loc)
				}
			}
		}
	}

	return sig
}

// parseTimezone decodes a "+0200" style offset into a fixed location.
func parseTimezone(tz string) *time.Location {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return nil
	}
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil
	}
	mins, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil
	}

	offset := (hours*60 + mins) * 60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset)
}

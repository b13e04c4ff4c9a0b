package protocol

import (
	"errors"
	"strings"
)

// RefName is a parsed reference name, e.g. "refs/heads/main".
type RefName struct {
	// FullName is the entire refname, including the 'refs/' prefix
	// (unless it is HEAD).
	FullName string
	// Category is the first segment after 'refs/', e.g. 'heads'.
	Category string
	// Location is the remainder after the category, e.g. 'main' or
	// 'feature/test'.
	Location string
}

// HEAD is the special-case refname that always exists. It names the
// currently checked-out commit or branch.
var HEAD = RefName{FullName: "HEAD", Category: "HEAD", Location: "HEAD"}

var (
	ErrRefMissingPrefix   = errors.New("ref name does not include refs/ prefix")
	ErrRefMissingCategory = errors.New("ref name does not include a category")
	ErrRefBadCharacter    = errors.New("ref name contains a forbidden sequence")
)

// ParseRefName validates and splits a refname. "HEAD" is always valid.
// Other names must start with "refs/" and contain a category segment, must
// not contain "..", "@{", a backslash, control bytes, or the characters
// ` ^:?*[`, and must not end in "/", ".", or ".lock".
func ParseRefName(in string) (RefName, error) {
	if in == "HEAD" {
		return HEAD, nil
	}

	rn := RefName{FullName: in}
	rest, ok := strings.CutPrefix(in, "refs/")
	if !ok {
		return rn, ErrRefMissingPrefix
	}

	category, location, ok := strings.Cut(rest, "/")
	if !ok {
		return rn, ErrRefMissingCategory
	}
	rn.Category = category
	rn.Location = location

	if err := checkRefBytes(in); err != nil {
		return rn, err
	}

	return rn, nil
}

func checkRefBytes(in string) error {
	if strings.Contains(in, "..") || strings.Contains(in, "@{") || strings.Contains(in, "\\") {
		return ErrRefBadCharacter
	}
	if strings.HasSuffix(in, "/") || strings.HasSuffix(in, ".") || strings.HasSuffix(in, ".lock") {
		return ErrRefBadCharacter
	}
	for _, b := range []byte(in) {
		if b < 0x20 || b == 0x7f {
			return ErrRefBadCharacter
		}
		switch b {
		case ' ', '^', ':', '?', '*', '[':
			return ErrRefBadCharacter
		}
	}
	for part := range strings.SplitSeq(in, "/") {
		if strings.HasPrefix(part, ".") {
			return ErrRefBadCharacter
		}
	}
	return nil
}

package microgit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grafana/microgit/protocol"
	"github.com/grafana/microgit/protocol/hash"
)

// DefaultBranch is the branch a fresh repository's HEAD points at before
// the first clone or commit.
const DefaultBranch = "refs/heads/main"

// WriteRef points the named ref at an identity. The name is validated and
// parent directories are created as needed. Ref files hold "<40-hex>\n".
func (r *Repository) WriteRef(name string, id hash.Hash) error {
	rn, err := protocol.ParseRefName(name)
	if err != nil {
		return fmt.Errorf("ref name %q: %w", name, err)
	}
	if rn == protocol.HEAD {
		return r.SetHEADDetached(id)
	}

	path := filepath.Join(r.gitDir, filepath.FromSlash(rn.FullName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ref directory for %q: %w", name, err)
	}

	return os.WriteFile(path, []byte(id.String()+"\n"), 0o644)
}

// SetHEADSymbolic points HEAD at a branch name, e.g. "refs/heads/main".
func (r *Repository) SetHEADSymbolic(name string) error {
	if _, err := protocol.ParseRefName(name); err != nil {
		return fmt.Errorf("ref name %q: %w", name, err)
	}
	return os.WriteFile(filepath.Join(r.gitDir, "HEAD"), []byte(protocol.SymrefPrefix+name+"\n"), 0o644)
}

// SetHEADDetached points HEAD directly at a commit identity.
func (r *Repository) SetHEADDetached(id hash.Hash) error {
	return os.WriteFile(filepath.Join(r.gitDir, "HEAD"), []byte(id.String()+"\n"), 0o644)
}

// ReadRef returns the raw contents of a ref file, trimmed: either a 40-hex
// identity or "ref: <name>" for a symbolic ref.
func (r *Repository) ReadRef(name string) (string, error) {
	path := filepath.Join(r.gitDir, filepath.FromSlash(name))
	if name == "HEAD" {
		path = filepath.Join(r.gitDir, "HEAD")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading ref %q: %w", name, err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// ResolveHEAD follows HEAD to a commit identity, through at most one level
// of symbolic indirection per hop.
func (r *Repository) ResolveHEAD() (hash.Hash, error) {
	const maxHops = 10

	name := "HEAD"
	for hop := 0; hop < maxHops; hop++ {
		value, err := r.ReadRef(name)
		if err != nil {
			return hash.Zero, err
		}

		target, ok := strings.CutPrefix(value, protocol.SymrefPrefix)
		if !ok {
			return hash.FromHex(value)
		}
		name = strings.TrimSpace(target)
	}

	return hash.Zero, fmt.Errorf("resolving HEAD: symbolic ref chain longer than %d hops", maxHops)
}

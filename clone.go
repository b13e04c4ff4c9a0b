package microgit

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	giturls "github.com/chainguard-dev/git-urls"

	"github.com/grafana/microgit/log"
	"github.com/grafana/microgit/protocol"
	"github.com/grafana/microgit/protocol/client"
	"github.com/grafana/microgit/protocol/hash"
	"github.com/grafana/microgit/storage"
)

// CloneOptions configures a clone.
type CloneOptions struct {
	// Dir is the destination directory. Empty derives it from the last
	// path segment of the URL, minus a trailing ".git".
	Dir string

	// UserAgent overrides the transport agent string, which is sent both
	// as the User-Agent header and in the upload-pack capability list.
	UserAgent string

	// HTTPClient overrides the transport's HTTP client, for timeouts and
	// proxy settings.
	HTTPClient *http.Client
}

// CloneResult describes a finished clone.
type CloneResult struct {
	// Path is the created working directory.
	Path string
	// Branch is the default branch name, e.g. "refs/heads/main", or empty
	// when the remote HEAD was detached.
	Branch string
	// Head is the commit the clone checked out.
	Head hash.Hash
	// ObjectsWritten is how many objects the pack decode stored.
	ObjectsWritten int
	// ObjectsSkipped is how many pack objects the per-object failure
	// policy dropped.
	ObjectsSkipped int
}

// Clone fetches a remote repository over the smart HTTP transport into a
// new directory: ref discovery, want/done negotiation, pack decode into the
// object store, ref and HEAD writes, and a working-tree checkout, in that
// order. All objects are stored before any ref is written; the branch ref
// is written before HEAD points at it; checkout runs last.
//
// The target directory must not exist. On failure partial state may remain;
// it is the caller's to discard.
func Clone(ctx context.Context, repoURL string, opts CloneOptions) (*CloneResult, error) {
	logger := log.FromContext(ctx)

	dir := opts.Dir
	if dir == "" {
		derived, err := DefaultDirectory(repoURL)
		if err != nil {
			return nil, err
		}
		dir = derived
	}

	if _, err := os.Stat(dir); err == nil {
		return nil, NewTargetExistsError(dir)
	}

	logger.Info("cloning", "url", repoURL, "dir", dir)

	var clientOpts []client.Option
	if opts.UserAgent != "" {
		clientOpts = append(clientOpts, client.WithUserAgent(opts.UserAgent))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(opts.HTTPClient))
	}

	c, err := client.NewRawClient(repoURL, clientOpts...)
	if err != nil {
		return nil, err
	}

	r, err := Init(dir)
	if err != nil {
		return nil, err
	}

	adv, err := c.SmartInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering refs: %w", err)
	}

	target, branch, err := cloneTarget(adv)
	if err != nil {
		return nil, err
	}

	logger.Debug("resolved clone target",
		"commit", target.String(),
		"branch", branch)

	body, err := protocol.FormatUploadPackRequest(c.UserAgent(), []hash.Hash{target})
	if err != nil {
		return nil, err
	}

	response, err := c.UploadPack(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("fetching pack: %w", err)
	}

	pack, err := protocol.DemuxPack(ctx, response)
	if err != nil {
		return nil, fmt.Errorf("fetching pack: %w", err)
	}

	unpacked, err := unpackInto(ctx, storage.NewCache(r.objects), pack)
	if err != nil {
		return nil, err
	}

	if branch != "" {
		if err := r.WriteRef(branch, target); err != nil {
			return nil, err
		}
		if err := r.SetHEADSymbolic(branch); err != nil {
			return nil, err
		}
	} else {
		if err := r.SetHEADDetached(target); err != nil {
			return nil, err
		}
	}

	if err := r.Checkout(ctx, target, dir); err != nil {
		return nil, err
	}

	result := &CloneResult{
		Path:           dir,
		Branch:         branch,
		Head:           target,
		ObjectsWritten: len(unpacked.Written),
		ObjectsSkipped: unpacked.Skipped,
	}

	logger.Info("clone complete",
		"dir", dir,
		"head", target.String(),
		"objects_written", result.ObjectsWritten,
		"objects_skipped", result.ObjectsSkipped)

	return result, nil
}

// cloneTarget picks the commit to clone from an advertisement. A symbolic
// HEAD yields its branch; a detached HEAD (direct identity) yields an empty
// branch name.
func cloneTarget(adv *protocol.Advertisement) (hash.Hash, string, error) {
	if branch, ok := adv.Symbolic("HEAD"); ok {
		if target, ok := adv.Direct(branch); ok {
			return target, branch, nil
		}
		// The symref names a branch the remote did not advertise.
		return hash.Zero, "", fmt.Errorf("%w: HEAD points at unadvertised %q", ErrNoCloneTarget, branch)
	}

	if target, ok := adv.Direct("HEAD"); ok {
		return target, "", nil
	}

	return hash.Zero, "", ErrNoCloneTarget
}

// DefaultDirectory derives a clone destination from a repository URL: the
// last path segment, minus a trailing ".git".
func DefaultDirectory(repoURL string) (string, error) {
	u, err := giturls.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("parsing repository URL: %w", err)
	}

	name := path.Base(strings.TrimRight(u.Path, "/"))
	name = strings.TrimSuffix(name, ".git")
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("cannot derive a directory name from %q", repoURL)
	}

	return name, nil
}

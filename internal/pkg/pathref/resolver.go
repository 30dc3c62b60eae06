package pathref

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	pathutil "github.com/clipforge/clipforge/internal/pkg/utils/path"
)

var (
	ErrEmptyReference = errors.New("reference is empty")

	// ErrLocalOnly is returned when a purely local path reaches the remote
	// context. Uploads happen at file-add time; by the time a remote tool
	// runs, every input must already have a remote representation.
	ErrLocalOnly = errors.New("local path has no remote representation; upload the file first")
)

// sandboxName validates a reference's file name before it is joined under a
// sandbox area. References arrive from model output, so separator and
// traversal sequences must never reach the filesystem or the remote API.
func sandboxName(ref Reference) (string, error) {
	if err := pathutil.ValidateSandboxName(ref.Name); err != nil {
		return "", fmt.Errorf("reference %q: %w", ref.Raw, err)
	}
	return ref.Name, nil
}

// Resolver maps References onto concrete addresses for a given execution
// context. Resolution is idempotent: feeding a resolved address back through
// Parse and the same context returns the identical address.
type Resolver struct {
	// SandboxRoot is the directory holding per-project sandboxes, each with
	// input/, output/ and thumbnails/ subareas.
	SandboxRoot string
}

func NewResolver(sandboxRoot string) *Resolver {
	return &Resolver{SandboxRoot: sandboxRoot}
}

// ProjectDir returns the sandbox directory of a project.
func (r *Resolver) ProjectDir(projectID uuid.UUID) string {
	return filepath.Join(r.SandboxRoot, projectID.String())
}

// AreaDir returns a sandbox subarea directory of a project.
func (r *Resolver) AreaDir(projectID uuid.UUID, area string) string {
	return filepath.Join(r.ProjectDir(projectID), area)
}

// Local resolves a reference to an absolute path inside the project sandbox.
// A reference that is already an absolute local path is returned unchanged.
// Remote URLs are mapped back through their /input/ or /output/ segment.
func (r *Resolver) Local(projectID uuid.UUID, ref Reference) (string, error) {
	if ref.IsZero() {
		return "", ErrEmptyReference
	}
	switch ref.Kind {
	case KindLocal:
		return ref.Raw, nil
	case KindSandboxInput, KindSandboxOutput:
		name, err := sandboxName(ref)
		if err != nil {
			return "", err
		}
		return filepath.Join(r.AreaDir(projectID, ref.Area), name), nil
	case KindRemoteURL:
		if ref.Area == "" || ref.Name == "" {
			return "", fmt.Errorf("remote url %q has no sandbox-relative form", ref.Raw)
		}
		name, err := sandboxName(ref)
		if err != nil {
			return "", err
		}
		return filepath.Join(r.AreaDir(projectID, ref.Area), name), nil
	default:
		return "", fmt.Errorf("unresolvable reference %q", ref.Raw)
	}
}

// Remote resolves a reference to the sandbox-relative form the remote
// backend's tool endpoint expects ("input/<name>" or "output/<name>").
func (r *Resolver) Remote(ref Reference) (string, error) {
	if ref.IsZero() {
		return "", ErrEmptyReference
	}
	switch ref.Kind {
	case KindSandboxInput, KindSandboxOutput:
		name, err := sandboxName(ref)
		if err != nil {
			return "", err
		}
		return ref.Area + "/" + name, nil
	case KindRemoteURL:
		if ref.Area == "" || ref.Name == "" {
			return "", fmt.Errorf("remote url %q has no sandbox-relative form", ref.Raw)
		}
		name, err := sandboxName(ref)
		if err != nil {
			return "", err
		}
		return ref.Area + "/" + name, nil
	case KindLocal:
		// Local sandbox paths still carry their area when they live under
		// an input/ or output/ directory; they map cleanly.
		if ref.Area != "" && ref.Name != "" {
			name, err := sandboxName(ref)
			if err != nil {
				return "", err
			}
			return ref.Area + "/" + name, nil
		}
		return "", ErrLocalOnly
	default:
		return "", fmt.Errorf("unresolvable reference %q", ref.Raw)
	}
}

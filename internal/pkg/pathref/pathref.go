package pathref

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Reference kinds
// ---------------------------------------------------------------------------

// Kind is the type discriminator for a Reference.
type Kind string

const (
	// KindLocal is an absolute path on the local filesystem.
	KindLocal Kind = "local"

	// KindSandboxInput / KindSandboxOutput are sandbox-relative paths of the
	// form "input/<name>" / "output/<name>". This is the canonical wire form:
	// both the local executor and the remote backend understand it.
	KindSandboxInput  Kind = "sandbox_input"
	KindSandboxOutput Kind = "sandbox_output"

	// KindRemoteURL is an absolute URL served by the remote backend.
	KindRemoteURL Kind = "remote_url"
)

const (
	// AreaInput / AreaOutput / AreaThumbnails are the sandbox subareas.
	AreaInput      = "input"
	AreaOutput     = "output"
	AreaThumbnails = "thumbnails"
)

// Reference is a tagged union over the path representations a media file may
// be addressed by. Conversation history and tool arguments carry whichever
// form the producing backend emitted, so every consumer goes through Parse
// before touching the filesystem or the remote API.
type Reference struct {
	Kind Kind   `json:"kind"`
	Area string `json:"area,omitempty"` // input|output for sandbox kinds
	Name string `json:"name,omitempty"` // file name within the area
	Raw  string `json:"raw"`            // original string, cache-bust stripped
}

// String returns the canonical string form of the reference.
func (r Reference) String() string {
	switch r.Kind {
	case KindSandboxInput, KindSandboxOutput:
		return r.Area + "/" + r.Name
	default:
		return r.Raw
	}
}

// IsZero reports whether the reference is empty.
func (r Reference) IsZero() bool { return r.Raw == "" && r.Name == "" }

// Parse normalizes an arbitrary path string into a Reference.
//
// Recognized shapes:
//   - "input/<name>", "output/<name>"        -> sandbox-relative
//   - "http(s)://.../input|output/<name>"    -> remote URL, Area/Name filled
//     from the inverse mapping (cache-bust query stripped)
//   - absolute filesystem path               -> local
//   - bare file name                         -> assumed to live in input/
func Parse(s string) Reference {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{}
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		raw := s
		if u, err := url.Parse(s); err == nil {
			u.RawQuery = ""
			u.Fragment = ""
			raw = u.String()
		}
		ref := Reference{Kind: KindRemoteURL, Raw: raw}
		if area, name, ok := splitSandboxPath(raw); ok {
			ref.Area = area
			ref.Name = name
		}
		return ref
	}

	trimmed := strings.TrimPrefix(s, "./")
	if strings.HasPrefix(trimmed, AreaInput+"/") {
		return Reference{Kind: KindSandboxInput, Area: AreaInput, Name: trimmed[len(AreaInput)+1:], Raw: trimmed}
	}
	if strings.HasPrefix(trimmed, AreaOutput+"/") {
		return Reference{Kind: KindSandboxOutput, Area: AreaOutput, Name: trimmed[len(AreaOutput)+1:], Raw: trimmed}
	}

	if filepath.IsAbs(s) {
		ref := Reference{Kind: KindLocal, Raw: s, Name: filepath.Base(s)}
		if area, name, ok := splitSandboxPath(s); ok {
			ref.Area = area
			ref.Name = name
		}
		return ref
	}

	// Bare name: assume it is an original upload in input/.
	return Reference{Kind: KindSandboxInput, Area: AreaInput, Name: trimmed, Raw: AreaInput + "/" + trimmed}
}

// splitSandboxPath finds the last "/input/<name>" or "/output/<name>" segment
// in a path or URL and returns the corresponding sandbox area and file name.
func splitSandboxPath(s string) (area, name string, ok bool) {
	for _, a := range []string{AreaInput, AreaOutput} {
		marker := "/" + a + "/"
		if idx := strings.LastIndex(s, marker); idx >= 0 {
			rest := s[idx+len(marker):]
			if rest != "" && !strings.Contains(rest, "/") {
				return a, rest, true
			}
		}
	}
	return "", "", false
}

// CacheBust appends a uniqueness query parameter so URL-keyed caches refetch.
func CacheBust(rawURL string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%st=%d", rawURL, sep, time.Now().UnixMilli())
}

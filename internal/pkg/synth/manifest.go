package synth

import (
	"fmt"
	"os"
	"strings"
)

// Manifest is a temporary concat-demuxer list file. The executor must call
// Close once the ffmpeg run is over, success or not, so no list files pile
// up in the sandbox.
type Manifest struct {
	path   string
	closed bool
}

// NewManifest writes a concat list file naming every input in order.
func NewManifest(dir string, inputs []string) (*Manifest, error) {
	f, err := os.CreateTemp(dir, "concat_*.txt")
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, in := range inputs {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(in, `'`, `'\''`))
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return &Manifest{path: f.Name()}, nil
}

// Path is the list file's location on disk, passed to ffmpeg as -i.
func (m *Manifest) Path() string { return m.path }

// Close removes the list file. Safe to call more than once.
func (m *Manifest) Close() error {
	if m == nil || m.closed {
		return nil
	}
	m.closed = true
	return os.Remove(m.path)
}

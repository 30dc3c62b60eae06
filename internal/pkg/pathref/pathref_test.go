package pathref

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pathutil "github.com/clipforge/clipforge/internal/pkg/utils/path"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind Kind
		area string
		file string
	}{
		{"sandbox input", "input/beach.mp4", KindSandboxInput, "input", "beach.mp4"},
		{"sandbox output", "output/trim_1.mp4", KindSandboxOutput, "output", "trim_1.mp4"},
		{"bare name assumes input", "beach.mp4", KindSandboxInput, "input", "beach.mp4"},
		{"local absolute", "/data/sandbox/p1/input/beach.mp4", KindLocal, "input", "beach.mp4"},
		{"remote input url", "https://edit.example.com/media/p1/input/beach.mp4", KindRemoteURL, "input", "beach.mp4"},
		{"remote output url", "https://edit.example.com/media/p1/output/trim_1.mp4", KindRemoteURL, "output", "trim_1.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := Parse(tt.in)
			assert.Equal(t, tt.kind, ref.Kind)
			assert.Equal(t, tt.area, ref.Area)
			assert.Equal(t, tt.file, ref.Name)
		})
	}
}

func TestParseStripsCacheBust(t *testing.T) {
	ref := Parse("https://edit.example.com/media/p1/output/scale_2.mp4?t=1712345678")
	assert.Equal(t, "https://edit.example.com/media/p1/output/scale_2.mp4", ref.Raw)
	assert.Equal(t, "scale_2.mp4", ref.Name)
}

func TestLocalResolutionIdempotent(t *testing.T) {
	r := NewResolver("/data/sandbox")
	pid := uuid.New()

	for _, in := range []string{
		"beach.mp4",
		"input/beach.mp4",
		"output/trim_1.mp4",
		"https://edit.example.com/media/x/output/trim_1.mp4",
	} {
		first, err := r.Local(pid, Parse(in))
		require.NoError(t, err, in)
		second, err := r.Local(pid, Parse(first))
		require.NoError(t, err, first)
		assert.Equal(t, first, second, "resolve(resolve(%q))", in)
	}
}

func TestRemoteResolutionIdempotent(t *testing.T) {
	r := NewResolver("/data/sandbox")

	for _, in := range []string{
		"beach.mp4",
		"input/beach.mp4",
		"output/trim_1.mp4",
		"https://edit.example.com/media/x/input/beach.mp4",
	} {
		first, err := r.Remote(Parse(in))
		require.NoError(t, err, in)
		second, err := r.Remote(Parse(first))
		require.NoError(t, err, first)
		assert.Equal(t, first, second, "resolve(resolve(%q))", in)
	}
}

func TestLocalPathsLandInSandbox(t *testing.T) {
	r := NewResolver("/data/sandbox")
	pid := uuid.New()

	got, err := r.Local(pid, Parse("output/trim_1.mp4"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data/sandbox", pid.String(), "output", "trim_1.mp4"), got)
}

func TestRemoteRejectsBareLocalPath(t *testing.T) {
	r := NewResolver("/data/sandbox")

	_, err := r.Remote(Parse("/tmp/somewhere/beach.mp4"))
	assert.ErrorIs(t, err, ErrLocalOnly)
}

func TestResolverRejectsTraversalNames(t *testing.T) {
	r := NewResolver("/data/sandbox")
	pid := uuid.New()

	for _, in := range []string{
		"../../../etc/passwd",
		"input/../secret.mp4",
		"output/..",
		"https://edit.example.com/media/x/input/..%2Fescape.mp4",
	} {
		_, err := r.Local(pid, Parse(in))
		assert.ErrorIs(t, err, pathutil.ErrPathTraversal, "Local(%q)", in)

		_, err = r.Remote(Parse(in))
		assert.ErrorIs(t, err, pathutil.ErrPathTraversal, "Remote(%q)", in)
	}
}

func TestCacheBust(t *testing.T) {
	busted := CacheBust("https://edit.example.com/media/p1/output/a.mp4")
	assert.True(t, strings.Contains(busted, "?t="))

	again := CacheBust(busted)
	assert.True(t, strings.Contains(again, "&t="))

	// Parse drops the marker again.
	assert.Equal(t, "https://edit.example.com/media/p1/output/a.mp4", Parse(busted).Raw)
}

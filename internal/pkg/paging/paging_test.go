package paging

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	id := uuid.New()
	at := time.Now().Truncate(time.Nanosecond)

	gotT, gotID, err := DecodeCursor(EncodeCursor(at, id))
	require.NoError(t, err)
	assert.True(t, at.Equal(gotT))
	assert.Equal(t, id, gotID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, c := range []string{"", "not-base64!!", "bm9fdW5kZXJzY29yZQ"} {
		_, _, err := DecodeCursor(c)
		assert.ErrorIs(t, err, ErrBadCursor, c)
	}
}

package bytecounter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type readWriter struct {
	r bytes.Buffer
	w bytes.Buffer
}

func (rw *readWriter) Read(p []byte) (int, error)  { return rw.r.Read(p) }
func (rw *readWriter) Write(p []byte) (int, error) { return rw.w.Write(p) }

func TestByteCounterTracksReadsAndWrites(t *testing.T) {
	rw := &readWriter{}
	rw.r.WriteString("hello")

	bc := New(rw, nil, nil)

	buf := make([]byte, 5)
	n, err := bc.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, uint64(5), bc.BytesReceived())

	n, err = bc.Write([]byte("world!"))
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, uint64(6), bc.BytesSent())
}

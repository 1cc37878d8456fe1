package emitter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/zipcache"
	"github.com/unkn0wn-root/zipcache/codec"
	"github.com/unkn0wn-root/zipcache/executor"
	"github.com/unkn0wn-root/zipcache/metrics"
)

var fixed = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func TestFormats(t *testing.T) {
	cases := []struct {
		name    string
		codec   codec.Codec[metrics.Event]
		framing Framing
	}{
		{"json lines", codec.JSON[metrics.Event]{}, Lines},
		{"msgpack frames", codec.Msgpack[metrics.Event]{}, LengthPrefixed},
		{"cbor frames", codec.MustCBOR[metrics.Event](true), LengthPrefixed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			s, err := New(Options{Writer: &buf, Codec: tc.codec, Framing: tc.framing, Now: func() time.Time { return fixed }})
			require.NoError(t, err)

			s.Emit("cache/zipcache/delta/requests", 2)
			s.Emit("cache/zipcache/total/evictionBytes", 34)

			got, err := Read(&buf, tc.codec, tc.framing)
			require.NoError(t, err)
			require.Len(t, got, 2)
			require.Equal(t, "cache/zipcache/delta/requests", got[0].Name)
			require.EqualValues(t, 2, got[0].Value)
			require.EqualValues(t, 34, got[1].Value)
			require.True(t, fixed.Equal(got[1].Timestamp))
			require.Zero(t, s.Failures())
		})
	}
}

func TestJSONShape(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(Options{Writer: &buf, Now: func() time.Time { return fixed }})
	require.NoError(t, err)
	s.Emit("cache/zipcache/total/requests", 7)
	require.Equal(t, `{"metric":"cache/zipcache/total/requests","value":7,"timestamp":"2025-01-02T03:04:05Z"}`+"\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteFailureIsCounted(t *testing.T) {
	s, err := New(Options{Writer: failingWriter{}})
	require.NoError(t, err)
	s.Emit("cache/zipcache/total/requests", 1)
	require.EqualValues(t, 1, s.Failures())
}

func TestReadRejectsHugeFrame(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}), nil, LengthPrefixed)
	require.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = Read(strings.NewReader("{not json}\n"), nil, Lines)
	require.Error(t, err)
}

func TestMonitorToEmitter(t *testing.T) {
	var buf bytes.Buffer
	s, err := New(Options{Writer: &buf})
	require.NoError(t, err)

	c, err := zipcache.New(zipcache.Options{Executor: executor.Direct{}})
	require.NoError(t, err)
	zipcache.NewMonitor(c, zipcache.MonitorOptions{Sink: s}).Poll()

	got, err := Read(&buf, nil, Lines)
	require.NoError(t, err)
	require.Len(t, got, 6)
}

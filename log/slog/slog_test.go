package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/zipcache"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo})
	l := New(stdslog.New(h))

	l.Debug("hidden", zipcache.Fields{"x": 1})
	require.Zero(t, buf.Len())

	l.Info("namespace purged", zipcache.Fields{"namespace": "users", "removed": 2})
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "namespace purged", rec["msg"])
	group, ok := rec["zipcache"].(map[string]any)
	require.True(t, ok, "attributes should be grouped: %v", rec)
	require.Equal(t, "users", group["namespace"])
	require.EqualValues(t, 2, group["removed"])
}

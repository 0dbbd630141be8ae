package replay

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/googleinterns/instant-motion-tracking/pkg/pose"
	"github.com/googleinterns/instant-motion-tracking/pkg/track"
	"github.com/stretchr/testify/require"
)

func TestSessionLogRoundTrip(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "session.jsonl")
	header := Header{
		StartedAt:  1700000000000,
		Intrinsics: pose.DefaultIntrinsics(),
		BoxEdge:    0.2,
		RefDepth:   -10,
	}
	w, err := NewWriter(logs.NewTestingLog(t), fn, header)
	require.NoError(t, err)

	tilted := pose.OrientationFromEuler(0.3, 0, 0)
	records := []Record{
		{PTS: 0, Message: "(sticker_id:1,sticker_anchor_x:0.25,sticker_anchor_y:0.25,sticker_rotation:0.0,sticker_scaling:1.0,sticker_render_id:0)"},
		{PTS: 33, Message: "", Orientation: tilted.RowMajor()},
		{PTS: 66, Message: "(sticker_id:1,sticker_anchor_x:0.25,sticker_anchor_y:0.25,sticker_rotation:0.5,sticker_scaling:1.2,sticker_render_id:1)"},
	}
	for i := range records {
		require.NoError(t, w.Write(&records[i]))
	}
	require.NoError(t, w.Close())

	gotHeader, gotRecords, err := ReadFile(fn)
	require.NoError(t, err)
	require.Equal(t, sessionLogVersion, gotHeader.Version)
	require.Equal(t, header.Intrinsics, gotHeader.Intrinsics)
	require.Equal(t, header.BoxEdge, gotHeader.BoxEdge)
	require.Equal(t, records, gotRecords)

	// Zero orientation decodes as identity, recorded orientation round-trips
	require.Equal(t, pose.IdentityOrientation().Mat3(), gotRecords[0].DeviceOrientation().Mat3())
	back := gotRecords[1].DeviceOrientation().Mat3()
	want := tilted.Mat3()
	for i := 0; i < 9; i++ {
		require.InDelta(t, want[i], back[i], 1e-6)
	}
}

func TestSessionLogBadVersion(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "old.jsonl")
	require.NoError(t, os.WriteFile(fn, []byte("{\"version\":99}\n"), 0644))
	_, _, err := ReadFile(fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "version")
}

func TestSessionLogEmptyFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "empty.jsonl")
	require.NoError(t, os.WriteFile(fn, nil, 0644))
	_, _, err := ReadFile(fn)
	require.Error(t, err)
}

func TestCollectorSummary(t *testing.T) {
	c := NewCollector()
	c.Add(2, []track.Anchor{{StickerID: 1, Scale: 1}, {StickerID: 2, Scale: 1}})
	c.Add(0, []track.Anchor{{StickerID: 1, Scale: 1.5}})
	c.Add(0, []track.Anchor{{StickerID: 1, Scale: 2}, {StickerID: 2, Scale: 0.5}})
	c.Add(1, nil)
	c.Add(0, nil)

	sum := c.Summary()
	require.Equal(t, 5, sum.Frames)
	require.InDelta(t, 0.6, sum.MeanCommands, 1e-9)
	require.InDelta(t, 0.0, sum.MedianCommands, 1e-9)
	require.InDelta(t, 2.0, sum.P95Commands, 1e-9)
	require.InDelta(t, 1.0, sum.MeanAnchors, 1e-9)
	require.Equal(t, []ScaleDrift{
		{StickerID: 1, First: 1, Last: 2},
		{StickerID: 2, First: 1, Last: 0.5},
	}, sum.Drift)
}

func TestCollectorEmpty(t *testing.T) {
	sum := NewCollector().Summary()
	require.Equal(t, 0, sum.Frames)
	require.Empty(t, sum.Drift)
}

func TestRenderReport(t *testing.T) {
	c := NewCollector()
	c.Add(2, []track.Anchor{{StickerID: 1, Scale: 1}})
	c.Add(0, []track.Anchor{{StickerID: 1, Scale: 1.2}})

	buf := bytes.Buffer{}
	require.NoError(t, RenderReport(&buf, "test session", c))
	html := buf.String()
	require.True(t, strings.Contains(html, "Tracker commands per frame"))
	require.True(t, strings.Contains(html, "Anchor scale drift"))
}

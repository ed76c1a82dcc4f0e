package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedH1998/onbored-sub001/models"
)

func replay(t int, ts int64, data string) models.ReplayEvent {
	ev := models.ReplayEvent{Type: t, Timestamp: ts}
	if data != "" {
		ev.Data = json.RawMessage(data)
	}
	return ev
}

func TestSummarizeReplayEmpty(t *testing.T) {
	s := SummarizeReplay(nil)
	assert.True(t, s.Empty())
	assert.Equal(t, "", s.Text())
}

func TestSummarizeReplayDropsDOMNoise(t *testing.T) {
	s := SummarizeReplay([]models.ReplayEvent{
		replay(0, 100, ""),
		replay(1, 110, ""),
		replay(2, 120, `{"node":{"type":0}}`),
		replay(3, 130, `{"source":0,"adds":[],"removes":[]}`),
		replay(3, 140, `{"source":1,"positions":[{"x":1,"y":2}]}`),
		replay(3, 150, `{"source":2,"type":1,"id":4}`), // mouse down
	})
	assert.True(t, s.Empty())
	assert.Equal(t, int64(50), s.DurationMs)
}

func TestSummarizeReplayKeepsInteractionsInTimeOrder(t *testing.T) {
	s := SummarizeReplay([]models.ReplayEvent{
		replay(3, 5000, `{"source":5,"id":12,"text":"héllo"}`),
		replay(4, 1000, `{"href":"https://app.example.com/start","width":1280,"height":800}`),
		replay(3, 2000, `{"source":2,"type":2,"id":9,"x":30,"y":40}`),
		replay(3, 3000, `{"source":4,"width":800,"height":600}`),
		replay(5, 4000, `{"tag":"step_completed","payload":{}}`),
		replay(3, 6000, `{"source":5,"id":13,"isChecked":true}`),
		replay(3, 65500, `{"source":2,"type":4,"id":9,"x":30,"y":40}`),
	})

	require.Len(t, s.Events, 7)
	kinds := make([]string, len(s.Events))
	for i, e := range s.Events {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []string{"navigate", "click", "resize", "custom", "input", "input", "double_click"}, kinds)
	assert.Equal(t, int64(0), s.Events[0].OffsetMs)
	assert.Equal(t, "node=12 chars=5", s.Events[4].Detail)
	assert.Equal(t, "node=13 checked=true", s.Events[5].Detail)
	assert.Equal(t, int64(64500), s.DurationMs)

	text := s.Text()
	assert.Contains(t, text, "[00:00.0] navigate https://app.example.com/start\n")
	assert.Contains(t, text, "[00:01.0] click node=9 at (30,40)\n")
	assert.Contains(t, text, "[01:04.5] double_click node=9 at (30,40)\n")
	assert.NotContains(t, text, "héllo", "typed text is not forwarded")
}

func TestSummarizeReplayCollapsesScrollRuns(t *testing.T) {
	s := SummarizeReplay([]models.ReplayEvent{
		replay(3, 0, `{"source":3,"id":1,"x":0,"y":100}`),
		replay(3, 50, `{"source":3,"id":1,"x":0,"y":200}`),
		replay(3, 90, `{"source":3,"id":1,"x":0,"y":300}`),
		replay(3, 120, `{"source":3,"id":2,"x":0,"y":10}`),
		replay(3, 150, `{"source":2,"type":2,"id":5,"x":1,"y":1}`),
		replay(3, 200, `{"source":3,"id":2,"x":0,"y":20}`),
	})

	require.Len(t, s.Events, 4)
	assert.Equal(t, models.InteractionEvent{OffsetMs: 0, Kind: "scroll", Detail: "node=1 to (0,300)"}, s.Events[0])
	assert.Equal(t, "node=2 to (0,10)", s.Events[1].Detail)
	assert.Equal(t, "click", s.Events[2].Kind)
	assert.Equal(t, "node=2 to (0,20)", s.Events[3].Detail)
}

func TestSummarizeReplayIgnoresMalformedData(t *testing.T) {
	s := SummarizeReplay([]models.ReplayEvent{
		replay(3, 0, `not json`),
		replay(4, 10, `{"width":10}`),
		replay(5, 20, `{}`),
	})
	assert.True(t, s.Empty())
}

func TestSummarizeReplayDoesNotMutateInput(t *testing.T) {
	in := []models.ReplayEvent{
		replay(3, 200, `{"source":2,"type":2,"id":1}`),
		replay(3, 100, `{"source":2,"type":2,"id":2}`),
	}
	SummarizeReplay(in)
	assert.Equal(t, int64(200), in[0].Timestamp)
}

func TestReplaySummaryTextRoundsAcrossMinute(t *testing.T) {
	tests := []struct {
		offset int64
		want   string
	}{
		{0, "[00:00.0] click\n"},
		{1449, "[00:01.4] click\n"},
		{59940, "[00:59.9] click\n"},
		{59960, "[01:00.0] click\n"},
		{119999, "[02:00.0] click\n"},
		{600000, "[10:00.0] click\n"},
	}
	for _, tt := range tests {
		s := ReplaySummary{Events: []models.InteractionEvent{{OffsetMs: tt.offset, Kind: "click"}}}
		assert.Equal(t, tt.want, s.Text(), "offset %d", tt.offset)
	}
}

package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/MohamedH1998/onbored-sub001/models"
)

// rrweb event types.
const (
	replayDomContentLoaded = 0
	replayLoad             = 1
	replayFullSnapshot     = 2
	replayIncremental      = 3
	replayMeta             = 4
	replayCustom           = 5
)

// rrweb incremental snapshot sources.
const (
	sourceMutation         = 0
	sourceMouseMove        = 1
	sourceMouseInteraction = 2
	sourceScroll           = 3
	sourceViewportResize   = 4
	sourceInput            = 5
)

var mouseInteractions = map[int]string{
	2: "click",
	3: "context_menu",
	4: "double_click",
	7: "touch_start",
	9: "touch_end",
}

// ReplaySummary is the compact interaction timeline of one recording.
type ReplaySummary struct {
	Events     []models.InteractionEvent `json:"events"`
	DurationMs int64                     `json:"durationMs"`
}

func (s ReplaySummary) Empty() bool {
	return len(s.Events) == 0
}

// Text renders one "[mm:ss.s] kind detail" line per interaction.
func (s ReplaySummary) Text() string {
	var b strings.Builder
	for _, e := range s.Events {
		tenths := (e.OffsetMs + 50) / 100
		mins, rem := tenths/600, tenths%600
		fmt.Fprintf(&b, "[%02d:%02d.%d] %s", mins, rem/10, rem%10, e.Kind)
		if e.Detail != "" {
			b.WriteString(" ")
			b.WriteString(e.Detail)
		}
		b.WriteString("\n")
	}
	return b.String()
}

type incrementalData struct {
	Source    int    `json:"source"`
	Type      int    `json:"type"`
	ID        int    `json:"id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Text      string `json:"text"`
	IsChecked *bool  `json:"isChecked"`
}

type metaData struct {
	Href string `json:"href"`
}

type customData struct {
	Tag string `json:"tag"`
}

// SummarizeReplay keeps user-meaningful actions from a raw recording and
// drops DOM bookkeeping (loads, snapshots, mutations, pointer movement).
// Order follows event timestamps; ties keep their recorded order.
func SummarizeReplay(events []models.ReplayEvent) ReplaySummary {
	if len(events) == 0 {
		return ReplaySummary{}
	}

	sorted := make([]models.ReplayEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	base := sorted[0].Timestamp

	var out []models.InteractionEvent
	lastScrollTarget := -1
	for _, ev := range sorted {
		kind, detail, scrollTarget, ok := interpret(ev)
		if !ok {
			continue
		}
		offset := ev.Timestamp - base
		if scrollTarget >= 0 && scrollTarget == lastScrollTarget && len(out) > 0 {
			// Collapse a scroll run into its latest position.
			out[len(out)-1].Detail = detail
			continue
		}
		lastScrollTarget = scrollTarget
		out = append(out, models.InteractionEvent{OffsetMs: offset, Kind: kind, Detail: detail})
	}

	return ReplaySummary{
		Events:     out,
		DurationMs: sorted[len(sorted)-1].Timestamp - base,
	}
}

// IsInteraction reports whether SummarizeReplay would keep the event.
func IsInteraction(ev models.ReplayEvent) bool {
	_, _, _, ok := interpret(ev)
	return ok
}

// interpret classifies one event. scrollTarget is the scrolled node id for
// scroll events and -1 otherwise.
func interpret(ev models.ReplayEvent) (kind, detail string, scrollTarget int, ok bool) {
	scrollTarget = -1
	switch ev.Type {
	case replayMeta:
		var m metaData
		if err := json.Unmarshal(ev.Data, &m); err != nil || m.Href == "" {
			return "", "", scrollTarget, false
		}
		return "navigate", m.Href, scrollTarget, true

	case replayCustom:
		var c customData
		if err := json.Unmarshal(ev.Data, &c); err != nil || c.Tag == "" {
			return "", "", scrollTarget, false
		}
		return "custom", c.Tag, scrollTarget, true

	case replayIncremental:
		var d incrementalData
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return "", "", scrollTarget, false
		}
		switch d.Source {
		case sourceMouseInteraction:
			name, known := mouseInteractions[d.Type]
			if !known {
				return "", "", scrollTarget, false
			}
			return name, fmt.Sprintf("node=%d at (%d,%d)", d.ID, d.X, d.Y), scrollTarget, true
		case sourceScroll:
			return "scroll", fmt.Sprintf("node=%d to (%d,%d)", d.ID, d.X, d.Y), d.ID, true
		case sourceViewportResize:
			return "resize", fmt.Sprintf("%dx%d", d.Width, d.Height), scrollTarget, true
		case sourceInput:
			if d.IsChecked != nil && d.Text == "" {
				return "input", fmt.Sprintf("node=%d checked=%t", d.ID, *d.IsChecked), scrollTarget, true
			}
			// Typed values are never forwarded, only their length.
			return "input", fmt.Sprintf("node=%d chars=%d", d.ID, len([]rune(d.Text))), scrollTarget, true
		}
	}
	return "", "", scrollTarget, false
}

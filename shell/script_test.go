package shell

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/native-bridge/bridge"
	"github.com/wippyai/native-bridge/errors"
)

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []bridge.Event
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"spaces", "create resume pause", []bridge.Event{bridge.EventCreate, bridge.EventResume, bridge.EventPause}, false},
		{"commas", "create,resume, destroy", []bridge.Event{bridge.EventCreate, bridge.EventResume, bridge.EventDestroy}, false},
		{"callback names", "onCreate onDestroy", []bridge.Event{bridge.EventCreate, bridge.EventDestroy}, false},
		{
			"lines and comments",
			"# launch\ncreate\n\tresume # foreground\n\n# leave\ndestroy\n",
			[]bridge.Event{bridge.EventCreate, bridge.EventResume, bridge.EventDestroy},
			false,
		},
		{"unknown", "create explode", nil, true},
		{"load is not a host event", "load", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEvents(strings.NewReader(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEvents() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseEvents() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseEvents_ReportsLine(t *testing.T) {
	_, err := ParseEvents(strings.NewReader("create\nresume\nspin\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.True(t, errors.Is(err, &errors.Error{Phase: errors.PhaseShell, Kind: errors.KindInvalidInput}))
}

func TestReplay(t *testing.T) {
	ctx := context.Background()
	rt := &fakeRuntime{}
	b := bridge.New(staticLoader(rt, nil))
	require.True(t, b.AttemptLoad(ctx, "gui").OK())

	events, err := ParseEvents(strings.NewReader("create resume pause resume destroy destroy"))
	require.NoError(t, err)

	records := Replay(ctx, b, events)
	require.Len(t, records, len(events))

	var to []bridge.State
	var ignored []bool
	for _, r := range records {
		to = append(to, r.To)
		ignored = append(ignored, r.Ignored)
	}
	assert.Equal(t, []bridge.State{
		bridge.StateInitialized,
		bridge.StateRunning,
		bridge.StatePaused,
		bridge.StateRunning,
		bridge.StateDestroyed,
		bridge.StateDestroyed,
	}, to)
	assert.Equal(t, []bool{false, false, false, false, false, true}, ignored)
	assert.Equal(t, []bridge.Call{bridge.CallInit, bridge.CallCleanup}, rt.calls())
}

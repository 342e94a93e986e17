package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wippyai/native-bridge/bridge"
	"github.com/wippyai/native-bridge/errors"
)

// ParseEvents reads a lifecycle script: host event names separated by
// whitespace, commas or newlines. Text after '#' on a line is a comment.
//
//	# rotate the device
//	create resume
//	pause, resume
//	destroy
func ParseEvents(r io.Reader) ([]bridge.Event, error) {
	var events []bridge.Event
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		for _, f := range fields {
			ev, err := bridge.ParseEvent(f)
			if err != nil {
				return nil, errors.New(errors.PhaseShell, errors.KindInvalidInput).
					Detail("line %d: unknown lifecycle event %q", line, f).
					Cause(err).
					Build()
			}
			events = append(events, ev)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lifecycle script: %w", err)
	}
	return events, nil
}

// Replay delivers events to b in order and returns one record per event.
func Replay(ctx context.Context, b *bridge.Bridge, events []bridge.Event) []bridge.Record {
	records := make([]bridge.Record, 0, len(events))
	for _, ev := range events {
		records = append(records, b.Deliver(ctx, ev))
	}
	return records
}

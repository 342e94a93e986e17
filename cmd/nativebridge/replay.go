package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/wippyai/native-bridge/bridge"
	"github.com/wippyai/native-bridge/errors"
	"github.com/wippyai/native-bridge/shell"
)

func newReplayCmd(a *app) *cobra.Command {
	var (
		events string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "replay [library]",
		Short: "Deliver a scripted sequence of lifecycle events and print what happened",
		Example: `  nativebridge replay --events "create resume pause resume destroy"
  nativebridge replay Game --file rotate.events`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader
			switch {
			case events != "" && file != "":
				return errors.InvalidInput(errors.PhaseShell, "use either --events or --file")
			case events != "":
				src = strings.NewReader(events)
			case file != "":
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			default:
				return errors.InvalidInput(errors.PhaseShell, "no events: pass --events or --file")
			}

			script, err := shell.ParseEvents(src)
			if err != nil {
				return err
			}
			return a.replay(cmd.Context(), cmd.OutOrStdout(), a.library(args), script)
		},
	}

	cmd.Flags().StringVar(&events, "events", "", "events to deliver, e.g. \"create resume pause destroy\"")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read events from a script file")
	return cmd
}

func (a *app) replay(ctx context.Context, w io.Writer, library string, script []bridge.Event) error {
	a.banner(library)

	var records []bridge.Record
	b := bridge.New(shell.NativeLoader(a.loader()), bridge.WithObserver(func(r bridge.Record) {
		records = append(records, r)
	}))

	b.AttemptLoad(ctx, library)
	shell.Replay(ctx, b, script)

	table := tablewriter.NewWriter(w)
	table.Header("#", "Event", "From", "To", "Native", "Result")
	for i, r := range records {
		if err := table.Append(
			fmt.Sprint(i+1),
			r.Event.String(),
			r.From.String(),
			r.To.String(),
			formatCalls(r.Calls),
			formatResult(r),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nFinal state: %s", b.State())
	if b.Degraded() {
		fmt.Fprint(w, " (degraded)")
	}
	fmt.Fprintln(w)
	if b.HandleValid() {
		fmt.Fprintln(w, "Bridge not destroyed: native cleanup was not called.")
	}
	return nil
}

func formatCalls(calls []bridge.Call) string {
	if len(calls) == 0 {
		return "-"
	}
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = string(c)
	}
	return strings.Join(out, ", ")
}

func formatResult(r bridge.Record) string {
	switch {
	case r.Ignored:
		return "ignored"
	case r.Err != nil && r.Event == bridge.EventLoad:
		return "load failed: " + r.Err.Error()
	case r.Err != nil:
		return "native failure: " + r.Err.Error()
	default:
		return "ok"
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/wippyai/native-bridge/native"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [library]",
		Short: "Show a library's entry points, exports and imports without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.inspect(cmd.Context(), cmd.OutOrStdout(), a.library(args))
		},
	}
}

func (a *app) inspect(ctx context.Context, w io.Writer, library string) error {
	m, err := a.loader().Inspect(ctx, library)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Library: %s\nPath:    %s\n\n", m.Library, m.Path)

	entries := tablewriter.NewWriter(w)
	entries.Header("Entry point", "Present", "Callable")
	for _, ep := range m.EntryPoints {
		if err := entries.Append(ep.Symbol, yesNo(ep.Present), yesNo(ep.Callable)); err != nil {
			return err
		}
	}
	if err := entries.Render(); err != nil {
		return err
	}

	for _, section := range []struct {
		title string
		funcs []native.Function
	}{
		{"Exports", m.Exports},
		{"Imports", m.Imports},
	} {
		fmt.Fprintf(w, "\n%s:\n", section.title)
		if len(section.funcs) == 0 {
			fmt.Fprintln(w, "  (none)")
			continue
		}
		t := tablewriter.NewWriter(w)
		t.Header("Module", "Name", "Params", "Results")
		for _, f := range section.funcs {
			if err := t.Append(f.Module, f.Name, strings.Join(f.Params, " "), strings.Join(f.Results, " ")); err != nil {
				return err
			}
		}
		if err := t.Render(); err != nil {
			return err
		}
	}

	if m.Loadable() {
		fmt.Fprintln(w, "\nLoadable: yes")
	} else {
		fmt.Fprintln(w, "\nLoadable: no (the bridge would run degraded)")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/native-bridge/bridge"
	"github.com/wippyai/native-bridge/shell"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [library]",
		Short: "Launch the host shell and keep it running until finished",
		Long: `Load the native library, deliver create and resume, and keep the runtime
alive until interrupted. SIGUSR1 pauses and SIGUSR2 resumes; SIGINT and SIGTERM
finish (pause, destroy). A missing or invalid library is logged and the shell
keeps running without native code.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), a.library(args))
		},
	}

	cmd.Flags().BoolP("interactive", "i", false, "interactive mode with TUI")
	cmd.Flags().String("status-addr", "", "serve /status, /metrics, /live and /ready on this address")
	_ = a.v.BindPFlag("shell.interactive", cmd.Flags().Lookup("interactive"))
	_ = a.v.BindPFlag("status.addr", cmd.Flags().Lookup("status-addr"))
	return cmd
}

func (a *app) run(ctx context.Context, library string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interactive := a.cfg.Shell.Interactive
	if interactive && !term.IsTerminal(int(os.Stdin.Fd())) {
		a.log.Warn("stdin is not a terminal, running without TUI")
		interactive = false
	}
	if interactive {
		// the TUI owns the terminal
		a.installLogger(zap.NewNop())
	}
	a.banner(library)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := bridge.MustNewMetrics(reg)
	status := shell.NewStatus(library)

	loader := a.loader()
	b := bridge.New(shell.NativeLoader(loader),
		bridge.WithMetrics(metrics),
		bridge.WithObserver(status.Observe))
	sh := shell.New(b, library)
	loader.Hosts().SetExitHandler(func(string) { sh.Finish() })

	if addr := a.cfg.Status.Addr; addr != "" {
		srv := shell.NewServer(status, reg, reg)
		go func() {
			if err := srv.Serve(ctx, addr); err != nil {
				a.log.Error("status server stopped", zap.String("addr", addr), zap.Error(err))
			}
		}()
	}

	var err error
	if interactive {
		err = shell.RunInteractive(ctx, sh, status, tea.WithAltScreen())
	} else {
		shell.Signals(ctx, sh)
		err = sh.Run(ctx)
	}

	snap := status.Snapshot()
	a.log.Info("native bridge finished",
		zap.String("session", snap.Session),
		zap.Stringer("state", snap.State),
		zap.Bool("degraded", snap.Degraded),
		zap.Int("events", snap.Events))
	return err
}

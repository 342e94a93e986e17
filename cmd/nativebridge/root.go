package main

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/native-bridge/bridge"
	"github.com/wippyai/native-bridge/config"
	"github.com/wippyai/native-bridge/native"
	"github.com/wippyai/native-bridge/shell"
)

var version = "dev"

type app struct {
	v       *viper.Viper
	cfg     *config.Config
	log     *zap.Logger
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "nativebridge",
		Short:         "Host a native application runtime through its lifecycle",
		Long:          `nativebridge loads a native runtime (a WebAssembly module exporting init, run and cleanup) and drives it through host lifecycle events.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		newRunCmd(a),
		newReplayCmd(a),
		newInspectCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads configuration and installs the logger into every package.
func (a *app) setup() error {
	if err := config.Read(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Decode(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := cfg.Log.Logger(zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	a.installLogger(log)
	return nil
}

func (a *app) installLogger(log *zap.Logger) {
	a.log = log
	native.SetLogger(log.Named("native"))
	bridge.SetLogger(log.Named("bridge"))
	shell.SetLogger(log.Named("shell"))
}

// banner logs what is being hosted, like a build tool announcing itself.
func (a *app) banner(library string) {
	host, _ := os.Hostname()
	a.log.Info("native bridge starting",
		zap.String("version", version),
		zap.String("host", host),
		zap.String("go", runtime.Version()),
		zap.String("platform", runtime.GOOS+"/"+runtime.GOARCH),
		zap.String("library", library))
}

func (a *app) library(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Library.Name
}

func (a *app) loader() *native.Loader {
	return native.NewLoader(&native.Config{
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Paths:            a.cfg.Library.Paths,
		Retries:          uint64(a.cfg.Load.Retries),
		RetryInterval:    a.cfg.Load.Interval,
		MemoryLimitPages: a.cfg.Library.MemoryLimitPages,
		WASI:             a.cfg.Library.WASI,
	})
}

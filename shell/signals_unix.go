//go:build unix

package shell

import (
	"os"
	"syscall"

	"github.com/wippyai/native-bridge/bridge"
)

// SIGUSR1 and SIGUSR2 stand in for the platform moving the app to the
// background and back.
var signalEvents = map[os.Signal]bridge.Event{
	syscall.SIGUSR1: bridge.EventPause,
	syscall.SIGUSR2: bridge.EventResume,
}

var finishSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

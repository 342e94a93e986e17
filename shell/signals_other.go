//go:build !unix

package shell

import (
	"os"

	"github.com/wippyai/native-bridge/bridge"
)

var signalEvents = map[os.Signal]bridge.Event{}

var finishSignals = []os.Signal{os.Interrupt}

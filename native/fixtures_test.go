package native

import (
	"os"
	"path/filepath"
	"testing"
)

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func module(sections ...[]byte) []byte {
	out := append([]byte(nil), wasmHeader...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

// minimalRuntime exports init, run and cleanup, all () -> () with empty bodies.
var minimalRuntime = module(
	[]byte{0x01, 0x04, 0x01, 0x60, 0x00, 0x00},
	[]byte{0x03, 0x04, 0x03, 0x00, 0x00, 0x00},
	[]byte{0x07, 0x18, 0x03,
		0x04, 'i', 'n', 'i', 't', 0x00, 0x00,
		0x03, 'r', 'u', 'n', 0x00, 0x01,
		0x07, 'c', 'l', 'e', 'a', 'n', 'u', 'p', 0x00, 0x02},
	[]byte{0x0a, 0x0a, 0x03,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b},
)

// tracingRuntime imports env.trace(i32) and calls it with 1, 2 or 3 from
// init, run and cleanup respectively.
var tracingRuntime = module(
	[]byte{0x01, 0x08, 0x02, 0x60, 0x00, 0x00, 0x60, 0x01, 0x7f, 0x00},
	[]byte{0x02, 0x0d, 0x01, 0x03, 'e', 'n', 'v', 0x05, 't', 'r', 'a', 'c', 'e', 0x00, 0x01},
	[]byte{0x03, 0x04, 0x03, 0x00, 0x00, 0x00},
	[]byte{0x07, 0x18, 0x03,
		0x04, 'i', 'n', 'i', 't', 0x00, 0x01,
		0x03, 'r', 'u', 'n', 0x00, 0x02,
		0x07, 'c', 'l', 'e', 'a', 'n', 'u', 'p', 0x00, 0x03},
	[]byte{0x0a, 0x16, 0x03,
		0x06, 0x00, 0x41, 0x01, 0x10, 0x00, 0x0b,
		0x06, 0x00, 0x41, 0x02, 0x10, 0x00, 0x0b,
		0x06, 0x00, 0x41, 0x03, 0x10, 0x00, 0x0b},
)

// initOnlyRuntime exports init but neither run nor cleanup.
var initOnlyRuntime = module(
	[]byte{0x01, 0x04, 0x01, 0x60, 0x00, 0x00},
	[]byte{0x03, 0x02, 0x01, 0x00},
	[]byte{0x07, 0x08, 0x01, 0x04, 'i', 'n', 'i', 't', 0x00, 0x00},
	[]byte{0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b},
)

// badSignatureRuntime exports init taking an i32.
var badSignatureRuntime = module(
	[]byte{0x01, 0x08, 0x02, 0x60, 0x00, 0x00, 0x60, 0x01, 0x7f, 0x00},
	[]byte{0x03, 0x04, 0x03, 0x01, 0x00, 0x00},
	[]byte{0x07, 0x18, 0x03,
		0x04, 'i', 'n', 'i', 't', 0x00, 0x00,
		0x03, 'r', 'u', 'n', 0x00, 0x01,
		0x07, 'c', 'l', 'e', 'a', 'n', 'u', 'p', 0x00, 0x02},
	[]byte{0x0a, 0x0a, 0x03,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b},
)

// trappingRuntime traps in cleanup.
var trappingRuntime = module(
	[]byte{0x01, 0x04, 0x01, 0x60, 0x00, 0x00},
	[]byte{0x03, 0x04, 0x03, 0x00, 0x00, 0x00},
	[]byte{0x07, 0x18, 0x03,
		0x04, 'i', 'n', 'i', 't', 0x00, 0x00,
		0x03, 'r', 'u', 'n', 0x00, 0x01,
		0x07, 'c', 'l', 'e', 'a', 'n', 'u', 'p', 0x00, 0x02},
	[]byte{0x0a, 0x0b, 0x03,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b,
		0x03, 0x00, 0x00, 0x0b},
)

// loggingRuntime writes "hi" through host.log from init.
var loggingRuntime = module(
	[]byte{0x01, 0x09, 0x02, 0x60, 0x00, 0x00, 0x60, 0x02, 0x7f, 0x7f, 0x00},
	[]byte{0x02, 0x0c, 0x01, 0x04, 'h', 'o', 's', 't', 0x03, 'l', 'o', 'g', 0x00, 0x01},
	[]byte{0x03, 0x04, 0x03, 0x00, 0x00, 0x00},
	[]byte{0x05, 0x03, 0x01, 0x00, 0x01},
	[]byte{0x07, 0x18, 0x03,
		0x04, 'i', 'n', 'i', 't', 0x00, 0x01,
		0x03, 'r', 'u', 'n', 0x00, 0x02,
		0x07, 'c', 'l', 'e', 'a', 'n', 'u', 'p', 0x00, 0x03},
	[]byte{0x0a, 0x10, 0x03,
		0x08, 0x00, 0x41, 0x00, 0x41, 0x02, 0x10, 0x00, 0x0b,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b},
	[]byte{0x0b, 0x08, 0x01, 0x00, 0x41, 0x00, 0x0b, 0x02, 'h', 'i'},
)

// exitRuntime calls host.request_exit from init.
var exitRuntime = module(
	[]byte{0x01, 0x04, 0x01, 0x60, 0x00, 0x00},
	[]byte{0x02, 0x15, 0x01,
		0x04, 'h', 'o', 's', 't',
		0x0c, 'r', 'e', 'q', 'u', 'e', 's', 't', '_', 'e', 'x', 'i', 't',
		0x00, 0x00},
	[]byte{0x03, 0x04, 0x03, 0x00, 0x00, 0x00},
	[]byte{0x07, 0x18, 0x03,
		0x04, 'i', 'n', 'i', 't', 0x00, 0x01,
		0x03, 'r', 'u', 'n', 0x00, 0x02,
		0x07, 'c', 'l', 'e', 'a', 'n', 'u', 'p', 0x00, 0x03},
	[]byte{0x0a, 0x0c, 0x03,
		0x04, 0x00, 0x10, 0x00, 0x0b,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b},
)

// reactorRuntime exports _initialize, which sets a global, and an init that
// traps unless the global is set.
var reactorRuntime = module(
	[]byte{0x01, 0x04, 0x01, 0x60, 0x00, 0x00},
	[]byte{0x03, 0x05, 0x04, 0x00, 0x00, 0x00, 0x00},
	[]byte{0x06, 0x06, 0x01, 0x7f, 0x01, 0x41, 0x00, 0x0b},
	[]byte{0x07, 0x26, 0x04,
		0x0b, '_', 'i', 'n', 'i', 't', 'i', 'a', 'l', 'i', 'z', 'e', 0x00, 0x00,
		0x04, 'i', 'n', 'i', 't', 0x00, 0x01,
		0x03, 'r', 'u', 'n', 0x00, 0x02,
		0x07, 'c', 'l', 'e', 'a', 'n', 'u', 'p', 0x00, 0x03},
	[]byte{0x0a, 0x18, 0x04,
		0x06, 0x00, 0x41, 0x01, 0x24, 0x00, 0x0b,
		0x09, 0x00, 0x23, 0x00, 0x45, 0x04, 0x40, 0x00, 0x0b, 0x0b,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b},
)

// brokenReactorRuntime traps in _initialize.
var brokenReactorRuntime = module(
	[]byte{0x01, 0x04, 0x01, 0x60, 0x00, 0x00},
	[]byte{0x03, 0x05, 0x04, 0x00, 0x00, 0x00, 0x00},
	[]byte{0x07, 0x26, 0x04,
		0x0b, '_', 'i', 'n', 'i', 't', 'i', 'a', 'l', 'i', 'z', 'e', 0x00, 0x00,
		0x04, 'i', 'n', 'i', 't', 0x00, 0x01,
		0x03, 'r', 'u', 'n', 0x00, 0x02,
		0x07, 'c', 'l', 'e', 'a', 'n', 'u', 'p', 0x00, 0x03},
	[]byte{0x0a, 0x0e, 0x04,
		0x03, 0x00, 0x00, 0x0b,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b,
		0x02, 0x00, 0x0b},
)

func writeLibrary(t *testing.T, dir, file string, wasm []byte) string {
	t.Helper()
	p := filepath.Join(dir, file)
	if err := os.WriteFile(p, wasm, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// Command nativebridge hosts a native application runtime behind the
// lifecycle bridge.
//
// Usage:
//
//	nativebridge run [library] [-i]
//	nativebridge replay [library] --events "create resume pause destroy"
//	nativebridge inspect [library]
//	nativebridge config
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

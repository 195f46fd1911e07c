// signalbot - multi-timeframe pivot signal bot for crypto pairs
package main

import (
	"fmt"
	"os"
)

// version はビルド時に -ldflags "-X main.version=..." で上書きします。
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

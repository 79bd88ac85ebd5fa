//go:build !windows

package main

import (
	"os"
	"syscall"
)

// terminationSignals are the signals that stop the server gracefully.
// Process managers such as systemd and kubernetes send SIGTERM.
var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

var ignoreSignals = []os.Signal{
	unix.SIGPIPE,
	unix.SIGTTIN,
	unix.SIGTTOU,
	unix.SIGTSTP,
}

var hangupSignals = []os.Signal{
	unix.SIGINT,
	unix.SIGTERM,
	unix.SIGHUP,
}

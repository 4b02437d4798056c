//go:build unix

package blockprof

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// maxRSS returns the highest resident set size of the process since it
// started, as accounted by the kernel.
func maxRSS() (uint64, bool) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, false
	}

	n := uint64(ru.Maxrss)
	// bytes on darwin, kilobytes everywhere else
	if runtime.GOOS != "darwin" && runtime.GOOS != "ios" {
		n *= 1024
	}
	return n, true
}

//go:build !unix

package blockprof

func maxRSS() (uint64, bool) {
	return 0, false
}

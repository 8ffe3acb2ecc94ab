package crypto

import "runtime"

// Wipe overwrites b with zeros. It is used to destroy key material when a
// session locks.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	// keep the writes from being optimised away
	runtime.KeepAlive(b)
}

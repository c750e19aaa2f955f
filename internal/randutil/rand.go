// Package randutil derives reproducible random sources for dealing hands.
package randutil

import rand "math/rand/v2"

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from seed. Every deck in
// the module is shuffled from a source built here, so equal seeds deal equal
// hands.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// ForWorker returns an independent source for one of several workers sharing
// a run seed. The result does not depend on how many workers there are.
func ForWorker(seed int64, worker int) *rand.Rand {
	return New(int64(mix(uint64(seed) ^ mix(uint64(worker)+goldenRatio64))))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

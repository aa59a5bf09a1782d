// Package id generates identifiers for transformation runs.
package id

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"
)

// RunPrefix marks identifiers produced by Run.
const RunPrefix = "run_"

// crockford is Crockford's Base32 alphabet (no I, L, O, U).
const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	mu      sync.Mutex
	lastMs  int64
	counter uint16
)

// Run returns a new transformation run identifier: RunPrefix followed by a
// ULID, so run ids sort by start time in log output.
func Run() string {
	return RunPrefix + ULID()
}

// RunTime reports when the run with the given identifier started.
func RunTime(run string) (time.Time, error) {
	if !strings.HasPrefix(run, RunPrefix) {
		return time.Time{}, fmt.Errorf("invalid run id: %s", run)
	}
	return ULIDTime(strings.TrimPrefix(run, RunPrefix))
}

// ULID generates a 26-character Universally Unique Lexicographically
// Sortable Identifier: 10 characters of millisecond timestamp followed by 16
// characters of randomness.
func ULID() string {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UnixMilli()
	if now == lastMs {
		counter++
		if counter == 0 {
			for now == lastMs {
				time.Sleep(time.Millisecond)
				now = time.Now().UnixMilli()
			}
			lastMs = now
		}
	} else {
		lastMs = now
		counter = 0
	}

	return encode(now, counter)
}

func encode(ms int64, seq uint16) string {
	out := make([]byte, 26)
	for i := 9; i >= 0; i-- {
		out[i] = crockford[ms&0x1F]
		ms >>= 5
	}

	random := make([]byte, 10)
	_, _ = rand.Read(random)
	random[0] ^= byte(seq >> 8)
	random[1] ^= byte(seq)

	// 80 random bits packed into 16 base32 characters.
	var acc uint64
	bits := 0
	pos := 10
	for _, b := range random {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = crockford[(acc>>uint(bits))&0x1F]
			pos++
		}
	}
	return string(out)
}

// IsValidULID checks if a string is a valid ULID.
func IsValidULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(crockford, s[i]) < 0 {
			return false
		}
	}
	return true
}

// ULIDTime extracts the timestamp from a ULID.
func ULIDTime(ulid string) (time.Time, error) {
	if !IsValidULID(ulid) {
		return time.Time{}, fmt.Errorf("invalid ULID: %s", ulid)
	}
	var ms int64
	for i := 0; i < 10; i++ {
		ms = ms<<5 | int64(strings.IndexByte(crockford, ulid[i]))
	}
	return time.UnixMilli(ms), nil
}

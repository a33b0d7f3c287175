// Package hotkey assigns short mnemonic codes to list rows and resolves typed
// chords against them.
package hotkey

import (
	"strings"
	"time"
)

// DefaultPool excludes keys bound to actions (j k g G n q /).
var DefaultPool = []rune("asdfhlwertyuiopzxcvbm")

const (
	ChordIdle = 1500 * time.Millisecond
	maxChord  = 2
)

// Assign returns n codes. The first len(pool) rows get single symbols, the
// rest get row-major pairs. Codes repeat past len(pool)+len(pool)^2.
func Assign(n int, pool []rune) []string {
	k := len(pool)
	if k == 0 || n <= 0 {
		return nil
	}
	codes := make([]string, n)
	for i := range codes {
		if i < k {
			codes[i] = string(pool[i])
			continue
		}
		j := i - k
		codes[i] = string([]rune{pool[(j/k)%k], pool[j%k]})
	}
	return codes
}

func Contains(pool []rune, r rune) bool {
	for _, p := range pool {
		if p == r {
			return true
		}
	}
	return false
}

// Chord buffers up to two typed symbols.
type Chord struct {
	buf  []rune
	last time.Time
}

// Push appends r and reports the index of the code it completes, if any.
func (c *Chord) Push(r rune, codes []string, now time.Time) (int, bool) {
	if len(c.buf) >= maxChord {
		c.buf = c.buf[:0]
	}
	c.buf = append(c.buf, r)
	c.last = now
	typed := string(c.buf)

	idx, matched := -1, false
	for i, code := range codes {
		if code == typed {
			idx, matched = i, true
			break
		}
	}
	switch {
	case matched:
		if len(c.buf) >= maxChord {
			c.buf = c.buf[:0]
		}
	case !hasPrefix(codes, typed):
		c.buf = c.buf[:0]
	}
	// no three-symbol codes exist
	if len(c.buf) >= maxChord {
		c.buf = c.buf[:0]
	}
	return idx, matched
}

// Expire clears a partial chord that has been idle for longer than idle.
func (c *Chord) Expire(now time.Time, idle time.Duration) bool {
	if len(c.buf) == 0 || now.Sub(c.last) < idle {
		return false
	}
	c.buf = c.buf[:0]
	return true
}

func (c *Chord) Reset() { c.buf = c.buf[:0] }

func (c *Chord) String() string { return string(c.buf) }

func (c *Chord) Len() int { return len(c.buf) }

func hasPrefix(codes []string, typed string) bool {
	for _, code := range codes {
		if strings.HasPrefix(code, typed) {
			return true
		}
	}
	return false
}

// Package format renders durations, sizes and gains for terminal output.
package format

import (
	"fmt"
	"strconv"
	"time"
)

// Duration renders an offset as HH:MM:SS, or MM:SS under an hour.
func Duration(d time.Duration) string {
	total := int64(d / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// DurationHuman renders a length such as "15m", "1h30m" or "45s".
func DurationHuman(d time.Duration) string {
	switch {
	case d >= time.Hour:
		h, m := d/time.Hour, d%time.Hour/time.Minute
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	case d >= time.Minute:
		m, s := d/time.Minute, d%time.Minute/time.Second
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}

// Size renders a byte count using the largest whole unit up to MB.
func Size(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%d MB", n/mb)
	case n >= kb:
		return fmt.Sprintf("%d KB", n/kb)
	case n == 1:
		return "1 byte"
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// Gain renders a decibel adjustment with an explicit sign, e.g. "+5 dB".
// Zero is "0 dB".
func Gain(db float64) string {
	s := strconv.FormatFloat(db, 'f', -1, 64)
	if db > 0 {
		s = "+" + s
	}
	return s + " dB"
}

// Count renders n with the singular or plural noun, e.g. "1 file", "3 files".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, plural)
}

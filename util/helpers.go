package util

import (
	"fmt"

	"github.com/spf13/viper"
)

// MustExist panics if an environment variable is not set.
func MustExist(envVar string) {
	if viper.GetString(envVar) == "" {
		panic(fmt.Sprintf("%s must be set", envVar))
	}
}

// Dedupe removes duplicate elements, preserving first-seen order.
func Dedupe[T comparable](src []T) []T {
	seen := make(map[T]bool, len(src))
	out := make([]T, 0, len(src))
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Contains reports whether s contains v.
func Contains[T comparable](s []T, v T) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

// MapWithoutError applies f to each element of xs.
func MapWithoutError[T, U any](xs []T, f func(T) U) []U {
	out := make([]U, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

// TruncateWithEllipsis shortens s to at most length runes.
func TruncateWithEllipsis(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	if length <= 3 {
		return string(r[:length])
	}
	return string(r[:length-3]) + "..."
}

// MinUint64 returns the smaller of a and b.
func MinUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

package convert

import (
	"strconv"
	"strings"
)

type StrTo string

func (s StrTo) String() string {
	return strings.TrimSpace(string(s))
}

func (s StrTo) Int() (int, error) {
	v, err := strconv.Atoi(s.String())
	return v, err
}

func (s StrTo) MustInt() int {
	v, _ := s.Int()
	return v
}

// IntOr returns fallback when the value is empty, malformed or not positive
func (s StrTo) IntOr(fallback int) int {
	if v, err := s.Int(); err == nil && v > 0 {
		return v
	}
	return fallback
}

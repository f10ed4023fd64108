package model

import (
	"fmt"
	"strings"
)

// Class is a flight class. International flights are deliberately favoured
// over domestic ones when queueing for resources.
type Class int

const (
	Domestic Class = iota
	International
)

func (c Class) String() string {
	switch c {
	case Domestic:
		return "domestic"
	case International:
		return "international"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ParseClass parses a class name (case insensitive).
func ParseClass(name string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "domestic", "dom", "d":
		return Domestic, nil
	case "international", "intl", "i":
		return International, nil
	}
	return Domestic, fmt.Errorf("unknown flight class: %q", name)
}

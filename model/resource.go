package model

import "fmt"

// Kind identifies a capacity-limited airport resource.
type Kind int

const (
	Runway Kind = iota
	Gate
	Tower
)

// KindCount is the number of resource kinds.
const KindCount = 3

// Kinds returns all resource kinds in index order.
func Kinds() []Kind {
	return []Kind{Runway, Gate, Tower}
}

func (k Kind) String() string {
	switch k {
	case Runway:
		return "runway"
	case Gate:
		return "gate"
	case Tower:
		return "tower"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is a known resource kind.
func (k Kind) Valid() bool {
	return k >= Runway && k <= Tower
}

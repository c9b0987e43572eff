package core

import "fmt"

// MovementType selects a unit's terrain cost profile and crush compatibility
type MovementType uint8

const (
	MoveFoot MovementType = iota
	MoveTrack
	MoveWheel
	MoveFloat
	MoveFly

	// MovementCount is the number of movement types; sizes per-movement tables
	MovementCount
)

var movementNames = [MovementCount]string{"foot", "track", "wheel", "float", "fly"}

func (m MovementType) String() string {
	if m < MovementCount {
		return movementNames[m]
	}
	return fmt.Sprintf("movement(%d)", uint8(m))
}

// ParseMovementType maps a rules key like "track" to its movement type
func ParseMovementType(name string) (MovementType, bool) {
	for i, n := range movementNames {
		if n == name {
			return MovementType(i), true
		}
	}
	return 0, false
}

// MovementMask is a set of movement types
type MovementMask uint8

// MaskOf builds a mask from movement types
func MaskOf(types ...MovementType) MovementMask {
	var m MovementMask
	for _, t := range types {
		m |= 1 << t
	}
	return m
}

// Has reports whether the mask contains mt
func (m MovementMask) Has(mt MovementType) bool {
	return m&(1<<mt) != 0
}

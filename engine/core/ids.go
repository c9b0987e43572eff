package core

// ActorID identifies a building or unit. Zero means "no actor".
type ActorID uint64

// NoActor is the zero ActorID
const NoActor ActorID = 0

// IDAllocator hands out ActorIDs in a fixed sequence. Each simulation owns
// one so that every peer assigns the same IDs to the same spawns.
type IDAllocator struct {
	last ActorID
}

// Next returns the next unused ID
func (a *IDAllocator) Next() ActorID {
	a.last++
	return a.last
}

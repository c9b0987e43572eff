package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_DispatchesInEmissionOrder(t *testing.T) {
	eb := NewEventBus()
	var got []ActorID
	eb.On(EvtBuildingPlaced, func(e Event) { got = append(got, e.Actor) })
	eb.On(EvtUnitSpawned, func(e Event) { got = append(got, e.Actor+100) })

	eb.Emit(Event{Type: EvtBuildingPlaced, Actor: 3})
	eb.Emit(Event{Type: EvtUnitSpawned, Actor: 1})
	eb.Emit(Event{Type: EvtBuildingPlaced, Actor: 2})
	require.Equal(t, 3, eb.Pending())
	assert.Empty(t, got, "nothing runs before dispatch")

	assert.Equal(t, 3, eb.Dispatch())
	assert.Equal(t, []ActorID{3, 101, 2}, got)
	assert.Equal(t, 0, eb.Pending())
}

func TestEventBus_EventsEmittedDuringDispatchRunSameFrame(t *testing.T) {
	eb := NewEventBus()
	var got []EventType
	eb.On(EvtUnitCrushed, func(e Event) {
		got = append(got, e.Type)
		eb.Emit(Event{Type: EvtUnitRemoved, Actor: e.Actor})
	})
	eb.On(EvtUnitRemoved, func(e Event) { got = append(got, e.Type) })

	eb.Emit(Event{Type: EvtUnitCrushed, Actor: 7})
	assert.Equal(t, 2, eb.Dispatch())
	assert.Equal(t, []EventType{EvtUnitCrushed, EvtUnitRemoved}, got)
}

func TestIDAllocator_IsSequential(t *testing.T) {
	var a, b IDAllocator
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
	assert.Equal(t, ActorID(6), a.Next())
}

func TestMovementMask(t *testing.T) {
	m := MaskOf(MoveTrack, MoveWheel)
	assert.True(t, m.Has(MoveTrack))
	assert.True(t, m.Has(MoveWheel))
	assert.False(t, m.Has(MoveFoot))
	assert.False(t, MovementMask(0).Has(MoveFly))

	mt, ok := ParseMovementType("float")
	require.True(t, ok)
	assert.Equal(t, MoveFloat, mt)
	_, ok = ParseMovementType("hover")
	assert.False(t, ok)
}

func TestPlayerManager_AreAllies(t *testing.T) {
	pm := NewPlayerManager()
	pm.AddPlayer(&Player{ID: 0, TeamID: 0})
	pm.AddPlayer(&Player{ID: 1, TeamID: 0})
	pm.AddPlayer(&Player{ID: 2, TeamID: 1})

	assert.True(t, pm.AreAllies(0, 1))
	assert.False(t, pm.AreAllies(0, 2))
	assert.True(t, pm.AreAllies(2, 2))
	assert.False(t, pm.AreAllies(0, 9))
}

package dreadroot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"better-dreadroot/internal/world"
)

func TestSetSolidIsIdempotent(t *testing.T) {
	e := &world.Entity{Physics: &world.Physics{}}
	require.True(t, SetSolid(world.RefTo(e)))
	once := *e.Physics
	require.True(t, SetSolid(world.RefTo(e)))
	assert.Equal(t, once, *e.Physics)
	assert.True(t, e.Physics.Solid)
}

func TestSetSolidWithoutPhysicsIsNoop(t *testing.T) {
	e := &world.Entity{DisplayName: "ghost"}
	assert.False(t, SetSolid(world.RefTo(e)))
	assert.Nil(t, e.Physics)
	assert.False(t, SetSolid(world.Absent))
}

func TestSetHostileIsIdempotent(t *testing.T) {
	e := &world.Entity{
		DisplayName: "dreadroot",
		Brain: &world.Brain{
			Passive:    true,
			Allegiance: world.Allegiance{Standing: map[string]int{"Roots": 100}},
		},
	}
	require.True(t, SetHostile(world.RefTo(e)))
	assertHostile(t, e)
	require.True(t, SetHostile(world.RefTo(e)))
	assertHostile(t, e)
	assert.Len(t, e.Brain.FactionFeelings, 1)
}

func TestSetHostileOverridesExistingPlayerStanding(t *testing.T) {
	e := &world.Entity{Brain: &world.Brain{Allegiance: world.Allegiance{Standing: map[string]int{world.FactionPlayer: 20}}}}
	require.True(t, SetHostile(world.RefTo(e)))
	assert.Equal(t, 20, e.Brain.Allegiance.Standing[world.FactionPlayer], "grievance add keeps the prior standing")
	feeling, _ := e.Brain.FactionFeeling(world.FactionPlayer)
	assert.Equal(t, PlayerStanding, feeling, "feeling override wins")
}

func TestSetHostileWithoutBrainIsNoop(t *testing.T) {
	e := &world.Entity{DisplayName: "rock"}
	assert.False(t, SetHostile(world.RefTo(e)))
	assert.Equal(t, "rock", e.DisplayName)
	assert.False(t, SetHostile(world.Absent))
}

func assertHostile(t *testing.T, e *world.Entity) {
	t.Helper()
	assert.Equal(t, HostileDisplayName, e.DisplayName)
	assert.True(t, e.Brain.Allegiance.Hostile)
	assert.False(t, e.Brain.Passive)
	feeling, ok := e.Brain.FactionFeeling(world.FactionPlayer)
	assert.True(t, ok)
	assert.Equal(t, PlayerStanding, feeling)
	assert.Equal(t, PlayerStanding, e.Brain.Allegiance.Standing[world.FactionPlayer])
	assert.True(t, e.CanBeTargetedByPlayer())
}

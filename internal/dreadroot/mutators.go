package dreadroot

import "better-dreadroot/internal/world"

const (
	// HostileDisplayName replaces the display name of hostile instances.
	HostileDisplayName = "Deadroot"
	// PlayerStanding is the standing hostile instances hold toward the player.
	PlayerStanding = -500
)

// SetSolid marks the entity's physics solid. It reports false, changing
// nothing, when the entity has no physics facet.
func SetSolid(ref world.Ref) bool {
	e, ok := ref.Get()
	if !ok || e.Physics == nil {
		return false
	}
	e.Physics.Solid = true
	return true
}

// SetHostile turns the entity against the player: it is renamed, its
// allegiance is marked hostile, its standing and feeling toward the player
// drop to PlayerStanding and it stops being passive. It reports false,
// changing nothing, when the entity has no brain.
func SetHostile(ref world.Ref) bool {
	e, ok := ref.Get()
	if !ok || e.Brain == nil {
		return false
	}
	e.DisplayName = HostileDisplayName
	e.Brain.Allegiance.Hostile = true
	e.Brain.Allegiance.TryAdd(world.FactionPlayer, PlayerStanding)
	e.Brain.SetFactionFeeling(world.FactionPlayer, PlayerStanding)
	e.Brain.Passive = false
	return true
}

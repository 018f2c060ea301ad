package dreadroot

import "better-dreadroot/internal/world"

// Matcher recognises instances of the one governed blueprint.
type Matcher struct {
	identity string
}

func NewMatcher(identity string) Matcher {
	return Matcher{identity: world.NormalizeName(identity)}
}

// Governs reports whether ref was created from the governed blueprint.
// Markup and case in the blueprint name are ignored.
func (m Matcher) Governs(ref world.Ref) bool {
	e, ok := ref.Get()
	if !ok || m.identity == "" {
		return false
	}
	return world.NormalizeName(e.Blueprint) == m.identity
}

func (m Matcher) Identity() string {
	return m.identity
}

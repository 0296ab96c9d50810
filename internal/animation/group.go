package animation

// Group is the set of scrolling fields sharing lock-step rests.
// Every scroll-capable member must be back at the start before any of them
// departs again, whatever the group size.
type Group []*Scroll

// Context computes the synchronization guard for the current tick
func (g Group) Context() GroupContext {
	capable, resting := 0, 0
	for _, s := range g {
		if !s.ScrollCapable() {
			continue
		}
		capable++
		if s.phase == RestingAtStart {
			resting++
		}
	}
	return GroupContext{
		AllScrollCapableResting: capable > 0 && resting == capable,
		OnlyOneScrollCapable:    capable == 1,
	}
}

// Tick advances all members with a context computed before any of them moves
func (g Group) Tick() {
	ctx := g.Context()
	for _, s := range g {
		s.Tick(ctx)
	}
}

// Moving reports whether any member is mid-sweep
func (g Group) Moving() bool {
	for _, s := range g {
		if s.Moving() {
			return true
		}
	}
	return false
}

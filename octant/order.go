package octant

// Less implements the Morton-with-level order every local tree's octants
// and ghosts are kept sorted under: Morton index is the primary key; on
// equal Morton (only possible between an octant and one of its own
// ancestors/descendants) the coarser (lower level) octant sorts first. A
// valid linear octree never actually contains two distinct octants with
// equal Morton — see spec.md open question (ii) — so among the octants of
// one consistent tree the tie-break never decides; it only keeps the order
// total for ancestor/descendant pairs.
func Less(a, b Octant) bool {
	ma, mb := a.ComputeMorton(), b.ComputeMorton()
	if ma != mb {
		return ma < mb
	}
	return a.Level < b.Level
}

// Compare returns -1, 0 or 1 following the same order as Less.
func Compare(a, b Octant) int {
	ma, mb := a.ComputeMorton(), b.ComputeMorton()
	switch {
	case ma < mb:
		return -1
	case ma > mb:
		return 1
	case a.Level < b.Level:
		return -1
	case a.Level > b.Level:
		return 1
	default:
		return 0
	}
}

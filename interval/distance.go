package interval

// Distances holds the three signed separations of an interval pair, computed
// from the relative ordering of their (possibly anchor-extended) boundaries.
//
// Sign convention: positive when the first interval lies downstream of the
// second, negative when upstream.  Edge is the gap between the nearer edges:
// 0 when one interval contains the other, and past-zero (edges crossed, i.e.
// magnitude equals the overlap length) for partial overlap.  Opposite is the
// gap between the farther edges.  Anchor is the difference of the two
// representative points (parsed anchors when present, midpoints otherwise).
type Distances struct {
	Edge     PosType
	Anchor   PosType
	Opposite PosType
}

// PairDistances computes the signed distances between a and b.  When ext is
// enabled, both intervals are measured by their anchored windows, the same
// coordinates the matcher compares them under.
func PairDistances(a, b *Entry, ext Extension) Distances {
	aLo, aHi := a.Start, a.End
	bLo, bHi := b.Start, b.End
	if ext.Enabled {
		if a.HasAnchor {
			aLo, aHi = a.Anchor-ext.Up, a.Anchor+ext.Down
		}
		if b.HasAnchor {
			bLo, bHi = b.Anchor-ext.Up, b.Anchor+ext.Down
		}
	}
	d := Distances{Anchor: a.Center() - b.Center()}
	switch {
	case aLo >= bLo && aHi <= bHi, bLo >= aLo && bHi <= aHi:
		// Containment either direction: nearer edges do not separate the pair.
		d.Edge = 0
		if aLo+aHi >= bLo+bHi {
			d.Opposite = aHi - bLo
		} else {
			d.Opposite = aLo - bHi
		}
	case aLo+aHi >= bLo+bHi: // a downstream of b
		d.Edge = aLo - bHi
		d.Opposite = aHi - bLo
	default: // a upstream of b
		d.Edge = aHi - bLo
		d.Opposite = aLo - bHi
	}
	return d
}

// Nearest returns the candidate with the smallest absolute edge distance to
// q, skipping candidates for which skip returns true (e.g. ones already
// claimed by other queries).  Because candidate end coordinates are not
// ordered, this is a full scan of the bucket; it only runs for queries left
// unmatched, with near-miss reporting enabled.
func Nearest(q *Entry, bucket []Entry, ext Extension, skip func(*Entry) bool) (*Entry, Distances, bool) {
	var best *Entry
	var bestDist Distances
	for i := range bucket {
		c := &bucket[i]
		if skip != nil && skip(c) {
			continue
		}
		d := PairDistances(q, c, ext)
		if best == nil || abs(d.Edge) < abs(bestDist.Edge) {
			best = c
			bestDist = d
		}
	}
	return best, bestDist, best != nil
}

func abs(x PosType) PosType {
	if x < 0 {
		return -x
	}
	return x
}

package shared

// Group pairs an outer element with every inner element that shares its key.
// Items is never nil, so an outer element without matches yields an empty group.
type Group[O, I any] struct {
	Key   O
	Items []I
}

// GroupJoin correlates outer and inner by key with left-outer semantics: every
// outer element appears exactly once, in its original order, together with the
// inner elements whose key matches, in their original order.
//
// The inner side is indexed once, so the cost is O(len(outer) + len(inner)).
func GroupJoin[O, I any, K comparable](outer []O, inner []I, outerKey func(O) K, innerKey func(I) (K, bool)) []Group[O, I] {
	index := make(map[K][]I, len(outer))
	for _, in := range inner {
		k, ok := innerKey(in)
		if !ok {
			continue
		}
		index[k] = append(index[k], in)
	}

	groups := make([]Group[O, I], 0, len(outer))
	for _, out := range outer {
		items := index[outerKey(out)]
		if items == nil {
			items = []I{}
		}
		groups = append(groups, Group[O, I]{Key: out, Items: items})
	}
	return groups
}

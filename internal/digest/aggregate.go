package digest

// Aggregate concatenates ranked and feed items in that order, keeps the first item for
// every identity key, and caps the result at max entries.
//
// Items whose key is empty are never recorded as seen, so they are always kept.
func Aggregate(ranked, feeds []Item, max int) []Item {
	if max < 0 {
		max = 0
	}

	seen := make(map[string]struct{}, len(ranked)+len(feeds))
	out := make([]Item, 0, len(ranked)+len(feeds))
	for _, group := range [][]Item{ranked, feeds} {
		for _, it := range group {
			key := it.Key()
			if key != "" {
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			out = append(out, it)
		}
	}

	if len(out) > max {
		out = out[:max]
	}
	return out
}

package evaluation

// RecallAtK is the fraction of relevant ids found in the first k recommended ids.
// Returns 0.0 if relevant is empty.
func RecallAtK(relevant, recommended []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}
	relevantSet := toSet(relevant)

	found := 0
	for _, id := range firstK(recommended, k) {
		if _, ok := relevantSet[id]; ok {
			found++
			// a hospital listed twice must not count twice
			delete(relevantSet, id)
		}
	}
	return float64(found) / float64(len(relevant))
}

// MRRAtK is the reciprocal rank of the first relevant id within the first k, or 0.0.
func MRRAtK(relevant, recommended []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}
	relevantSet := toSet(relevant)

	for i, id := range firstK(recommended, k) {
		if _, ok := relevantSet[id]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0.0
}

func firstK(ids []string, k int) []string {
	if k < 0 {
		k = 0
	}
	if k < len(ids) {
		return ids[:k]
	}
	return ids
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

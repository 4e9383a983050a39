package content

// Partition splits the previously embedded URLs against the newly embedded
// ones: removed holds URLs present before but no longer referenced, kept
// holds URLs that survive. Order follows the old slice.
func Partition(oldURLs, newURLs []string) (removed, kept []string) {
	next := make(map[string]struct{}, len(newURLs))
	for _, u := range newURLs {
		next[u] = struct{}{}
	}
	for _, u := range oldURLs {
		if _, ok := next[u]; ok {
			kept = append(kept, u)
		} else {
			removed = append(removed, u)
		}
	}
	return removed, kept
}

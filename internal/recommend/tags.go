// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package recommend

import "sort"

// ratedTags is the tag list of one rated item.
type ratedTags struct {
	rating int
	tags   []string
}

// preferredTags weights each tag of an item rated likedRating or higher by
// (rating-6)*0.5 and returns the heaviest maxPreferredTags, ties by name.
func preferredTags(items []ratedTags) []string {
	weights := make(map[string]float64)
	for _, it := range items {
		if it.rating < likedRating {
			continue
		}
		w := float64(it.rating-6) * 0.5
		for _, tag := range it.tags {
			weights[tag] += w
		}
	}

	tags := make([]string, 0, len(weights))
	for tag := range weights {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if weights[tags[i]] != weights[tags[j]] {
			return weights[tags[i]] > weights[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > maxPreferredTags {
		tags = tags[:maxPreferredTags]
	}
	return tags
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// overlap counts distinct tags of item present in set.
func overlap(item []string, set map[string]struct{}) int {
	n := 0
	for t := range tagSet(item) {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// jaccard is |a∩b| / |a∪b|, zero when both are empty.
func jaccard(a, b []string) float64 {
	sa, sb := tagSet(a), tagSet(b)
	union := len(sa) + len(sb)
	if union == 0 {
		return 0
	}
	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	return float64(inter) / float64(union-inter)
}

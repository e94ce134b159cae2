package activity

import (
	"sort"
	"strings"
	"time"
)

// headerLines is the size of the identity block opening a main file.
const headerLines = 4

// ConsolidateLateEntries returns the main file content with newLine added to its late entries when it
// carries the late tag. The header is kept verbatim; late entries are sorted most recent first, and
// entries whose time cannot be decoded go last in their original order.
func ConsolidateLateEntries(content, newLine string, loc *time.Location) string {
	lines := strings.Split(content, "\n")
	for len(lines) < headerLines {
		lines = append(lines, "")
	}
	header := lines[:headerLines]

	entries := make([]string, 0, len(lines)-headerLines+1)
	for _, line := range lines[headerLines:] {
		if strings.TrimSpace(line) != "" {
			entries = append(entries, line)
		}
	}
	if HasTag(newLine, LateTag) {
		entries = append(entries, strings.TrimRight(newLine, "\n"))
	}

	sortByTime(entries, loc, true)

	out := make([]string, 0, headerLines+len(entries))
	out = append(out, header...)
	out = append(out, entries...)
	return strings.Join(out, "\n")
}

// sortByTime stably sorts lines by decoded time, undecodable lines last.
func sortByTime(lines []string, loc *time.Location, descending bool) {
	keys := make(map[int]time.Time, len(lines))
	idx := make([]int, len(lines))
	for i, line := range lines {
		idx[i] = i
		if t, err := decodeAny(line, loc); err == nil {
			keys[i] = t
		}
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ta, okA := keys[idx[a]]
		tb, okB := keys[idx[b]]
		switch {
		case !okA || !okB:
			return okA && !okB
		case descending:
			return ta.After(tb)
		default:
			return ta.Before(tb)
		}
	})

	sorted := make([]string, len(lines))
	for i, j := range idx {
		sorted[i] = lines[j]
	}
	copy(lines, sorted)
}

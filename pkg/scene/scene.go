// Package scene turns label counts into short spoken summaries.
package scene

import (
	"sort"
	"strconv"
	"strings"
)

// Context selects the wording used by Describe.
type Context int

const (
	// Environment is the scene-analysis mode: "There is ..." and an explicit
	// "No objects detected." when nothing is visible.
	Environment Context = iota
	// MissingTarget follows a lost-target warning: "There's ..." and silence
	// when nothing is visible.
	MissingTarget
)

// NoObjects is the Environment description of an empty scene.
const NoObjects = "No objects detected."

type item struct {
	label string
	count int
}

// Describe summarizes counts, most frequent label first. Labels with equal
// counts are ordered alphabetically.
func Describe(counts map[string]int, ctx Context) string {
	items := make([]item, 0, len(counts))
	for label, n := range counts {
		if n > 0 {
			items = append(items, item{label, n})
		}
	}

	if len(items) == 0 {
		if ctx == Environment {
			return NoObjects
		}
		return ""
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].label < items[j].label
	})

	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = phrase(it.label, it.count)
	}

	prefix := "There is"
	if ctx == MissingTarget {
		prefix = "There's"
	}
	return prefix + " " + join(parts) + " in front of you."
}

func phrase(label string, n int) string {
	switch n {
	case 1:
		return "a " + label
	case 2:
		return "two " + label + "s"
	case 3:
		return "three " + label + "s"
	default:
		return strconv.Itoa(n) + " " + label + "s"
	}
}

func join(parts []string) string {
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}

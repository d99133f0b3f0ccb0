package synthesis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/annolab/curator/pkg/formatting"
)

// clusterCategory is one named category from a cluster-aggregation response.
// EdgeCases holds 1-based indices into the rule list the LLM was shown.
type clusterCategory struct {
	Description string `json:"category_description"`
	EdgeCases   []int  `json:"edge_cases"`
}

type aggregationPayload struct {
	Categories []clusterCategory `json:"categories"`
}

var (
	descLineRegex  = regexp.MustCompile(`"?category_description"?\s*:\s*"([^"]+)"`)
	casesLineRegex = regexp.MustCompile(`"?edge_cases"?\s*:\s*\[([^\]]*)\]`)
	intRegex       = regexp.MustCompile(`\d+`)
	mergeLineRegex = regexp.MustCompile(`^Merge\s*\[([^\[\]]*)\]\s*:\s*(.*)$`)
)

// parseAggregation extracts categories from a cluster-aggregation response.
// The strict path expects fenced or bare JSON with a categories array. On
// failure, lines are scanned for category_description / edge_cases pairs,
// associating each description with the edge-case list that follows it.
func parseAggregation(raw string) []clusterCategory {
	payload, err := formatting.Parse[aggregationPayload](raw)
	if err == nil && payload.Categories != nil {
		return payload.Categories
	}
	return scanAggregationLines(raw)
}

func scanAggregationLines(raw string) []clusterCategory {
	var categories []clusterCategory
	var description string
	var cases []int
	pending := false

	flush := func() {
		if pending && cases != nil {
			categories = append(categories, clusterCategory{
				Description: description,
				EdgeCases:   cases,
			})
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), ",")

		if m := descLineRegex.FindStringSubmatch(line); m != nil {
			flush()
			description = m[1]
			cases = nil
			pending = true
			continue
		}

		if m := casesLineRegex.FindStringSubmatch(line); m != nil {
			cases = parseInts(m[1])
		}
	}
	flush()

	return categories
}

// mergeGroup is one merge suggestion: 1-based positions into the presented
// category list, plus the merged description that replaces them.
type mergeGroup struct {
	Members []int
	Rule    string
}

// noMergeSentinel is the literal the merge prompt requests when no
// categories should be merged.
const noMergeSentinel = "NO MERGE"

// parseMerge extracts merge suggestions from a merge-phase response. Lines
// follow the grammar "Merge [n1, n2, ...]: <merged description>"; the
// sentinel yields no groups.
func parseMerge(raw string) []mergeGroup {
	if strings.Contains(raw, noMergeSentinel) {
		return nil
	}

	var groups []mergeGroup
	for _, line := range strings.Split(raw, "\n") {
		m := mergeLineRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		groups = append(groups, mergeGroup{
			Members: parseInts(m[1]),
			Rule:    strings.TrimSpace(m[2]),
		})
	}
	return groups
}

func parseInts(s string) []int {
	matches := intRegex.FindAllString(s, -1)
	if matches == nil {
		return []int{}
	}

	out := make([]int, 0, len(matches))
	for _, m := range matches {
		if v, err := strconv.Atoi(m); err == nil {
			out = append(out, v)
		}
	}
	return out
}

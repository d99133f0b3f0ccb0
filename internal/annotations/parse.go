package annotations

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// annotationOutput holds the parsed fields of one annotation completion.
type annotationOutput struct {
	Analysis             string
	Label                string
	Confidence           float64
	NewEdgeCase          bool
	GuidelineImprovement string
}

const (
	// labelUnclassifiable is the sentinel label for examples the model
	// could not classify under the guideline.
	labelUnclassifiable = "-1"

	// defaultConfidence is assumed when salvage cannot recover a score.
	defaultConfidence = 50.0
)

var numberRegex = regexp.MustCompile(`\d+\.?\d*`)

// parseAnnotation extracts the annotation fields from raw model output.
// The strict path strips code fences and any reasoning preamble, then
// requires a JSON object carrying all five contract fields. On any strict
// failure the salvage path recovers what it can from individual lines and
// fills the rest with neutral defaults; it never fails. The second return
// reports whether salvage was used.
func parseAnnotation(raw string) (annotationOutput, bool) {
	cleaned := stripWrapping(raw)

	if out, ok := parseStrict(cleaned); ok {
		return out, false
	}
	return salvage(cleaned), true
}

func stripWrapping(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.Trim(s, "\n ")

	if _, rest, found := strings.Cut(s, "</think>"); found {
		s = rest
	}
	return s
}

func parseStrict(cleaned string) (annotationOutput, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return annotationOutput{}, false
	}

	required := []string{"analysis", "annotation", "confidence", "new_edge_case", "new_edge_case_rule"}
	for _, key := range required {
		if _, ok := fields[key]; !ok {
			return annotationOutput{}, false
		}
	}

	return annotationOutput{
		Analysis:             asString(fields["analysis"]),
		Label:                asString(fields["annotation"]),
		Confidence:           asNumber(fields["confidence"], defaultConfidence),
		NewEdgeCase:          asBool(fields["new_edge_case"]),
		GuidelineImprovement: asString(fields["new_edge_case_rule"]),
	}, true
}

// salvage scans lines for field-name substrings and extracts values
// positionally. Recoverable fields replace the neutral defaults.
func salvage(cleaned string) annotationOutput {
	out := annotationOutput{
		Analysis:   salvageAnalysis(cleaned),
		Label:      labelUnclassifiable,
		Confidence: defaultConfidence,
	}

	for _, line := range strings.Split(cleaned, "\n") {
		switch {
		case strings.Contains(line, "annotation"):
			out.Label = trailingValue(line)
		case strings.Contains(line, "new_edge_case_rule"):
			out.GuidelineImprovement = trailingValue(line)
		case strings.Contains(line, "new_edge_case"):
			out.NewEdgeCase = strings.Contains(strings.ToLower(line), "true")
		case strings.Contains(line, "confidence"):
			if m := numberRegex.FindString(line); m != "" {
				if v, err := strconv.ParseFloat(m, 64); err == nil {
					out.Confidence = v
				}
			}
		}
	}

	return out
}

// salvageAnalysis recovers the analysis text as everything between the first
// `: "` and the `"annotation"` key that follows it.
func salvageAnalysis(cleaned string) string {
	s := cleaned
	if _, rest, found := strings.Cut(s, ": \""); found {
		s = rest
	}
	if before, _, found := strings.Cut(s, "\"annotation\""); found {
		s = before
	}
	return strings.Trim(s, " \n\"',")
}

// trailingValue returns the text after the last colon, trimmed of quoting.
func trailingValue(line string) string {
	if idx := strings.LastIndex(line, ":"); idx >= 0 {
		line = line[idx+1:]
	}
	return strings.Trim(line, " \n\"',")
}

func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), " \"")
}

func asNumber(raw json.RawMessage, fallback float64) float64 {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return fallback
}

func asBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	return strings.Contains(strings.ToLower(string(raw)), "true")
}

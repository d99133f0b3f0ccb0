package formatting

import "strings"

// RuleSeparator splits an edge-case rule into its condition and action.
const RuleSeparator = "->"

// RuleCondition returns the condition clause of a "when <condition> -> <action>"
// rule: everything before the separator, trimmed. Rules without a separator
// are returned whole.
func RuleCondition(rule string) string {
	if idx := strings.Index(rule, RuleSeparator); idx >= 0 {
		return strings.TrimSpace(rule[:idx])
	}
	return strings.TrimSpace(rule)
}

package assanalysis

import (
	"fmt"

	"github.com/npillmayer/assgo/assissue"
)

// Rule is a pluggable lint check over a completed ScriptAnalysis (spec.md
// §4.3's "check_script" extension point). Implementations must be
// side-effect free: Check only appends to the returned issue list.
type Rule interface {
	Name() string
	Check(sa *ScriptAnalysis) []assissue.Issue
}

// invalidTagRule flags dialogue referencing an override tag with no
// registered Handler (already recorded per-dialogue by AnalyzeDialogue;
// this rule re-surfaces them at the script level for a caller that only
// wants to run named rules rather than read every DialogueInfo).
type invalidTagRule struct{}

func (invalidTagRule) Name() string { return "invalid_tag" }

func (invalidTagRule) Check(sa *ScriptAnalysis) []assissue.Issue {
	var out []assissue.Issue
	for _, di := range sa.Dialogues {
		for _, iss := range di.Issues {
			if iss.Code == assissue.CodeInvalidTag {
				out = append(out, iss)
			}
		}
	}
	return out
}

// performanceRule flags styles or dialogues scored High or Critical.
type performanceRule struct{}

func (performanceRule) Name() string { return "performance" }

func (performanceRule) Check(sa *ScriptAnalysis) []assissue.Issue {
	var out []assissue.Issue
	for _, rs := range sa.Styles {
		if rs.Performance >= High {
			out = append(out, assissue.Issue{
				Code: assissue.CodePerformance, Severity: assissue.Warning, Span: rs.Source.LineSpan,
				Message: fmt.Sprintf("style %q has %s render cost (score %d/10)", rs.Name, rs.Performance, rs.ComplexityScore),
			})
		}
	}
	for _, di := range sa.Dialogues {
		if di.ComplexityScore >= 80 {
			out = append(out, assissue.Issue{
				Code: assissue.CodePerformance, Severity: assissue.Warning, Span: di.Event.LineSpan,
				Message: fmt.Sprintf("dialogue line has high animation complexity (score %d/100)", di.ComplexityScore),
			})
		}
	}
	return out
}

// BuiltinRules returns the rules assgo ships out of the box (spec.md §4.3).
func BuiltinRules() []Rule {
	return []Rule{invalidTagRule{}, performanceRule{}}
}

// CheckScript runs rules (BuiltinRules() if nil) against sa and returns all
// reported issues, in rule order.
func CheckScript(sa *ScriptAnalysis, rules []Rule) []assissue.Issue {
	if rules == nil {
		rules = BuiltinRules()
	}
	var out []assissue.Issue
	for _, r := range rules {
		out = append(out, r.Check(sa)...)
	}
	return out
}

// Package validation is the pure read-side rule layer: it maps an answer
// value to pass/fail/unknown and decides whether required evidence is
// attached. It holds no state and never mutates an answer.
package validation

import (
	"strconv"
	"strings"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

// faultySentinels mark a broken instrument. A numeric answer equal to one of
// these always fails regardless of the numeric rule.
var faultySentinels = []string{"faulty", "معطل"}

// FaultySentinel is the canonical value written when the backend flags a
// gauge as faulty.
const FaultySentinel = "faulty"

func IsFaultySentinel(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, s := range faultySentinels {
		if v == s {
			return true
		}
	}
	return false
}

// Evaluate computes the validation result for one answer value.
func Evaluate(q domain.ChecklistQuestion, value string) domain.ValidationResult {
	v := strings.TrimSpace(value)
	switch q.AnswerType {
	case domain.AnswerYesNo:
		switch strings.ToLower(v) {
		case "yes":
			return domain.ValidationPass
		case "no":
			return domain.ValidationFail
		default:
			return domain.ValidationUnknown
		}
	case domain.AnswerPassFail:
		switch strings.ToLower(v) {
		case "pass":
			return domain.ValidationPass
		case "fail":
			return domain.ValidationFail
		default:
			return domain.ValidationUnknown
		}
	case domain.AnswerNumeric:
		return evaluateNumeric(q.NumericRule, v)
	case domain.AnswerText:
		if v == "" {
			return domain.ValidationUnknown
		}
		return domain.ValidationPass
	default:
		return domain.ValidationUnknown
	}
}

func evaluateNumeric(rule *domain.NumericRule, v string) domain.ValidationResult {
	if IsFaultySentinel(v) {
		return domain.ValidationFail
	}
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return domain.ValidationUnknown
	}
	if rule == nil {
		// No tolerance configured: any entered number is accepted.
		return domain.ValidationPass
	}
	switch rule.Kind {
	case domain.RuleLessThan:
		if x < rule.MaxValue {
			return domain.ValidationPass
		}
	case domain.RuleGreaterThan:
		if x > rule.MinValue {
			return domain.ValidationPass
		}
	case domain.RuleBetween:
		if x >= rule.MinValue && x <= rule.MaxValue {
			return domain.ValidationPass
		}
	default:
		return domain.ValidationUnknown
	}
	return domain.ValidationFail
}

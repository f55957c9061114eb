package validation

import (
	"testing"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

func TestEvaluateYesNo(t *testing.T) {
	q := domain.ChecklistQuestion{AnswerType: domain.AnswerYesNo}

	tests := []struct {
		value    string
		expected domain.ValidationResult
	}{
		{"yes", domain.ValidationPass},
		{"Yes", domain.ValidationPass},
		{"no", domain.ValidationFail},
		{"maybe", domain.ValidationUnknown},
		{"", domain.ValidationUnknown},
	}
	for _, tt := range tests {
		if got := Evaluate(q, tt.value); got != tt.expected {
			t.Errorf("Evaluate(yesNo, %q) = %s, want %s", tt.value, got, tt.expected)
		}
	}
}

func TestEvaluatePassFail(t *testing.T) {
	q := domain.ChecklistQuestion{AnswerType: domain.AnswerPassFail}

	tests := []struct {
		value    string
		expected domain.ValidationResult
	}{
		{"pass", domain.ValidationPass},
		{"fail", domain.ValidationFail},
		{"ok", domain.ValidationUnknown},
	}
	for _, tt := range tests {
		if got := Evaluate(q, tt.value); got != tt.expected {
			t.Errorf("Evaluate(passFail, %q) = %s, want %s", tt.value, got, tt.expected)
		}
	}
}

func TestEvaluateNumericRules(t *testing.T) {
	tests := []struct {
		name     string
		rule     *domain.NumericRule
		value    string
		expected domain.ValidationResult
	}{
		{"less than, inside", &domain.NumericRule{Kind: domain.RuleLessThan, MaxValue: 50}, "42", domain.ValidationPass},
		{"less than, at bound", &domain.NumericRule{Kind: domain.RuleLessThan, MaxValue: 50}, "50", domain.ValidationFail},
		{"less than, above", &domain.NumericRule{Kind: domain.RuleLessThan, MaxValue: 50}, "60", domain.ValidationFail},
		{"greater than, inside", &domain.NumericRule{Kind: domain.RuleGreaterThan, MinValue: 10}, "11", domain.ValidationPass},
		{"greater than, at bound", &domain.NumericRule{Kind: domain.RuleGreaterThan, MinValue: 10}, "10", domain.ValidationFail},
		{"between, inside", &domain.NumericRule{Kind: domain.RuleBetween, MinValue: 150, MaxValue: 210}, "180", domain.ValidationPass},
		{"between, min boundary", &domain.NumericRule{Kind: domain.RuleBetween, MinValue: 150, MaxValue: 210}, "150", domain.ValidationPass},
		{"between, max boundary", &domain.NumericRule{Kind: domain.RuleBetween, MinValue: 150, MaxValue: 210}, "210", domain.ValidationPass},
		{"between, below", &domain.NumericRule{Kind: domain.RuleBetween, MinValue: 150, MaxValue: 210}, "149.9", domain.ValidationFail},
		{"between, above", &domain.NumericRule{Kind: domain.RuleBetween, MinValue: 150, MaxValue: 210}, "210.1", domain.ValidationFail},
		{"no rule accepts any number", nil, "999999", domain.ValidationPass},
		{"non-numeric input", &domain.NumericRule{Kind: domain.RuleBetween, MinValue: 1, MaxValue: 2}, "abc", domain.ValidationUnknown},
		{"empty input", nil, "", domain.ValidationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := domain.ChecklistQuestion{AnswerType: domain.AnswerNumeric, NumericRule: tt.rule}
			if got := Evaluate(q, tt.value); got != tt.expected {
				t.Errorf("Evaluate(numeric, %q) = %s, want %s", tt.value, got, tt.expected)
			}
		})
	}
}

func TestFaultySentinelAlwaysFails(t *testing.T) {
	rules := []*domain.NumericRule{
		nil,
		{Kind: domain.RuleLessThan, MaxValue: 50},
		{Kind: domain.RuleGreaterThan, MinValue: 10},
		{Kind: domain.RuleBetween, MinValue: 0, MaxValue: 100},
	}
	for _, rule := range rules {
		q := domain.ChecklistQuestion{AnswerType: domain.AnswerNumeric, NumericRule: rule}
		for _, sentinel := range []string{"faulty", "FAULTY", " faulty ", "معطل"} {
			if got := Evaluate(q, sentinel); got != domain.ValidationFail {
				t.Errorf("Evaluate(numeric rule=%v, %q) = %s, want fail", rule, sentinel, got)
			}
		}
	}
}

func TestEvaluateText(t *testing.T) {
	q := domain.ChecklistQuestion{AnswerType: domain.AnswerText}

	if got := Evaluate(q, "belt slightly worn"); got != domain.ValidationPass {
		t.Errorf("non-empty text = %s, want pass", got)
	}
	if got := Evaluate(q, "   "); got != domain.ValidationUnknown {
		t.Errorf("whitespace text = %s, want unknown", got)
	}
	if got := Evaluate(q, ""); got != domain.ValidationUnknown {
		t.Errorf("empty text = %s, want unknown", got)
	}
}

package services

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driving"
)

// Ensure PersonaClassifier implements the interface.
var _ driving.PersonaClassifier = (*PersonaClassifier)(nil)

// PersonaClassifier maps persona hints to labels using ordered keyword rules.
// Keywords match whole words, case-insensitively.
type PersonaClassifier struct {
	rules []domain.PersonaRule
}

// NewPersonaClassifier creates a classifier with the given rules.
// With no rules, domain.DefaultPersonaRules is used.
func NewPersonaClassifier(rules ...domain.PersonaRule) *PersonaClassifier {
	if len(rules) == 0 {
		rules = domain.DefaultPersonaRules()
	}
	return &PersonaClassifier{rules: rules}
}

// Classify returns the label of the first rule with a keyword in hint.
// Hints matching no rule are general.
//
// A keyword must equal a whole word of the hint. Inflected forms do not
// match: "developers" and "apps" are general unless a rule lists them.
func (c *PersonaClassifier) Classify(hint string) domain.PersonaLabel {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(hint), isWordBreak) {
		words[w] = struct{}{}
	}

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if _, ok := words[kw]; ok {
				return rule.Label
			}
		}
	}
	return domain.PersonaGeneral
}

func isWordBreak(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Package flags provides cobra flag helpers shared by bix commands.
package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix     = "<"
	choicePlaceholderSuffix     = ">"
	choiceSeparatorLiteral      = "|"
	choiceUsageEmptyTemplate    = "`%s`"
	choiceUsageFullTemplate     = "`%s` %s"
	choiceValueTypeConstant     = "string"
	unsupportedChoiceTemplate   = "unsupported value %q (choose %s)"
	choiceListJoinerConstant    = ", "
	choiceListFinalJoinConstant = " or "
)

// ChoiceValue is a pflag.Value restricted to a fixed set of case-insensitive choices.
type ChoiceValue struct {
	target  *string
	choices []string
}

// NewChoiceValue constructs a ChoiceValue writing the canonical choice into target.
func NewChoiceValue(target *string, choices []string) *ChoiceValue {
	return &ChoiceValue{target: target, choices: normalizeChoices(choices)}
}

// String returns the current value.
func (value *ChoiceValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

// Set validates and stores the value in its canonical lower-case spelling.
func (value *ChoiceValue) Set(candidate string) error {
	normalizedCandidate := strings.ToLower(strings.TrimSpace(candidate))
	for _, choice := range value.choices {
		if choice == normalizedCandidate {
			*value.target = choice
			return nil
		}
	}
	return fmt.Errorf(unsupportedChoiceTemplate, candidate, describeChoices(value.choices))
}

// Type names the flag value type in help output.
func (value *ChoiceValue) Type() string {
	return choiceValueTypeConstant
}

// AddChoiceFlag registers a flag accepting one of choices; highlightedChoice is
// capitalized in the usage to show which value applies when the flag is omitted.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, highlightedChoice string, choices []string, description string) {
	if flagSet == nil || target == nil || len(name) == 0 {
		return
	}
	flagSet.Var(NewChoiceValue(target, choices), name, FormatChoiceUsage(highlightedChoice, choices, description))
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	displayed := normalizeChoices(choices)
	for index, choice := range displayed {
		if choice == normalizedDefault {
			displayed[index] = strings.ToUpper(choice)
		}
	}
	return choicePlaceholderPrefix + strings.Join(displayed, choiceSeparatorLiteral) + choicePlaceholderSuffix
}

// normalizeChoices trims, lower-cases and de-duplicates choices, keeping their order.
func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		normalized = append(normalized, normalizedChoice)
	}
	return normalized
}

func describeChoices(choices []string) string {
	if len(choices) <= 1 {
		return strings.Join(choices, "")
	}
	return strings.Join(choices[:len(choices)-1], choiceListJoinerConstant) + choiceListFinalJoinConstant + choices[len(choices)-1]
}

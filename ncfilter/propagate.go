package ncfilter

import (
	"fmt"
	"strings"
)

// MatchAll is the FQN of an output rule that applies to every variable.
const MatchAll = "*"

// OutputRule requests a filter for matching variables on the output side
// of a copy, or with None set, requests that they get no filters at all.
type OutputRule struct {
	FQN  string
	Spec FilterSpec
	None bool
}

// Matches reports whether the rule applies to the variable fqn.
func (r OutputRule) Matches(fqn string) bool {
	return r.FQN == MatchAll || r.FQN == fqn
}

func (r OutputRule) String() string {
	fqn := strings.ReplaceAll(r.FQN, ",", `\,`)
	if r.None {
		return fqn + ",none"
	}
	return fqn + "," + FormatSpec(r.Spec)
}

// ParseOutputRule parses "fqn,spec" or "fqn,none". A comma inside the FQN
// is written \,.
func ParseOutputRule(text string) (OutputRule, error) {
	cut := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) && text[i+1] == ',' {
			i++
			continue
		}
		if text[i] == ',' {
			cut = i
			break
		}
	}
	if cut < 0 {
		return OutputRule{}, &ParseError{Text: text, Pos: len(text), Reason: "expected fqn,spec"}
	}

	fqn := strings.TrimSpace(strings.ReplaceAll(text[:cut], `\,`, ","))
	if fqn == "" {
		return OutputRule{}, &ParseError{Text: text, Pos: 0, Reason: "missing variable name"}
	}

	rest := text[cut+1:]
	if strings.EqualFold(strings.TrimSpace(rest), "none") {
		return OutputRule{FQN: fqn, None: true}, nil
	}
	spec, err := parseSpecAt(text, rest, cut+1)
	if err != nil {
		return OutputRule{}, err
	}
	return OutputRule{FQN: fqn, Spec: spec}, nil
}

// ParseOutputRules parses each text with ParseOutputRule.
func ParseOutputRules(texts []string) ([]OutputRule, error) {
	rules := make([]OutputRule, 0, len(texts))
	for i, text := range texts {
		rule, err := ParseOutputRule(text)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ResolveFilters returns the filters the variable fqn gets on output.
// Every rule matching fqn contributes its filter, in rule order; any
// matching None rule marks the output side as explicitly unfiltered.
func ResolveFilters(fqn string, suppress bool, rules []OutputRule, input []FilterSpec) []FilterSpec {
	var output []FilterSpec
	none := false
	for _, r := range rules {
		if !r.Matches(fqn) {
			continue
		}
		if r.None {
			none = true
			continue
		}
		output = append(output, r.Spec)
	}
	return PropagateFilters(suppress, output, input, none)
}

// wildcardOnly reports whether fqn is matched by a "*" rule and by no rule
// naming it exactly.
func wildcardOnly(fqn string, rules []OutputRule) bool {
	wild := false
	for _, r := range rules {
		switch r.FQN {
		case fqn:
			return false
		case MatchAll:
			wild = true
		}
	}
	return wild
}

// PropagateFilters merges output-side filter intent with the filters of the
// input variable. suppress drops input filters globally; outputNone means
// the output side asked for no filters. The first matching row wins:
//
//	suppress  output given  output none  result
//	true      no            -            none
//	true      yes           yes          none
//	true      yes           no           output
//	false     no            -            input
//	false     yes           yes          none
//	false     yes           no           output
//
// The result never aliases the arguments.
func PropagateFilters(suppress bool, output, input []FilterSpec, outputNone bool) []FilterSpec {
	given := len(output) > 0 || outputNone

	if suppress && !given {
		return []FilterSpec{}
	}
	if suppress && given && outputNone {
		return []FilterSpec{}
	}
	if suppress && given {
		return cloneSpecs(output)
	}
	if !given {
		return cloneSpecs(input)
	}
	if outputNone {
		return []FilterSpec{}
	}
	return cloneSpecs(output)
}

// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logic

import (
	"fmt"
	"strconv"

	"github.com/tombee/yamllogic/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Comparison is the right-hand side of a rule pair: a comparand plus the
// operator to apply. A bare literal in rule data becomes an implicit
// "eq" comparison; an explicit operator is written as a single-entry
// mapping from operator name to comparand.
//
// Op holds the operator name as written; it is normalized and validated
// during evaluation so that unknown operators in pairs behind a failing
// comparison are never reached, matching short-circuit semantics.
type Comparison struct {
	// Op is the operator name (e.g. "eq", "like", "<"). Empty means "eq".
	Op string `yaml:"op" json:"op"`

	// Value is the comparand, possibly containing a $name reference.
	Value string `yaml:"value" json:"value"`
}

// Pair is one field/comparison element of a rule. The field token may
// carry a leading "!" negation marker and a $name variable reference.
type Pair struct {
	Field string     `yaml:"field" json:"field"`
	Cmp   Comparison `yaml:"cmp" json:"cmp"`
}

// Rule is an ordered AND-chain of field/comparison pairs. The zero-length
// rule evaluates to true. Rules are plain data: the evaluator never
// mutates them, so one Rule can be evaluated many times against
// different variable environments.
type Rule []Pair

// ParseRule converts generic decoded configuration data into a Rule. The
// input must be a sequence with an even number of elements, alternating
// field scalars and comparisons; a comparison is either a scalar
// (implicit "eq") or a mapping with exactly one operator/comparand entry.
// Anything else fails with a ConfigError.
func ParseRule(data any) (Rule, error) {
	seq, ok := data.([]any)
	if !ok {
		return nil, &errors.ConfigError{
			Reason: fmt.Sprintf("unknown type %T: expected a sequence of field/comparison pairs", data),
		}
	}
	if len(seq)%2 != 0 {
		return nil, &errors.ConfigError{
			Reason: fmt.Sprintf("odd number of elements: %d", len(seq)),
		}
	}

	rule := make(Rule, 0, len(seq)/2)
	for i := 0; i < len(seq); i += 2 {
		field, err := scalarString(seq[i])
		if err != nil {
			return nil, &errors.ConfigError{
				Reason: fmt.Sprintf("field at index %d: %v", i, err),
			}
		}

		cmp, err := parseComparison(seq[i+1])
		if err != nil {
			return nil, err
		}

		rule = append(rule, Pair{Field: field, Cmp: cmp})
	}
	return rule, nil
}

// parseComparison converts one decoded comparison element.
func parseComparison(data any) (Comparison, error) {
	switch v := data.(type) {
	case map[string]any:
		if len(v) != 1 {
			return Comparison{}, &errors.ConfigError{
				Reason: fmt.Sprintf("operator mapping must have exactly one entry, got %d", len(v)),
			}
		}
		for op, raw := range v {
			value, err := scalarString(raw)
			if err != nil {
				return Comparison{}, &errors.ConfigError{
					Reason: fmt.Sprintf("comparand for operator %q: %v", op, err),
				}
			}
			return Comparison{Op: op, Value: value}, nil
		}
		return Comparison{}, nil // unreachable
	default:
		value, err := scalarString(data)
		if err != nil {
			return Comparison{}, &errors.ConfigError{
				Reason: fmt.Sprintf("comparison value: %v", err),
			}
		}
		return Comparison{Op: DefaultOperator, Value: value}, nil
	}
}

// scalarString renders a decoded YAML scalar as its string spelling.
func scalarString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case bool:
		return strconv.FormatBool(s), nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case uint64:
		return strconv.FormatUint(s, 10), nil
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("not a scalar (%T)", v)
	}
}

// UnmarshalYAML decodes a rule from a YAML sequence node, preserving the
// exact scalar spelling of fields and comparands (so a YAML 5 stays "5").
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return &errors.ConfigError{
			Reason: fmt.Sprintf("unknown type: rule must be a sequence, got %s at line %d", kindName(node.Kind), node.Line),
		}
	}
	if len(node.Content)%2 != 0 {
		return &errors.ConfigError{
			Reason: fmt.Sprintf("odd number of elements: %d", len(node.Content)),
		}
	}

	rule := make(Rule, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		fieldNode, cmpNode := node.Content[i], node.Content[i+1]

		if fieldNode.Kind != yaml.ScalarNode {
			return &errors.ConfigError{
				Reason: fmt.Sprintf("field must be a scalar, got %s at line %d", kindName(fieldNode.Kind), fieldNode.Line),
			}
		}

		cmp, err := comparisonFromNode(cmpNode)
		if err != nil {
			return err
		}

		rule = append(rule, Pair{Field: fieldNode.Value, Cmp: cmp})
	}

	*r = rule
	return nil
}

// comparisonFromNode decodes one comparison element from YAML.
func comparisonFromNode(node *yaml.Node) (Comparison, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return Comparison{Op: DefaultOperator, Value: node.Value}, nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return Comparison{}, &errors.ConfigError{
				Reason: fmt.Sprintf("operator mapping at line %d must have exactly one entry, got %d", node.Line, len(node.Content)/2),
			}
		}
		opNode, valueNode := node.Content[0], node.Content[1]
		if valueNode.Kind != yaml.ScalarNode {
			return Comparison{}, &errors.ConfigError{
				Reason: fmt.Sprintf("comparand for operator %q at line %d must be a scalar", opNode.Value, valueNode.Line),
			}
		}
		return Comparison{Op: opNode.Value, Value: valueNode.Value}, nil
	default:
		return Comparison{}, &errors.ConfigError{
			Reason: fmt.Sprintf("comparison must be a scalar or operator mapping, got %s at line %d", kindName(node.Kind), node.Line),
		}
	}
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

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
	"strings"

	"github.com/tombee/yamllogic/pkg/errors"
)

// Operator identifies one comparison operator from the fixed set a rule
// may use. The set is closed: anything else is rejected at evaluation
// time with an UnknownOperatorError.
type Operator int

const (
	// OpEq is lexical equality ("eq"), the implicit operator for literal
	// comparisons.
	OpEq Operator = iota
	// OpNe is lexical inequality ("ne").
	OpNe
	// OpLt is lexical less-than ("lt").
	OpLt
	// OpGt is lexical greater-than ("gt").
	OpGt
	// OpNumLt is numeric less-than ("<").
	OpNumLt
	// OpNumGt is numeric greater-than (">").
	OpNumGt
	// OpNumEq is numeric equality ("==").
	OpNumEq
	// OpMatch is regex match ("=~", alias "like").
	OpMatch
)

// DefaultOperator is the operator applied when a comparison gives a bare
// literal instead of an operator mapping.
const DefaultOperator = "eq"

// ParseOperator normalizes and validates an operator name. Names are
// case-insensitive and "like" is accepted as an alias for "=~".
func ParseOperator(name string) (Operator, error) {
	switch strings.ToLower(name) {
	case "eq":
		return OpEq, nil
	case "ne":
		return OpNe, nil
	case "lt":
		return OpLt, nil
	case "gt":
		return OpGt, nil
	case "<":
		return OpNumLt, nil
	case ">":
		return OpNumGt, nil
	case "==":
		return OpNumEq, nil
	case "=~", "like":
		return OpMatch, nil
	default:
		return 0, &errors.UnknownOperatorError{Op: name}
	}
}

// String returns the canonical spelling of the operator.
func (op Operator) String() string {
	switch op {
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpLt:
		return "lt"
	case OpGt:
		return "gt"
	case OpNumLt:
		return "<"
	case OpNumGt:
		return ">"
	case OpNumEq:
		return "=="
	case OpMatch:
		return "=~"
	default:
		return "unknown"
	}
}

// numeric reports whether the operator compares operands as numbers
// rather than as strings.
func (op Operator) numeric() bool {
	switch op {
	case OpNumLt, OpNumGt, OpNumEq:
		return true
	default:
		return false
	}
}

// exprToken returns the operator token used when building expression text
// for the restricted backend. Only valid for relational operators.
func (op Operator) exprToken() string {
	switch op {
	case OpEq, OpNumEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt, OpNumLt:
		return "<"
	case OpGt, OpNumGt:
		return ">"
	default:
		return ""
	}
}

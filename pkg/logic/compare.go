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
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/tombee/yamllogic/internal/log"
	"github.com/tombee/yamllogic/pkg/errors"
)

// unsafeRegexConstruct is the inline-code escape some pattern engines
// support ("(?{ ... })" and "(??{ ... })"). Comparands containing it are
// rejected before the pattern is ever compiled.
const unsafeRegexConstruct = "?{"

// numericPrefix extracts the leading number of a string the way a
// numeric comparison coerces its operands: optional sign, digits,
// fraction, exponent. Anything without a numeric prefix counts as 0.
var numericPrefix = regexp.MustCompile(`^[ \t]*([+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?)`)

// compareSingle evaluates one field/value comparison. A leading "!" on
// field negates the result; the marker is stripped before comparison so
// it never participates in the field's textual value.
func (e *Evaluator) compareSingle(field, value, opName string) (bool, error) {
	negate := false
	if rest, ok := strings.CutPrefix(field, "!"); ok {
		field = rest
		negate = true
	}

	op, err := ParseOperator(opName)
	if err != nil {
		return false, err
	}

	var result bool
	if op == OpMatch {
		result, err = e.matchPattern(field, value)
	} else {
		result, err = e.compareLiterals(field, value, op)
	}
	if err != nil {
		return false, err
	}

	if negate {
		result = !result
	}
	return result, nil
}

// matchPattern evaluates the regex branch: field =~ value.
func (e *Evaluator) matchPattern(field, pattern string) (bool, error) {
	if strings.Contains(pattern, unsafeRegexConstruct) {
		return false, &errors.SecurityError{Pattern: pattern, Construct: unsafeRegexConstruct}
	}

	log.Trace(e.logger, "matching against pattern",
		slog.String(log.FieldKey, field),
		slog.String(log.PatternKey, pattern))

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, &errors.EvaluationError{Expr: pattern, Cause: err}
	}
	return re.MatchString(field), nil
}

// compareLiterals evaluates the relational branch by rendering both
// operands as literals and running "<lit> <op> <lit>" through the
// restricted expression backend. Escaping keeps operand text from
// breaking out of its literal, so rule data can never inject expression
// syntax.
func (e *Evaluator) compareLiterals(field, value string, op Operator) (bool, error) {
	var src string
	if op.numeric() {
		src = fmt.Sprintf("%s %s %s", numericLiteral(field), op.exprToken(), numericLiteral(value))
	} else {
		src = fmt.Sprintf("%s %s %s", quote(field), op.exprToken(), quote(value))
	}

	program, err := e.compile(src)
	if err != nil {
		return false, &errors.EvaluationError{Expr: src, Cause: err}
	}

	out, err := expr.Run(program, nil)
	if err != nil {
		return false, &errors.EvaluationError{Expr: src, Cause: err}
	}

	result, ok := out.(bool)
	if !ok {
		return false, &errors.EvaluationError{
			Expr:  src,
			Cause: fmt.Errorf("expected boolean result, got %T", out),
		}
	}
	return result, nil
}

// numericLiteral renders a string operand as the numeric literal it
// coerces to: its leading number, or 0 when it has none.
func numericLiteral(s string) string {
	m := numericPrefix.FindStringSubmatch(s)
	if m == nil {
		return "0"
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

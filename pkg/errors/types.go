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

package errors

import "fmt"

// ConfigError represents a malformed rule structure.
// Use this for rule data that is not a pair sequence, has an odd number of
// elements, or carries a multi-entry operator mapping.
type ConfigError struct {
	// Reason explains what is wrong with the rule data
	Reason string

	// Cause is the underlying error (e.g., a YAML decode error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("rule config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// UnknownOperatorError is returned when a comparison names an operator
// outside the fixed operator set, after lowercasing and alias mapping.
type UnknownOperatorError struct {
	// Op is the operator name as written in the rule
	Op string
}

// Error implements the error interface.
func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Op)
}

// SecurityError is returned when a regex comparand contains a construct
// that could execute code inside the pattern engine. The offending pattern
// is rejected before it is ever compiled.
type SecurityError struct {
	// Pattern is the full rejected pattern
	Pattern string

	// Construct is the disallowed sequence found inside the pattern
	Construct string
}

// Error implements the error interface.
func (e *SecurityError) Error() string {
	return fmt.Sprintf("trapped unsafe regex construct %q in pattern %q", e.Construct, e.Pattern)
}

// TemplateError represents a variable interpolation failure: a malformed
// variable reference or a reference to a variable that is not present in
// the environment.
type TemplateError struct {
	// Token is the field or value token being interpolated
	Token string

	// Reason explains why interpolation failed
	Reason string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error in %q: %s", e.Token, e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// EvaluationError represents a comparison that failed to execute: the
// restricted expression backend rejected or failed to run the generated
// expression, or a regex pattern did not compile.
type EvaluationError struct {
	// Expr is the expression or pattern text that failed
	Expr string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation of %q failed: %v", e.Expr, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

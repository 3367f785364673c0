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
	"log/slog"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/tombee/yamllogic/internal/log"
)

// Evaluator evaluates rules against variable environments.
//
// The restricted comparison backend is configured once at construction:
// comparison expressions are compiled with no environment and must
// return a boolean, so only literal operands and comparison operators
// can appear in them. Compiled programs are cached, making repeated
// evaluation of the same rule cheap. An Evaluator is safe for concurrent
// use.
type Evaluator struct {
	logger *slog.Logger

	// sandbox options are fixed for the lifetime of the evaluator.
	sandbox []expr.Option

	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for trace-level comparison
// diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates a rule evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		logger:  slog.Default(),
		sandbox: []expr.Option{expr.AsBool()},
		cache:   make(map[string]*vm.Program),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate walks the rule's pairs in order, interpolating each side and
// delegating to the comparator. AND semantics: the first pair that
// compares false short-circuits the whole rule to false, without
// touching the remaining pairs. An empty rule is true.
//
// The rule is read-only to the evaluator and can be reused across calls
// with different environments.
func (e *Evaluator) Evaluate(rule Rule, vars Vars) (bool, error) {
	for _, pair := range rule {
		field, err := Interpolate(pair.Field, vars)
		if err != nil {
			return false, err
		}

		op := pair.Cmp.Op
		if op == "" {
			op = DefaultOperator
		}

		value, err := Interpolate(pair.Cmp.Value, vars)
		if err != nil {
			return false, err
		}

		log.Trace(e.logger, "comparing",
			slog.String(log.FieldKey, field),
			slog.String(log.OperatorKey, op),
			slog.String(log.ValueKey, value))

		ok, err := e.compareSingle(field, value, op)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// EvaluateData parses generic decoded configuration data into a rule and
// evaluates it. This is the entrypoint for callers holding the output of
// a YAML or JSON decoder rather than a typed Rule.
func (e *Evaluator) EvaluateData(data any, vars Vars) (bool, error) {
	rule, err := ParseRule(data)
	if err != nil {
		return false, err
	}
	return e.Evaluate(rule, vars)
}

// compile compiles comparison expression text under the sandbox options,
// caching the program.
func (e *Evaluator) compile(src string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.cache[src]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(src, e.sandbox...)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[src] = program
	e.mu.Unlock()

	return program, nil
}

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
	"regexp"

	"github.com/tombee/yamllogic/pkg/errors"
)

// Vars is the variable environment a rule is evaluated against. It is a
// flat mapping from variable name to string value and is never mutated
// by the engine.
type Vars map[string]string

// A variable token is "$name", optionally behind a "!" negation marker
// so "!$name" negates the comparison of name's value.
var (
	varToken = regexp.MustCompile(`^(!?)\$(.*)$`)
	varName  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Interpolate resolves a $name variable reference in token against vars.
// Tokens that do not start with the variable marker (ignoring a leading
// negation marker) are returned unchanged, so plain literals never
// trigger template processing. A reference to an undefined variable or a
// malformed variable name fails with a TemplateError; silent
// empty-string substitution would mask configuration bugs.
func Interpolate(token string, vars Vars) (string, error) {
	m := varToken.FindStringSubmatch(token)
	if m == nil {
		return token, nil
	}
	negation, name := m[1], m[2]

	if !varName.MatchString(name) {
		return "", &errors.TemplateError{
			Token:  token,
			Reason: fmt.Sprintf("invalid variable name %q", name),
		}
	}

	value, ok := vars[name]
	if !ok {
		return "", &errors.TemplateError{
			Token:  token,
			Reason: fmt.Sprintf("variable %q is not defined", name),
		}
	}

	return negation + value, nil
}

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

package eval

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/yamllogic/pkg/logic"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEval_InlineVars(t *testing.T) {
	path := writeRuleFile(t, `
rule:
  - $user
  - root
vars:
  user: root
`)

	out, err := runCommand(t, path)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestEval_FalseVerdictExitCode(t *testing.T) {
	path := writeRuleFile(t, `
rule:
  - $user
  - root
vars:
  user: nobody
`)

	out, err := runCommand(t, path)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Equal(t, "false\n", out)
}

func TestEval_BareSequenceWithVarFlags(t *testing.T) {
	path := writeRuleFile(t, `
- $host
- like: "^prod-"
`)

	out, err := runCommand(t, path, "--var", "host=prod-web-03")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestEval_VarFlagOverridesDocument(t *testing.T) {
	path := writeRuleFile(t, `
rule:
  - $env
  - production
vars:
  env: staging
`)

	_, err := runCommand(t, path)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)

	out, err := runCommand(t, path, "--var", "env=production")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    []string
	}{
		{
			name:    "malformed rule shape",
			content: "rule:\n  - $a\n  - 1\n  - $b\n",
		},
		{
			name:    "undefined variable",
			content: "rule:\n  - $ghost\n  - x\n",
		},
		{
			name:    "unsafe regex",
			content: "rule:\n  - $v\n  - like: \"(?{ 1 })\"\nvars:\n  v: x\n",
		},
		{
			name:    "invalid var flag",
			content: "rule: []\n",
			args:    []string{"--var", "novalue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRuleFile(t, tt.content)
			_, err := runCommand(t, append([]string{path}, tt.args...)...)
			require.Error(t, err)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}

func TestEval_MissingFile(t *testing.T) {
	_, err := runCommand(t, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestLoadDocument_BareSequence(t *testing.T) {
	path := writeRuleFile(t, "[$a, 1]")

	rule, vars, err := loadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, logic.Rule{{Field: "$a", Cmp: logic.Comparison{Op: "eq", Value: "1"}}}, rule)
	assert.Empty(t, vars)
}

func TestLoadDocument_EmptyFile(t *testing.T) {
	path := writeRuleFile(t, "")
	_, _, err := loadDocument(path)
	require.Error(t, err)
}

func TestParseVarFlags(t *testing.T) {
	vars, err := parseVarFlags([]string{"a=1", "b=x=y", "c="})
	require.NoError(t, err)
	assert.Equal(t, logic.Vars{"a": "1", "b": "x=y", "c": ""}, vars)

	_, err = parseVarFlags([]string{"=v"})
	require.Error(t, err)

	_, err = parseVarFlags([]string{"noequals"})
	require.Error(t, err)
}

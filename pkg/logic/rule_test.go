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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tombee/yamllogic/pkg/errors"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		name string
		data any
		want Rule
	}{
		{
			name: "empty sequence",
			data: []any{},
			want: Rule{},
		},
		{
			name: "implicit eq",
			data: []any{"$user", "root"},
			want: Rule{{Field: "$user", Cmp: Comparison{Op: "eq", Value: "root"}}},
		},
		{
			name: "explicit operator mapping",
			data: []any{"$host", map[string]any{"like": "^prod-"}},
			want: Rule{{Field: "$host", Cmp: Comparison{Op: "like", Value: "^prod-"}}},
		},
		{
			name: "numeric comparand keeps spelling",
			data: []any{"$count", map[string]any{"==": 5}},
			want: Rule{{Field: "$count", Cmp: Comparison{Op: "==", Value: "5"}}},
		},
		{
			name: "multiple pairs",
			data: []any{"$a", "1", "$b", "2"},
			want: Rule{
				{Field: "$a", Cmp: Comparison{Op: "eq", Value: "1"}},
				{Field: "$b", Cmp: Comparison{Op: "eq", Value: "2"}},
			},
		},
		{
			name: "boolean and float scalars",
			data: []any{"$flag", true, "$ratio", 0.5},
			want: Rule{
				{Field: "$flag", Cmp: Comparison{Op: "eq", Value: "true"}},
				{Field: "$ratio", Cmp: Comparison{Op: "eq", Value: "0.5"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRule(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRule_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data any
	}{
		{name: "non-sequence top level", data: map[string]any{"a": "b"}},
		{name: "scalar top level", data: "a"},
		{name: "nil top level", data: nil},
		{name: "odd number of elements", data: []any{"$a", "1", "$b"}},
		{name: "multi-entry operator mapping", data: []any{"$a", map[string]any{"eq": "1", "ne": "2"}}},
		{name: "empty operator mapping", data: []any{"$a", map[string]any{}}},
		{name: "sequence as comparand", data: []any{"$a", []any{"1", "2"}}},
		{name: "mapping as field", data: []any{map[string]any{"x": "y"}, "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRule(tt.data)
			require.Error(t, err)

			var cfgErr *errors.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestRule_UnmarshalYAML(t *testing.T) {
	doc := `
- $user
- root
- $host
- like: "^prod-"
- $count
- "==": 5
`
	var rule Rule
	require.NoError(t, yaml.Unmarshal([]byte(doc), &rule))

	want := Rule{
		{Field: "$user", Cmp: Comparison{Op: "eq", Value: "root"}},
		{Field: "$host", Cmp: Comparison{Op: "like", Value: "^prod-"}},
		{Field: "$count", Cmp: Comparison{Op: "==", Value: "5"}},
	}
	assert.Equal(t, want, rule)
}

func TestRule_UnmarshalYAML_PreservesScalarSpelling(t *testing.T) {
	// A YAML integer must compare as the text it was written as.
	var rule Rule
	require.NoError(t, yaml.Unmarshal([]byte("[$n, 5]"), &rule))
	assert.Equal(t, "5", rule[0].Cmp.Value)
}

func TestRule_UnmarshalYAML_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "mapping top level", doc: "a: b"},
		{name: "scalar top level", doc: "just a string"},
		{name: "odd number of elements", doc: "[$a, 1, $b]"},
		{name: "multi-entry operator mapping", doc: "[$a, {eq: 1, ne: 2}]"},
		{name: "nested sequence comparand", doc: "[$a, [1, 2]]"},
		{name: "sequence field", doc: "[[x], 1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rule Rule
			err := yaml.Unmarshal([]byte(tt.doc), &rule)
			require.Error(t, err)
		})
	}
}

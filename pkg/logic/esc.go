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

import "strings"

// esc backslash-escapes double quotes and backslashes in text so it can
// be embedded in a double-quoted literal without terminating it. Each
// character in extra is escaped as well.
func esc(text, extra string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\\' || r == '"' || strings.ContainsRune(extra, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// quote wraps text in double quotes with escaping applied, producing a
// string literal for the restricted expression backend. Line terminators
// are rendered as escape sequences so a multiline operand cannot end the
// literal early.
func quote(text string) string {
	escaped := esc(text, "")
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	return `"` + escaped + `"`
}

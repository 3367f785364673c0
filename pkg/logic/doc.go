// Package logic evaluates boolean rules embedded in YAML configuration.
//
// A rule is a flat sequence alternating between field tokens and
// comparisons, combined with AND semantics:
//
//	rule:
//	  - $user
//	  - root
//	  - $host
//	  - like: "^prod-"
//
// Field and value tokens may reference variables with a $name marker;
// values are resolved from a flat environment supplied per evaluation. A
// leading "!" on a field negates its comparison. Comparisons default to
// lexical equality; an explicit operator is given as a single-entry
// mapping from operator name to comparand.
//
// Supported operators: eq, ne, lt, gt (lexical), <, >, == (numeric), and
// =~ with alias "like" (regex match).
//
// Relational comparisons are rendered as literal-only expression text and
// run through the expr-lang/expr virtual machine with no environment, so
// rule data can never reach host state, I/O, or function calls. Regex
// comparands containing the inline-code construct "?{" are rejected
// before compilation.
//
// The evaluator caches compiled comparison programs and is safe for
// concurrent use.
package logic

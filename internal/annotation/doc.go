// Package annotation parses the text of datatest directives into rule sets
// and case sources.
//
// Two grammars are understood. The file-rule form binds function arguments
// to files found under a root directory:
//
//	"<root>", { <arg> in "<pattern>" [if !<predicate>], <arg> = "<template>", ... }
//
// `in` marks the pattern rule, whose regular expression is matched against
// candidate files; `=` marks a template rule, expanded with the pattern's
// submatches to locate a related file. The case-rule form is either a string
// literal naming a YAML cases file or an arbitrary Go expression producing
// cases, which is captured verbatim.
//
// Both parsers tokenize with go/scanner, so strings follow Go literal rules
// (raw `...` literals are the natural choice for regular expressions), and
// every diagnostic points at the offending token in the original source file.
package annotation

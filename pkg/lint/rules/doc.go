// Package rules provides the built-in lint rules for downlint.
//
// # Headings
//
//   - MD001: header-increment - Header levels should only increment by one level at a time
//   - MD002: first-header-h1 - First header should be a top level header
//   - MD003: header-style - Header style
//   - MD018: no-missing-space-atx - No space after hash on atx style header
//   - MD019: no-multiple-space-atx - Multiple spaces after hash on atx style header
//   - MD020: no-missing-space-closed-atx - No space inside hashes on closed atx style header
//   - MD021: no-multiple-space-closed-atx - Multiple spaces inside hashes on closed atx style header
//   - MD022: blanks-around-headers - Headers should be surrounded by blank lines
//   - MD023: header-start-left - Headers must start at the beginning of the line
//   - MD024: no-duplicate-header - Multiple headers with the same content
//   - MD025: single-h1 - Multiple top level headers in the same document
//   - MD026: no-trailing-punctuation - Trailing punctuation in header
//   - MD036: no-emphasis-as-header - Emphasis used instead of a header
//   - MD041: first-line-h1 - First line in file should be a top level header
//
// # Lists
//
//   - MD004: ul-style - Unordered list style
//   - MD005: list-indent - Inconsistent indentation for list items at the same level
//   - MD006: ul-start-left - Consider starting bulleted lists at the beginning of the line
//   - MD007: ul-indent - Unordered list indentation
//   - MD029: ol-prefix - Ordered list item prefix
//   - MD030: list-marker-space - Spaces after list markers
//   - MD032: blanks-around-lists - Lists should be surrounded by blank lines
//
// # Whitespace and layout
//
//   - MD009: no-trailing-spaces - Trailing spaces
//   - MD010: no-hard-tabs - Hard tabs
//   - MD012: no-multiple-blanks - Multiple consecutive blank lines
//   - MD013: line-length - Line length
//   - MD047: single-trailing-newline - File should end with a single newline character
//
// # Blockquotes
//
//   - MD027: no-multiple-space-blockquote - Multiple spaces after blockquote symbol
//   - MD028: no-blanks-blockquote - Blank line inside blockquote
//
// # Code
//
//   - MD014: commands-show-output - Dollar signs used before commands without showing output
//   - MD031: blanks-around-fences - Fenced code blocks should be surrounded by blank lines
//   - MD038: no-space-in-code - Spaces inside code span elements
//   - MD040: fenced-code-language - Fenced code blocks should have a language specified
//   - MD046: code-block-style - Code block style
//
// # Inline
//
//   - MD033: no-inline-html - Inline HTML
//   - MD034: no-bare-urls - Bare URL used
//   - MD035: hr-style - Horizontal rule style
//   - MD037: no-space-in-emphasis - Spaces inside emphasis markers
//   - MD039: no-space-in-links - Spaces inside link text
//
// # Registration
//
// Rules register with lint.DefaultRegistry from init in code order, which
// is also the order the engine runs them in. RegisterAll populates any
// other registry the same way.
package rules

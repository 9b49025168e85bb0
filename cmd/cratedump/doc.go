// Package main provides cratedump, a debugging tool that prints the decoded
// record tree of a single Serato crate file.
//
// Usage:
//
//	cratedump <file.crate> [text|json]
//
// Without a format argument the output is indented text when stdout is a
// terminal and JSON otherwise, so the tool can be piped into jq.
package main

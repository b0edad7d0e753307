// Package textutils provides text extraction and manipulation utilities.
package textutils

import (
	"regexp"
	"strings"
)

var columnSplit = regexp.MustCompile(`\s{2,}`)

// CollapseSpaces collapses every run of whitespace to a single space and
// trims the ends.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// SplitColumns splits one line of layout-preserving text into cells on
// runs of two or more whitespace characters. Single spaces stay inside a
// cell, so "Test Fund  10" yields ["Test Fund", "10"].
func SplitColumns(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return columnSplit.Split(line, -1)
}

// Blocks groups the lines of a text into runs of consecutive non-blank
// lines. Blank lines separate blocks and appear in none of them.
func Blocks(text string) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// =============================================================================
// TORG12 Parser - Value Normalizer
// =============================================================================
//
// Spreadsheet text is noisy: non-breaking spaces, manual line breaks inside
// header cells, soft hyphens, words split with a trailing hyphen, decimal
// commas and thousands separators. This module turns raw cell text into the
// canonical forms the recognizer compares against.
//
// FORMS:
//   - Header : lowercase, hyphenation removed, single-spaced; used for
//              matching labels and column headers against the vocabulary
//   - Value  : single-spaced, case preserved; numeric mode also turns the
//              decimal comma into a period
//
// Both forms are idempotent: applying them twice gives the same result.
//
// =============================================================================

package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	nbsp       = "\u00a0"
	softHyphen = "\u00ad"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// blankReplacer maps every whitespace variant the spreadsheets use to a plain space.
var blankReplacer = strings.NewReplacer(
	nbsp, " ",
	"\u2007", " ",
	"\u202f", " ",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

// =============================================================================
// HEADER FORM
// =============================================================================

// Header canonicalizes header and label text.
//
// Steps:
//   - Unicode NFC, soft hyphen removal
//   - whitespace variants (NBSP, line breaks, tabs) become single spaces
//   - a hyphen followed by a space is removed ("коли- чество" -> "количество")
//   - Russian lowercase, trim
func Header(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, softHyphen, "")
	s = collapse(s)
	s = strings.ReplaceAll(s, "- ", "")
	s = cases.Lower(language.Russian).String(s)
	return collapse(s)
}

// =============================================================================
// VALUE FORM
// =============================================================================

// Value canonicalizes cell values. Case is preserved. With numeric set the
// decimal comma is replaced by a period.
func Value(s string, numeric bool) string {
	s = norm.NFC.String(s)
	s = collapse(s)
	if numeric {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}

func collapse(s string) string {
	s = blankReplacer.Replace(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

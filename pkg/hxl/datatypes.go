// Package hxl implements the data model and filter pipeline for tabular
// datasets tagged with the Humanitarian Exchange Language (HXL) convention:
// a header row of human-readable text, a row of semantic hashtags with
// attributes (for example "#affected+f+children"), then data rows.
package hxl

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TokenPattern is the grammar for a single hashtag or attribute token.
const TokenPattern = `[A-Za-z][A-Za-z0-9_]*`

var whitespaceRE = regexp.MustCompile(`\s+`)

// isoDateRE recognises basic ISO 8601 dates plus the quarter and week
// extensions used in humanitarian reporting (2018, 2018Q1, 2018W12,
// 2018-03, 2018-03-07).
var isoDateRE = regexp.MustCompile(`(?i)^([12]\d\d\d)(?:Q([1-4])|W(\d\d?)|-(\d\d?)(?:-(\d\d?))?)?$`)

// asciiFold strips diacritical marks so that normalised strings compare
// the way a human reading latinised text would expect.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// IsEmpty reports whether a cell value is empty or whitespace only.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// NormaliseString prepares a value for comparison: trim, lower-case,
// collapse internal whitespace, fold diacritics.
func NormaliseString(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRE.ReplaceAllString(s, " ")
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	return s
}

// ParseNumber attempts to read a cell value as a number. It accepts
// ordinary decimal and exponent notation plus prefixed integer forms
// such as 0x1f, and tolerates surrounding whitespace and thousands
// separators.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n, true
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(i), true
	}
	stripped := strings.ReplaceAll(s, ",", "")
	if stripped != s {
		if n, err := strconv.ParseFloat(stripped, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// IsNumber reports whether a cell value parses as a number.
func IsNumber(s string) bool {
	_, ok := ParseNumber(s)
	return ok
}

// FormatNumber renders a number the way HXL output expects: no decimal
// point for whole values, shortest round-trip form otherwise.
func FormatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// dateLayouts are the non-ISO forms accepted when normalising dates.
// Month-first is tried before day-first, matching common humanitarian
// data sources.
var dateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"1-2-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2006/01/02",
}

// NormaliseDate attempts to read a value as a date and render it in a
// sortable ISO form. Partial dates keep their precision: "2018" and
// "2018-03" normalise to themselves, quarters and weeks normalise to
// "2018Q1" / "2018W07" style. Returns false if the value is not
// recognisably a date.
func NormaliseDate(s string) (string, bool) {
	v := NormaliseString(s)
	if v == "" {
		return "", false
	}
	if m := isoDateRE.FindStringSubmatch(v); m != nil {
		year := m[1]
		switch {
		case m[2] != "":
			return year + "q" + m[2], true
		case m[3] != "":
			week := m[3]
			if len(week) == 1 {
				week = "0" + week
			}
			return year + "w" + week, true
		case m[4] != "":
			month := m[4]
			if len(month) == 1 {
				month = "0" + month
			}
			if m[5] != "" {
				day := m[5]
				if len(day) == 1 {
					day = "0" + day
				}
				return year + "-" + month + "-" + day, true
			}
			return year + "-" + month, true
		default:
			return year, true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// IsDate reports whether a cell value parses as a date.
func IsDate(s string) bool {
	_, ok := NormaliseDate(s)
	return ok
}

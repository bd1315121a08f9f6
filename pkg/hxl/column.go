package hxl

import (
	"regexp"
	"sort"
	"strings"
)

// Column describes one logical column of an HXL dataset: the hashtag,
// its attributes, the original header text, and the 0-based position.
// Columns are created once when the hashtag row is recognised and are
// immutable afterwards; filters that change the column set clone and
// modify instead.
//
// Two columns are equal iff tag and attribute set match; attribute
// order never affects equality or matching, only display.
type Column struct {
	// Tag is the lower-cased hashtag including the leading "#", or
	// empty for an untagged column.
	Tag string
	// AttributeList preserves insertion order for display.
	AttributeList []string
	// Header is the original human-readable header text, if any.
	Header string
	// ColumnNumber is the 0-based position in the dataset, or -1.
	ColumnNumber int

	attributes map[string]bool
}

var hashtagRE = regexp.MustCompile(
	`^\s*(#` + TokenPattern + `)((?:\s*\+\s*` + TokenPattern + `)*)\s*$`,
)

var attributeRE = regexp.MustCompile(`\+\s*(` + TokenPattern + `)`)

// NewColumn builds a column from parts, lower-casing the tag and
// attributes and de-duplicating attributes while preserving order.
func NewColumn(tag string, attributes []string, header string) *Column {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag != "" && !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	c := &Column{
		Tag:          tag,
		Header:       header,
		ColumnNumber: -1,
		attributes:   map[string]bool{},
	}
	for _, attr := range attributes {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if attr == "" || c.attributes[attr] {
			continue
		}
		c.attributes[attr] = true
		c.AttributeList = append(c.AttributeList, attr)
	}
	return c
}

// ParseColumn parses one cell of a candidate hashtag row. The result is
// three-way, which the fuzzy hashtag-row detector depends on:
//
//   - empty or whitespace cell: (nil, nil) — not a hashtag candidate
//   - non-empty cell that fails the grammar: (nil, *TagSpecError)
//   - valid hashtag spec: a new Column
func ParseColumn(raw string, header string, columnNumber int) (*Column, error) {
	if IsEmpty(raw) {
		return nil, nil
	}
	m := hashtagRE.FindStringSubmatch(raw)
	if m == nil {
		return nil, &TagSpecError{Spec: raw, Reason: "must be #token with optional +attribute modifiers"}
	}
	var attrs []string
	for _, a := range attributeRE.FindAllStringSubmatch(m[2], -1) {
		attrs = append(attrs, a[1])
	}
	c := NewColumn(m[1], attrs, header)
	c.ColumnNumber = columnNumber
	return c, nil
}

// MustParseColumn is ParseColumn for specs known good at compile time.
// Panics on error or on an empty spec.
func MustParseColumn(raw string) *Column {
	c, err := ParseColumn(raw, "", -1)
	if err != nil {
		panic(err)
	}
	if c == nil {
		panic("empty column spec")
	}
	return c
}

// HasAttribute reports whether the column carries the attribute.
func (c *Column) HasAttribute(attribute string) bool {
	return c.attributes[strings.ToLower(attribute)]
}

// Attributes returns the attribute tokens in insertion order.
func (c *Column) Attributes() []string {
	return c.AttributeList
}

// DisplayTag renders the column in hashtag-row form, preserving
// attribute order. Untagged columns render as the empty string.
func (c *Column) DisplayTag() string {
	if c.Tag == "" {
		return ""
	}
	if len(c.AttributeList) == 0 {
		return c.Tag
	}
	return c.Tag + "+" + strings.Join(c.AttributeList, "+")
}

// Equal reports column equality: same tag and same attribute set,
// regardless of attribute order, header, or position.
func (c *Column) Equal(other *Column) bool {
	if other == nil || c.Tag != other.Tag || len(c.attributes) != len(other.attributes) {
		return false
	}
	for attr := range c.attributes {
		if !other.attributes[attr] {
			return false
		}
	}
	return true
}

// Key returns a canonical string usable as a map key, identical for
// equal columns.
func (c *Column) Key() string {
	attrs := sortedKeys(c.attributes)
	return c.Tag + "+" + strings.Join(attrs, "+")
}

// Clone returns a copy the caller may modify.
func (c *Column) Clone() *Column {
	out := NewColumn(c.Tag, c.AttributeList, c.Header)
	out.ColumnNumber = c.ColumnNumber
	return out
}

// WithAttribute returns a copy carrying one extra attribute.
func (c *Column) WithAttribute(attribute string) *Column {
	out := NewColumn(c.Tag, append(append([]string{}, c.AttributeList...), attribute), c.Header)
	out.ColumnNumber = c.ColumnNumber
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package hxl

import (
	"regexp"
	"strings"
)

// TagPattern matches a hashtag plus attribute constraints against a
// Column. Patterns are parsed once from a spec string such as
// "#sector+cluster-old!" and reused as immutable matchers:
//
//	#tag      the hashtag itself ("*" matches any tagged column)
//	+attr     attribute that must be present
//	-attr     attribute that must be absent
//	!         absolute: the column may carry no attributes beyond the
//	          ones listed with +
type TagPattern struct {
	Tag               string
	IncludeAttributes map[string]bool
	ExcludeAttributes map[string]bool
	IsAbsolute        bool
}

var tagPatternRE = regexp.MustCompile(
	`^\s*#?(` + TokenPattern + `|\*)((?:\s*[+-]\s*` + TokenPattern + `)*)\s*(!?)\s*$`,
)

var attributeTokenRE = regexp.MustCompile(`([+-])\s*(` + TokenPattern + `)`)

// ParseTagPattern parses a tag-pattern spec. The leading "#" is
// optional and matching is case-insensitive. Combining absolute mode
// with an exclusion is rejected at parse time.
func ParseTagPattern(spec string) (*TagPattern, error) {
	m := tagPatternRE.FindStringSubmatch(spec)
	if m == nil {
		return nil, &TagSpecError{Spec: spec, Reason: "must be #token with optional +attr/-attr modifiers"}
	}
	p := &TagPattern{
		Tag:               "#" + strings.ToLower(m[1]),
		IncludeAttributes: map[string]bool{},
		ExcludeAttributes: map[string]bool{},
		IsAbsolute:        m[3] == "!",
	}
	for _, attr := range attributeTokenRE.FindAllStringSubmatch(m[2], -1) {
		name := strings.ToLower(attr[2])
		if attr[1] == "+" {
			p.IncludeAttributes[name] = true
		} else {
			p.ExcludeAttributes[name] = true
		}
	}
	if p.IsAbsolute && len(p.ExcludeAttributes) > 0 {
		return nil, &TagSpecError{Spec: spec, Reason: "absolute pattern may not exclude attributes"}
	}
	return p, nil
}

// MustParseTagPattern is ParseTagPattern for specs known good at
// compile time. Panics on error.
func MustParseTagPattern(spec string) *TagPattern {
	p, err := ParseTagPattern(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseTagPatterns parses a comma-separated spec string, or a list of
// specs, into a pattern list. An empty spec yields an empty list.
func ParseTagPatterns(specs ...string) ([]*TagPattern, error) {
	var patterns []*TagPattern
	for _, spec := range specs {
		for _, part := range strings.Split(spec, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			p, err := ParseTagPattern(part)
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, p)
		}
	}
	return patterns, nil
}

// IsWildcard reports whether the pattern matches any hashtag.
func (p *TagPattern) IsWildcard() bool {
	return p.Tag == "#*"
}

// Match tests the pattern against a column. Untagged columns never
// match, even for the wildcard.
func (p *TagPattern) Match(column *Column) bool {
	if column == nil || column.Tag == "" {
		return false
	}
	if !p.IsWildcard() && p.Tag != column.Tag {
		return false
	}
	for attr := range p.IncludeAttributes {
		if !column.HasAttribute(attr) {
			return false
		}
	}
	for attr := range p.ExcludeAttributes {
		if column.HasAttribute(attr) {
			return false
		}
	}
	if p.IsAbsolute {
		for _, attr := range column.AttributeList {
			if !p.IncludeAttributes[attr] {
				return false
			}
		}
	}
	return true
}

// MatchAny reports whether any pattern in the list matches the column.
func MatchAny(column *Column, patterns []*TagPattern) bool {
	for _, p := range patterns {
		if p.Match(column) {
			return true
		}
	}
	return false
}

// String renders the pattern in its canonical spec form.
func (p *TagPattern) String() string {
	var sb strings.Builder
	sb.WriteString(p.Tag)
	for _, attr := range sortedKeys(p.IncludeAttributes) {
		sb.WriteString("+")
		sb.WriteString(attr)
	}
	for _, attr := range sortedKeys(p.ExcludeAttributes) {
		sb.WriteString("-")
		sb.WriteString(attr)
	}
	if p.IsAbsolute {
		sb.WriteString("!")
	}
	return sb.String()
}

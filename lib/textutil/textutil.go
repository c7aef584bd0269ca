package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// LabelKey turns a table label like "Registration Number:" into
// "registration_number".
func LabelKey(label string) string {
	label = strings.TrimSpace(label)
	label = strings.TrimRight(label, ":")
	label = strings.ToLower(label)
	return strings.ReplaceAll(label, " ", "_")
}

const fuzzyThreshold = 0.85

// MatchCourse reports whether query refers to a course. Codes only match
// by substring since they differ by a character or two, titles also match
// by Jaro-Winkler similarity of the normalized strings.
func MatchCourse(query, code, title string) bool {
	query = NormalizeName(query)
	if query == "" {
		return true
	}
	code = NormalizeName(code)
	if code != "" && strings.Contains(code, query) {
		return true
	}
	title = NormalizeName(title)
	if title == "" {
		return false
	}
	if strings.Contains(title, query) {
		return true
	}
	return matchr.JaroWinkler(query, title, false) >= fuzzyThreshold
}

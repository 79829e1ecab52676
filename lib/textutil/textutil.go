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

func NormalizeEmail(email string) string {
	return strings.Trim(strings.ToLower(email), " \t\n")
}

// FullName joins name parts, skipping empty ones ("Jan", "van", "Dijk").
func FullName(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		nonEmpty = append(nonEmpty, p)
	}
	return strings.Join(nonEmpty, " ")
}

// NameSimilarity returns the Jaro-Winkler similarity of two names after
// normalization, 1 means identical.
func NameSimilarity(left, right string) float64 {
	left = NormalizeName(left)
	right = NormalizeName(right)
	if left == "" || right == "" {
		return 0
	}
	if left == right {
		return 1
	}
	return matchr.JaroWinkler(left, right, false)
}

package textutil

import (
	"regexp"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases name and drops all whitespace, so "김치 찌개" and
// "김치찌개" compare equal.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.TrimSpace(name)
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, NormalizeName(m)) {
			return true
		}
	}
	return false
}

// substringScore is the floor for names that contain the term outright.
const substringScore = 0.9

type Suggestion struct {
	Name  string
	Score float64
}

// Suggest ranks names by similarity to term and returns at most limit of
// them scoring at least threshold, best first. Ties keep input order and
// duplicate names are reported once.
func Suggest(term string, names []string, limit int, threshold float64) []Suggestion {
	normalizedTerm := NormalizeName(term)
	if normalizedTerm == "" || limit <= 0 {
		return nil
	}

	seen := map[string]struct{}{}
	var out []Suggestion
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		normalized := NormalizeName(name)
		if normalized == "" {
			continue
		}
		score := matchr.JaroWinkler(normalizedTerm, normalized, false)
		if strings.Contains(normalized, normalizedTerm) && score < substringScore {
			score = substringScore
		}
		if normalized == normalizedTerm {
			score = 1
		}
		if score < threshold {
			continue
		}
		out = append(out, Suggestion{Name: name, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

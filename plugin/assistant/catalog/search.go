// Package catalog ranks course records against a free-text query using
// token-overlap scoring.
package catalog

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/edusphere/edusphere/plugin/assistant/timeout"
	"github.com/edusphere/edusphere/store"
)

// Result is one ranked catalog hit.
type Result struct {
	Course *store.CourseRecord
	Score  int
}

// foldTransformer strips diacritics so "mathématiques" and "mathematiques"
// compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lower-cases and removes accents.
func fold(s string) string {
	folded, _, err := transform.String(foldTransformer, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

// tokenMatches reports whether one query token is found in the folded
// course text. A trailing plural "s" on the token is tolerated, so "maths"
// still hits "mathematiques".
func tokenMatches(haystack, token string) bool {
	if strings.Contains(haystack, token) {
		return true
	}
	if singular := strings.TrimSuffix(token, "s"); singular != token && len(singular) >= 3 {
		return strings.Contains(haystack, singular)
	}
	return false
}

// Search scores every course against the query and returns at most
// MaxSearchResults hits with score > 0, ordered by descending score, ties
// broken by descending rating, then original catalog order. The ordering is
// deterministic for a fixed catalog and query.
func Search(query string, courses []*store.CourseRecord) []Result {
	query = fold(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	tokens := strings.Fields(query)

	var results []Result
	for _, course := range courses {
		haystack := fold(course.Title + " " + course.Description + " " + course.Category + " " + course.Level)

		score := 0
		for _, token := range tokens {
			if tokenMatches(haystack, token) {
				score++
			}
		}
		// A full-phrase hit outranks the same tokens scattered around.
		if strings.Contains(haystack, query) {
			score++
		}

		if score > 0 {
			results = append(results, Result{Course: course, Score: score})
		}
	}

	// Stable sort keeps original catalog order as the final tiebreak.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Course.Rating > results[j].Course.Rating
	})

	if len(results) > timeout.MaxSearchResults {
		results = results[:timeout.MaxSearchResults]
	}
	return results
}

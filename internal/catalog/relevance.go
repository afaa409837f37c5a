package catalog

import (
	"strings"

	"github.com/mirs/station-backend/pkg/db/models"
)

// Relevance ranks, lowest first.
const (
	rankExactCode = iota
	rankCodePrefix
	rankNamePrefix
	rankCodeContains
	rankNameContains
	rankNoMatch
)

// rank scores entry against an already folded term. The SQL in
// Repository.searchPage computes the same ranks over search_name.
func rank(entry models.CatalogEntry, term string) int {
	if term == "" {
		return rankExactCode
	}
	code := strings.ToLower(entry.Code)
	name := models.FoldSearchText(entry.Name)
	switch {
	case code == term:
		return rankExactCode
	case strings.HasPrefix(code, term):
		return rankCodePrefix
	case strings.HasPrefix(name, term):
		return rankNamePrefix
	case strings.Contains(code, term):
		return rankCodeContains
	case strings.Contains(name, term):
		return rankNameContains
	default:
		return rankNoMatch
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

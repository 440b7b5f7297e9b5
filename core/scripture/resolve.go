package scripture

import "strings"

// Resolve maps a user-typed book name or abbreviation to a canonical book.
//
// Candidates are tried in order: exact canonical name, known abbreviation
// (case-insensitive), then the first book in registry order whose name
// starts with the candidate. A blank candidate never resolves.
func Resolve(candidate string) (string, bool) {
	name := strings.TrimSpace(candidate)
	if name == "" {
		return "", false
	}
	if IsBook(name) {
		return name, true
	}

	lower := strings.ToLower(name)
	if book, ok := abbreviations[lower]; ok {
		return book, true
	}

	for i, l := range lowerNames {
		if strings.HasPrefix(l, lower) {
			return catalog[i].Name, true
		}
	}
	return "", false
}

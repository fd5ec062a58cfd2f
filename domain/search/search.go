// Package search decouples raw user search input from the index engine.
package search

import (
	"strconv"
	"strings"
)

// Query represents the structured parameters for a document search.
type Query struct {
	RawInput string // The original input from the user
	Terms    string // The actual text to match against the index
	Limit    int    // Pagination: number of results
}

// NewQuery parses a raw string to extract command-line style arguments.
// Example: report draft --limit 5
func NewQuery(input string) *Query {
	query := &Query{
		RawInput: input,
		Limit:    10, // Default limit
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			if key == "limit" {
				if n, err := strconv.Atoi(parts[i+1]); err == nil && n > 0 {
					query.Limit = n
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}

		textTerms = append(textTerms, part)
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}

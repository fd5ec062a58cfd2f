package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewQuery(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedTerms string
		expectedLimit int
	}{
		{
			name:          "plain terms with default limit",
			input:         "report draft",
			expectedTerms: "report draft",
			expectedLimit: 10,
		},
		{
			name:          "explicit limit flag",
			input:         "report draft --limit 5",
			expectedTerms: "report draft",
			expectedLimit: 5,
		},
		{
			name:          "flag before terms",
			input:         "--limit 3 meeting notes",
			expectedTerms: "meeting notes",
			expectedLimit: 3,
		},
		{
			name:          "invalid limit value ignored",
			input:         "report --limit many",
			expectedTerms: "report",
			expectedLimit: 10,
		},
		{
			name:          "negative limit ignored",
			input:         "report --limit -2",
			expectedTerms: "report",
			expectedLimit: 10,
		},
		{
			name:          "empty input",
			input:         "",
			expectedTerms: "",
			expectedLimit: 10,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			query := NewQuery(tc.input)
			req.Equal(tc.input, query.RawInput)
			req.Equal(tc.expectedTerms, query.Terms)
			req.Equal(tc.expectedLimit, query.Limit)
		})
	}
}

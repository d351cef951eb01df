package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrepareSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single word gets prefix match", "jazz", "jazz:*"},
		{"words joined with AND", "jazz night", "jazz:* & night:*"},
		{"surrounding whitespace trimmed", "  jazz  night ", "jazz:* & night:*"},
		{"blank query", "   ", ""},
		{"operators pass through", "jazz & !rock", "jazz & !rock"},
		{"existing prefix match passes through", "jaz:*", "jaz:*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, prepareSearchQuery(tt.query))
		})
	}
}

func TestContainsSearchOperators(t *testing.T) {
	assert.False(t, containsSearchOperators("jazz night"))
	assert.True(t, containsSearchOperators("jazz | rock"))
	assert.True(t, containsSearchOperators("(jazz)"))
	assert.True(t, containsSearchOperators("jazz:*"))
}

// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain ascii", "Alice", "Alice"},
		{"trims whitespace", "  Alice  ", "Alice"},
		{"collapses internal whitespace", "Alice   van  Santen", "Alice van Santen"},
		{"composes combining accent", "Léa", "Léa"},
		{"already composed", "Léa", "Léa"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Name(tt.input))
		})
	}
}

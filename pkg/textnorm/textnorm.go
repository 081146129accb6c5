// Copyright (c) 2026 Parlo. All rights reserved.
// Author: le.huyanh.dev@gmail.com

// Package textnorm canonicalizes user-supplied Unicode text before storage.
//
// # Usage
//
// Display names arrive from many client platforms, and the same visible name
// can be encoded as different byte sequences (é as one codepoint or as
// e + combining acute). Normalizing to NFC before persisting keeps equality
// checks and uniqueness constraints meaningful.
package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Name canonicalizes a display name for storage.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFC (composes combining sequences into single codepoints).
// 2. Collapses internal runs of whitespace into single spaces.
// 3. Trims leading and trailing whitespace.
func Name(s string) string {
	// 1. Compose combining sequences
	result := norm.NFC.String(s)

	// 2. Collapse internal whitespace
	result = strings.Join(strings.Fields(result), " ")

	return result
}

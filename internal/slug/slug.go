// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that do not decompose into base + combining mark under NFD.
var foldLetters = map[rune]string{
	'ß': "ss",
	'æ': "ae",
	'œ': "oe",
	'ø': "o",
	'đ': "d",
	'ð': "d",
	'ł': "l",
	'þ': "th",
	'ı': "i",
}

// symbols spelled out as their own word in the slug.
var symbolWords = map[rune]string{
	'&': "and",
	'$': "dollar",
	'%': "percent",
	'|': "or",
	'<': "less",
	'>': "greater",
	'¢': "cent",
	'£': "pound",
	'¥': "yen",
	'€': "euro",
	'₹': "indian rupee",
	'₽': "russian ruble",
	'©': "c",
	'®': "r",
	'™': "tm",
	'∞': "infinity",
	'♥': "love",
	'∑': "sum",
}

// Generate creates a URL-friendly slug from the given string. Diacritics are
// stripped, whitespace, hyphens and underscores act as separators, common
// symbols become words ("a & b" → "a-and-b"), and every other character
// outside [a-z0-9] is dropped.
// Example: "Crème Brûlée, 2026!" → "creme-brulee-2026"
func Generate(s string) string {
	// Transformers carry state, so build a fresh chain per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	write := func(chunk string) {
		if pendingSep && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingSep = false
		b.WriteString(chunk)
	}

	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			write(string(r))
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingSep = true
		default:
			if repl, ok := foldLetters[r]; ok {
				write(repl)
				continue
			}
			word, ok := symbolWords[r]
			if !ok {
				continue
			}
			for _, part := range strings.Fields(word) {
				pendingSep = true
				write(part)
			}
			pendingSep = true
		}
	}

	return b.String()
}

// WithSuffix appends a timestamp-derived uniqueness suffix to base. Retries
// after a lost insert race pass attempt > 0 so the result still differs when
// the clock has not advanced.
func WithSuffix(base string, now time.Time, attempt int) string {
	suffix := strconv.FormatInt(now.UnixMilli(), 10)
	if attempt > 0 {
		suffix += "-" + strconv.Itoa(attempt)
	}
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

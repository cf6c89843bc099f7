// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

// TestGenerate exercises the slug generator with a broad range of inputs
// covering typical titles, special characters, unicode, edge cases, and
// boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Hello World 2026", want: "hello-world-2026"},
		{name: "single word", input: "GoLang", want: "golang"},
		{
			name:  "mixed case sentence",
			input: "The Quick Brown Fox Jumps Over the Lazy Dog",
			want:  "the-quick-brown-fox-jumps-over-the-lazy-dog",
		},

		// --- Special characters ---
		{name: "punctuation marks", input: "Hello, World! How's it going?", want: "hello-world-hows-it-going"},
		{name: "ampersand and at sign", input: "Rock & Roll @ the Arena", want: "rock-and-roll-the-arena"},
		{name: "parentheses and brackets", input: "Version (2.0) [Beta]", want: "version-20-beta"},
		{name: "slashes and pipes", input: "Frontend/Backend | Full Stack", want: "frontendbackend-or-full-stack"},
		{name: "hash and dollar", input: "Issue #42 costs $100", want: "issue-42-costs-dollar-100"},
		{name: "ampersand without spaces", input: "R&D", want: "r-and-d"},
		{name: "spaced ampersand", input: "a & b", want: "a-and-b"},
		{name: "percent sign", input: "50% Off", want: "50-percent-off"},
		{name: "angle brackets", input: "a < b > c", want: "a-less-b-greater-c"},
		{name: "currency words", input: "€5 or ₹10", want: "euro-5-or-indian-rupee-10"},
		{name: "trademark", input: "Brand™ Guide", want: "brand-tm-guide"},
		{name: "plus and equals", input: "1 + 1 = 2", want: "1-1-2"},
		{name: "underscores are separators", input: "snake_case_title", want: "snake-case-title"},

		// --- Diacritics ---
		{name: "french accents", input: "Crème Brûlée à la carte", want: "creme-brulee-a-la-carte"},
		{name: "german umlauts", input: "Über die Brücke", want: "uber-die-brucke"},
		{name: "spanish tilde", input: "Mañana en España", want: "manana-en-espana"},
		{name: "vietnamese", input: "Nguyễn Nhật Ánh", want: "nguyen-nhat-anh"},
		{name: "sharp s", input: "Straße", want: "strasse"},
		{name: "scandinavian", input: "Søren Ærø", want: "soren-aero"},
		{name: "polish l", input: "Łódź", want: "lodz"},
		{name: "uppercase accented", input: "ÉCOLE", want: "ecole"},
		{name: "chinese characters dropped", input: "你好 World", want: "world"},
		{name: "emoji dropped", input: "Launch 🚀 Day", want: "launch-day"},

		// --- Whitespace handling ---
		{name: "leading spaces", input: "   hello world", want: "hello-world"},
		{name: "trailing spaces", input: "hello world   ", want: "hello-world"},
		{name: "multiple consecutive spaces collapsed", input: "hello    world", want: "hello-world"},
		{name: "tabs are separators", input: "hello\tworld", want: "hello-world"},
		{name: "newlines are separators", input: "hello\nworld", want: "hello-world"},

		// --- Hyphen handling ---
		{name: "leading hyphens", input: "---hello world", want: "hello-world"},
		{name: "trailing hyphens", input: "hello world---", want: "hello-world"},
		{name: "multiple hyphens between words", input: "hello---world", want: "hello-world"},
		{name: "single hyphen preserved", input: "well-known fact", want: "well-known-fact"},
		{name: "hyphens and spaces mixed", input: "  --hello -- world--  ", want: "hello-world"},

		// --- Edge cases ---
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "     ", want: ""},
		{name: "only hyphens", input: "-----", want: ""},
		{name: "only special characters", input: "!@#^*()", want: ""},
		{name: "only symbol words", input: "!@#$%^&*()", want: "dollar-percent-and"},
		{name: "single character", input: "A", want: "a"},
		{name: "single number", input: "5", want: "5"},

		// --- Numbers ---
		{name: "numbers with spaces", input: "12 34 56", want: "12-34-56"},
		{name: "version number", input: "Version 2.0.1", want: "version-201"},
		{name: "date-like string", input: "2026-02-25", want: "2026-02-25"},

		// --- Realistic blog titles ---
		{
			name:  "tech blog title",
			input: "How to Deploy Go Apps on Kubernetes (2026 Edition)",
			want:  "how-to-deploy-go-apps-on-kubernetes-2026-edition",
		},
		{name: "colon separated title", input: "Go: The Complete Developer Guide", want: "go-the-complete-developer-guide"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_StrictAlphabet checks that every output only uses [a-z0-9-]
// with no leading, trailing or doubled hyphens.
func TestGenerate_StrictAlphabet(t *testing.T) {
	valid := regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)
	inputs := []string{
		"Ça va? Très bien!!",
		"  __init__ ",
		"a--b__c  d",
		"ÀÁÂÃÄÅ ĀĂĄ",
		"tab\tand\r\nnewline",
		"<script>alert(1)</script>",
		strings.Repeat("x-", 50),
	}

	for _, input := range inputs {
		got := Generate(input)
		if !valid.MatchString(got) {
			t.Errorf("Generate(%q) = %q, not a strict slug", input, got)
		}
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"hello-world", "my-blog-post-2026", "a", "123"} {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

// TestGenerate_Deterministic calls Generate concurrently to make sure the
// per-call transformer chain does not leak state between calls.
func TestGenerate_Deterministic(t *testing.T) {
	done := make(chan string, 50)
	for i := 0; i < 50; i++ {
		go func() { done <- Generate("Crème Brûlée Recipes") }()
	}
	for i := 0; i < 50; i++ {
		if got := <-done; got != "creme-brulee-recipes" {
			t.Fatalf("got %q", got)
		}
	}
}

func TestWithSuffix(t *testing.T) {
	now := time.UnixMilli(1767225600123)

	if got := WithSuffix("hello-world", now, 0); got != "hello-world-1767225600123" {
		t.Errorf("attempt 0: got %q", got)
	}
	if got := WithSuffix("hello-world", now, 2); got != "hello-world-1767225600123-2" {
		t.Errorf("attempt 2: got %q", got)
	}
	if got := WithSuffix("", now, 0); got != "1767225600123" {
		t.Errorf("empty base: got %q", got)
	}
	if WithSuffix("a", now, 0) == WithSuffix("a", now, 1) {
		t.Error("retries within the same millisecond must differ")
	}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("title is required"), want: http.StatusBadRequest},
		{name: "conflict maps to 400", err: Conflict("slug exists", nil), want: http.StatusBadRequest},
		{name: "authentication", err: Authentication("login required"), want: http.StatusUnauthorized},
		{name: "authorization", err: Authorization("forbidden"), want: http.StatusForbidden},
		{name: "not found", err: NotFound("post %s", "x"), want: http.StatusNotFound},
		{name: "internal", err: Internal("boom", errors.New("db down")), want: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("unclassified"), want: http.StatusInternalServerError},
		{name: "wrapped validation", err: fmt.Errorf("create post: %w", Validation("bad")), want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessageHidesInternalCause(t *testing.T) {
	err := Internal("query failed", errors.New("password authentication failed for user"))
	assert.Equal(t, "Internal server error", PublicMessage(err))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("raw")))
	assert.Equal(t, "title is required", PublicMessage(Validation("title is required")))
}

func TestIsAndUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := fmt.Errorf("create category: %w", Conflict("slug already exists", cause))

	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(nil, KindInternal))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "conflict", KindOf(err).String())
}

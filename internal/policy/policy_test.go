// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
)

func TestAllowMatrix(t *testing.T) {
	admin := &identity.Identity{Role: models.RoleAdmin}
	author := &identity.Identity{Role: models.RoleAuthor}
	reader := &identity.Identity{Role: models.RoleReader}

	tests := []struct {
		class RouteClass
		id    *identity.Identity
		want  bool
	}{
		{PublicRead, nil, true},
		{PublicRead, reader, true},

		{Authenticated, nil, false},
		{Authenticated, reader, true},
		{Authenticated, author, true},

		{AdminArea, nil, false},
		{AdminArea, reader, false},
		{AdminArea, author, true},
		{AdminArea, admin, true},

		{ContentWrite, reader, false},
		{ContentWrite, author, true},
		{ContentWrite, admin, true},

		{Destructive, nil, false},
		{Destructive, reader, false},
		{Destructive, author, false},
		{Destructive, admin, true},

		{RouteClass(99), admin, false},
	}

	for _, tt := range tests {
		name := tt.class.String() + "/anonymous"
		if tt.id != nil {
			name = tt.class.String() + "/" + string(tt.id.Role)
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.class, tt.id))
		})
	}
}

func TestCheckErrorKinds(t *testing.T) {
	author := &identity.Identity{Role: models.RoleAuthor}

	assert.NoError(t, Check(PublicRead, nil))
	assert.True(t, apperr.Is(Check(Destructive, nil), apperr.KindAuthentication))

	// A non-admin deleting a category is forbidden, not unauthenticated.
	err := Check(Destructive, author)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
	assert.Equal(t, 403, apperr.HTTPStatus(err))
}

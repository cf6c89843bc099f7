// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/store"
)

type fakeRecounter struct {
	result store.RecountResult
	err    error
}

func (f fakeRecounter) Recount(ctx context.Context) (store.RecountResult, error) {
	return f.result, f.err
}

func TestMaintenanceRecount(t *testing.T) {
	c := newFakeCache()
	h := NewMaintenance(fakeRecounter{result: store.RecountResult{PostsCorrected: 2, CategoriesCorrected: 1}}, &fakeAudit{}, c)

	rr := serve(h.Recount, httptest.NewRequest(http.MethodPost, "/admin/maintenance/recount", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`{"success":true,"message":"Counters recomputed","data":{"postsCorrected":2,"categoriesCorrected":1}}`,
		rr.Body.String())
	assert.Equal(t, 1, c.invalidations)

	h = NewMaintenance(fakeRecounter{}, &fakeAudit{}, c)
	rr = serve(h.Recount, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, c.invalidations, "nothing to invalidate when categories were accurate")

	h = NewMaintenance(fakeRecounter{err: apperr.Internal("recount", assert.AnError)}, &fakeAudit{}, c)
	rr = serve(h.Recount, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestMaintenanceAudit(t *testing.T) {
	audit := &fakeAudit{}
	for i := 0; i < 3; i++ {
		audit.Log(context.Background(), adminID, "post", uuid.New(), "create")
	}
	h := NewMaintenance(fakeRecounter{}, audit, newFakeCache())

	rr := serve(h.Audit, httptest.NewRequest(http.MethodGet, "/admin/audit?limit=2", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeMap(t, rr)["entries"], 2)
}

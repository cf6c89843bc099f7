// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handlers_test.go provides request builders and in-memory collaborators
// shared by the handler unit tests.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/store"
)

// jsonRequest builds a request with body encoded as JSON. A string body is
// sent verbatim.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func asCaller(r *http.Request, id *identity.Identity) *http.Request {
	return r.WithContext(identity.WithIdentity(r.Context(), id))
}

func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, r)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), "body: %s", rr.Body.String())
	return m
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decodeMap(t, rr)["error"].(string)
	return msg
}

var (
	adminID  = &identity.Identity{UserID: uuid.New(), Username: "admin", Role: models.RoleAdmin}
	authorID = &identity.Identity{UserID: uuid.New(), Username: "author", Role: models.RoleAuthor}
	readerID = &identity.Identity{UserID: uuid.New(), Username: "reader", Role: models.RoleReader}
)

// ---------- testify mocks ----------

type mockPosts struct{ mock.Mock }

func (m *mockPosts) Create(ctx context.Context, author *identity.Identity, in store.CreatePostInput) (*models.Post, error) {
	args := m.Called(ctx, author, in)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPosts) Update(ctx context.Context, id uuid.UUID, patch store.PostPatch) (bool, error) {
	args := m.Called(ctx, id, patch)
	return args.Bool(0), args.Error(1)
}

func (m *mockPosts) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPosts) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPosts) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPosts) List(ctx context.Context, filter store.PostFilter) (*store.PostPage, error) {
	args := m.Called(ctx, filter)
	p, _ := args.Get(0).(*store.PostPage)
	return p, args.Error(1)
}

func (m *mockPosts) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPosts) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]models.TagCount)
	return tags, args.Error(1)
}

type mockComments struct{ mock.Mock }

func (m *mockComments) Create(ctx context.Context, author *identity.Identity, in store.CreateCommentInput) (*models.Comment, error) {
	args := m.Called(ctx, author, in)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

func (m *mockComments) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	args := m.Called(ctx, postID)
	c, _ := args.Get(0).([]models.Comment)
	return c, args.Error(1)
}

func (m *mockComments) List(ctx context.Context, f store.CommentFilter) (*store.CommentPage, error) {
	args := m.Called(ctx, f)
	p, _ := args.Get(0).(*store.CommentPage)
	return p, args.Error(1)
}

func (m *mockComments) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CommentStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *mockComments) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// ---------- in-memory fakes ----------

// fakeCategories keeps categories in a map and records post-count deltas.
type fakeCategories struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*models.Category
	deltas map[uuid.UUID]int64

	createErr error
	listCalls int
}

func newFakeCategories(cats ...*models.Category) *fakeCategories {
	f := &fakeCategories{byID: map[uuid.UUID]*models.Category{}, deltas: map[uuid.UUID]int64{}}
	for _, c := range cats {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCategories) Create(ctx context.Context, in store.CreateCategoryInput) (*models.Category, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := &models.Category{ID: uuid.New(), Name: in.Name, Slug: in.Slug, Color: in.Color}
	f.mu.Lock()
	f.byID[c.ID] = c
	f.mu.Unlock()
	return c, nil
}

func (f *fakeCategories) List(ctx context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := []models.Category{}
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategories) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeCategories) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) Update(ctx context.Context, id uuid.UUID, patch store.CategoryPatch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if ok && patch.Name != nil {
		c.Name = *patch.Name
	}
	return ok, nil
}

func (f *fakeCategories) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[id]
	delete(f.byID, id)
	return ok, nil
}

func (f *fakeCategories) UpdatePostCount(ctx context.Context, id uuid.UUID, delta int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deltas[id] += delta
	_, ok := f.byID[id]
	return ok, nil
}

// fakeCache is an in-memory ResponseCache.
type fakeCache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	invalidations int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	return b, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = body
}

func (c *fakeCache) InvalidateCategories(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	c.invalidations++
}

// fakeAudit records "entity:action" strings.
type fakeAudit struct {
	mu      sync.Mutex
	entries []string
}

func (a *fakeAudit) Log(ctx context.Context, actor *identity.Identity, entityType string, entityID uuid.UUID, action string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entityType+":"+action)
}

func (a *fakeAudit) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []models.AuditEntry{}
	for i, e := range a.entries {
		if i >= limit {
			break
		}
		out = append(out, models.AuditEntry{ID: int64(i + 1), Action: e})
	}
	return out, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/models"
)

func commentCount(t *testing.T, s *PostStore, id uuid.UUID) int64 {
	t.Helper()
	p, err := s.FindByID(context.Background(), id)
	if err != nil || p == nil {
		t.Fatalf("FindByID: %v (post=%v)", err, p)
	}
	return p.CommentCount
}

func TestCommentStoreCreateIncrementsCount(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	s := NewCommentStore(db)
	author := testAuthor(t, db, models.RoleAuthor)
	ctx := context.Background()

	p := testPost(t, db, author, CreatePostInput{})

	anon, err := s.Create(ctx, nil, CreateCommentInput{
		PostID: p.ID, Content: "Nice post", AuthorName: "Visitor", AuthorEmail: "v@example.com",
	})
	if err != nil {
		t.Fatalf("anonymous Create: %v", err)
	}
	if anon.Status != models.CommentStatusApproved {
		t.Errorf("status: got %q, want approved", anon.Status)
	}
	if anon.AuthorID != nil {
		t.Error("anonymous comment should have no author id")
	}

	signed, err := s.Create(ctx, author, CreateCommentInput{
		PostID: p.ID, Content: "Thanks!", ParentID: &anon.ID,
		AuthorName: "ignored", AuthorEmail: "ignored@example.com",
	})
	if err != nil {
		t.Fatalf("signed-in Create: %v", err)
	}
	if signed.AuthorName != author.Username || signed.AuthorID == nil || *signed.AuthorID != author.UserID {
		t.Errorf("signed-in comment should use the session identity, got %q", signed.AuthorName)
	}

	if got := commentCount(t, posts, p.ID); got != 2 {
		t.Errorf("commentCount = %d, want 2", got)
	}

	list, err := s.ListByPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if len(list) != 2 || list[0].ID != signed.ID {
		t.Errorf("expected newest first, got %d comments", len(list))
	}
}

func TestCommentStoreCreateValidation(t *testing.T) {
	db := testDB(t)
	s := NewCommentStore(db)
	author := testAuthor(t, db, models.RoleAuthor)
	ctx := context.Background()

	p := testPost(t, db, author, CreatePostInput{})
	other := testPost(t, db, author, CreatePostInput{})

	_, err := s.Create(ctx, nil, CreateCommentInput{PostID: p.ID, Content: "hi", AuthorName: "Anon"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("anonymous without email: got %v, want validation", err)
	}

	_, err = s.Create(ctx, author, CreateCommentInput{PostID: p.ID, Content: "   "})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("blank content: got %v, want validation", err)
	}

	_, err = s.Create(ctx, author, CreateCommentInput{PostID: uuid.New(), Content: "orphan"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing post: got %v, want not found", err)
	}

	parent, err := s.Create(ctx, author, CreateCommentInput{PostID: other.ID, Content: "on other"})
	if err != nil {
		t.Fatalf("Create parent: %v", err)
	}
	_, err = s.Create(ctx, author, CreateCommentInput{PostID: p.ID, Content: "reply", ParentID: &parent.ID})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("cross-post parent: got %v, want validation", err)
	}

	// Failed creates must not have moved the counter.
	if got := commentCount(t, NewPostStore(db), p.ID); got != 0 {
		t.Errorf("commentCount = %d after failed creates, want 0", got)
	}
}

func TestCommentStoreDeleteDecrementsByOne(t *testing.T) {
	db := testDB(t)
	posts := NewPostStore(db)
	s := NewCommentStore(db)
	author := testAuthor(t, db, models.RoleAuthor)
	ctx := context.Background()

	p := testPost(t, db, author, CreatePostInput{})
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		c, err := s.Create(ctx, author, CreateCommentInput{PostID: p.ID, Content: "c"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, c.ID)
	}

	ok, err := s.Delete(ctx, ids[0])
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	if got := commentCount(t, posts, p.ID); got != 2 {
		t.Errorf("commentCount = %d, want 2", got)
	}

	ok, err = s.Delete(ctx, uuid.New())
	if err != nil {
		t.Fatalf("Delete(missing): %v", err)
	}
	if ok {
		t.Error("Delete(missing) should return false")
	}
	if got := commentCount(t, posts, p.ID); got != 2 {
		t.Errorf("commentCount changed to %d after deleting a missing comment", got)
	}
}

func TestCommentStoreStatusAndList(t *testing.T) {
	db := testDB(t)
	s := NewCommentStore(db)
	author := testAuthor(t, db, models.RoleAuthor)
	ctx := context.Background()

	p := testPost(t, db, author, CreatePostInput{})
	c, err := s.Create(ctx, author, CreateCommentInput{PostID: p.ID, Content: "moderate me"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, st := range []models.CommentStatus{models.CommentStatusRejected, models.CommentStatusApproved, models.CommentStatusPending} {
		ok, err := s.UpdateStatus(ctx, c.ID, st)
		if err != nil || !ok {
			t.Fatalf("UpdateStatus(%s): ok=%v err=%v", st, ok, err)
		}
	}

	if _, err := s.UpdateStatus(ctx, c.ID, "spam"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("invalid status: got %v, want validation", err)
	}

	visible, _ := s.ListByPost(ctx, p.ID)
	if len(visible) != 0 {
		t.Errorf("pending comment should not be listed publicly")
	}

	page, err := s.List(ctx, CommentFilter{Status: models.CommentStatusPending, Limit: 1000})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Limit != MaxPageLimit {
		t.Errorf("limit = %d, want clamp to %d", page.Limit, MaxPageLimit)
	}
	found := false
	for _, cm := range page.Comments {
		if cm.Status != models.CommentStatusPending {
			t.Errorf("unexpected status %q", cm.Status)
		}
		if cm.ID == c.ID {
			found = true
		}
	}
	if !found && page.Total <= int64(page.Limit) {
		t.Error("pending comment missing from moderation listing")
	}
}

func TestCommentStoreUpdateStatusUnchanged(t *testing.T) {
	db := testDB(t)
	s := NewCommentStore(db)
	author := testAuthor(t, db, models.RoleAuthor)
	ctx := context.Background()

	p := testPost(t, db, author, CreatePostInput{})
	c, err := s.Create(ctx, author, CreateCommentInput{PostID: p.ID, Content: "already approved"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := s.UpdateStatus(ctx, c.ID, c.Status)
	if err != nil || !ok {
		t.Fatalf("UpdateStatus to the current status: ok=%v err=%v", ok, err)
	}
	after, err := s.FindByID(ctx, c.ID)
	if err != nil || after == nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !after.UpdatedAt.Equal(c.UpdatedAt) {
		t.Errorf("updatedAt moved on a no-op status change: %v -> %v", c.UpdatedAt, after.UpdatedAt)
	}

	ok, err = s.UpdateStatus(ctx, uuid.New(), models.CommentStatusApproved)
	if err != nil || ok {
		t.Errorf("unknown id: ok=%v err=%v, want false, nil", ok, err)
	}
}

func TestCommentStoreListPastTheEnd(t *testing.T) {
	db := testDB(t)
	s := NewCommentStore(db)
	ctx := context.Background()

	first, err := s.List(ctx, CommentFilter{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, pg := range []int{first.TotalPages + 1, math.MaxInt} {
		page, err := s.List(ctx, CommentFilter{Page: pg, Limit: 10})
		if err != nil {
			t.Fatalf("List(page=%d): %v", pg, err)
		}
		if page.Comments == nil || len(page.Comments) != 0 {
			t.Errorf("page %d should be an empty, non-nil slice", pg)
		}
		if page.Total < first.Total {
			t.Errorf("page %d total = %d, want at least %d", pg, page.Total, first.Total)
		}
	}
}

// Deleting a post leaves its comments in place.
func TestCommentStorePostDeleteDoesNotCascade(t *testing.T) {
	db := testDB(t)
	s := NewCommentStore(db)
	author := testAuthor(t, db, models.RoleAuthor)
	ctx := context.Background()

	p := testPost(t, db, author, CreatePostInput{})
	c, err := s.Create(ctx, author, CreateCommentInput{PostID: p.ID, Content: "stays"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM comments WHERE id = $1", c.ID) })

	if _, err := NewPostStore(db).Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete post: %v", err)
	}
	got, err := s.FindByID(ctx, c.ID)
	if err != nil || got == nil {
		t.Fatalf("comment should survive post deletion: %v", err)
	}

	// Deleting the orphan still works.
	if ok, err := s.Delete(ctx, c.ID); err != nil || !ok {
		t.Errorf("Delete orphan: ok=%v err=%v", ok, err)
	}
}

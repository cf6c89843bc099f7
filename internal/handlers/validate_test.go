// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"

	"github.com/vue-rookie/blog-platform/internal/apperr"
)

func TestPlainText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"hello", "hello"},
		{"<b>bold</b> move", "bold move"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"  <p>padded</p>  ", "padded"},
		{`<img src=x onerror="alert(1)">`, ""},
		{"1 < 2", "1 < 2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, plainText(tt.in), tt.in)
	}
}

func TestValidationErrorPicksFirstField(t *testing.T) {
	err := validationError(validation.Errors{
		"title":   errors.New("title broken"),
		"content": errors.New("content broken"),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "content broken", apperr.PublicMessage(err))

	assert.NoError(t, validationError(nil))
	assert.True(t, apperr.Is(validationError(validation.NewInternalError(errors.New("bad rule"))), apperr.KindInternal))
}

func TestUpdatePostPatchCategory(t *testing.T) {
	empty := ""
	p := updatePostRequest{CategoryID: &empty}.patch()
	assert.True(t, p.ClearCategory)
	assert.Nil(t, p.CategoryID)

	id := "9b2f7c4e-3f7a-4a55-9d55-1c1c2f3e4d5a"
	p = updatePostRequest{CategoryID: &id}.patch()
	assert.False(t, p.ClearCategory)
	if assert.NotNil(t, p.CategoryID) {
		assert.Equal(t, id, p.CategoryID.String())
	}

	p = updatePostRequest{}.patch()
	assert.False(t, p.ClearCategory)
	assert.Nil(t, p.CategoryID)
	assert.True(t, updatePostRequest{}.empty())
}

func TestCreateCommentRequestForCaller(t *testing.T) {
	req := createCommentRequest{
		PostID:      "9b2f7c4e-3f7a-4a55-9d55-1c1c2f3e4d5a",
		Content:     "hi",
		AuthorEmail: " A@B.COM ",
	}.forCaller(nil)
	assert.True(t, req.anonymous)
	assert.Equal(t, "a@b.com", req.AuthorEmail)
	assert.Error(t, req.Validate())

	req = createCommentRequest{PostID: req.PostID, Content: "hi"}.forCaller(readerID)
	assert.NoError(t, req.Validate())
}

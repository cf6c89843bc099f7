// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"html"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/microcosm-cc/bluemonday"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/store"
)

// Field limits for request bodies.
const (
	maxTitleLen       = 300
	maxSlugLen        = 300
	maxContentLen     = 100_000
	maxExcerptLen     = 1_000
	maxSEODescLen     = 500
	maxTags           = 20
	maxTagLen         = 50
	maxNameLen        = 100
	maxDescriptionLen = 1_000
	maxCommentLen     = 5_000
	maxBioLen         = 500
	maxLocationLen    = 100
)

var (
	hexColor     = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	usernameRule = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	totpCode     = regexp.MustCompile(`^[0-9]{6}$`)

	// User-supplied plain text must not carry markup.
	plainTextPolicy = bluemonday.StrictPolicy()
)

// plainText strips every HTML tag from s and decodes the entities the
// sanitizer leaves behind, so "Tom &amp; Jerry" is stored as typed.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainTextPolicy.Sanitize(s)))
}

// validationError turns an ozzo-validation result into an apperr error
// carrying the first failing field's message.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return apperr.Internal("validate request", err)
	}
	var errs validation.Errors
	if errors.As(err, &errs) && len(errs) > 0 {
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return apperr.Validation("%s", errs[keys[0]].Error())
	}
	return apperr.Validation("%s", err.Error())
}

var postStatusRule = validation.In(
	models.PostStatusDraft, models.PostStatusPublished, models.PostStatusArchived,
).Error("Status must be draft, published or archived")

type createPostRequest struct {
	Title          string            `json:"title"`
	Content        string            `json:"content"`
	Slug           string            `json:"slug"`
	Excerpt        *string           `json:"excerpt"`
	FeaturedImage  *string           `json:"featuredImage"`
	CategoryID     *string           `json:"categoryId"`
	Tags           []string          `json:"tags"`
	Status         models.PostStatus `json:"status"`
	SEOTitle       *string           `json:"seoTitle"`
	SEODescription *string           `json:"seoDescription"`
}

func (r createPostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("Title and content are required"),
			validation.RuneLength(0, maxTitleLen).Error("Title is too long (max 300 characters)"),
		),
		validation.Field(&r.Content,
			validation.Required.Error("Title and content are required"),
			validation.RuneLength(0, maxContentLen).Error("Content is too long (max 100,000 characters)"),
		),
		validation.Field(&r.Slug, validation.RuneLength(0, maxSlugLen)),
		validation.Field(&r.Excerpt, validation.RuneLength(0, maxExcerptLen)),
		validation.Field(&r.FeaturedImage, validation.When(r.FeaturedImage != nil && *r.FeaturedImage != "",
			is.URL.Error("Featured image must be a URL"))),
		validation.Field(&r.CategoryID, validation.When(r.CategoryID != nil && *r.CategoryID != "",
			is.UUID.Error("Invalid categoryId"))),
		validation.Field(&r.Tags,
			validation.Length(0, maxTags).Error("Too many tags (max 20)"),
			validation.Each(validation.RuneLength(0, maxTagLen).Error("Tag is too long (max 50 characters)")),
		),
		validation.Field(&r.Status, postStatusRule),
		validation.Field(&r.SEOTitle, validation.RuneLength(0, maxTitleLen)),
		validation.Field(&r.SEODescription, validation.RuneLength(0, maxSEODescLen)),
	)
}

func (r createPostRequest) input() store.CreatePostInput {
	return store.CreatePostInput{
		Title:          r.Title,
		Content:        r.Content,
		Slug:           r.Slug,
		Excerpt:        r.Excerpt,
		FeaturedImage:  emptyToNil(r.FeaturedImage),
		CategoryID:     parseOptionalUUID(r.CategoryID),
		Tags:           r.Tags,
		Status:         r.Status,
		SEOTitle:       emptyToNil(r.SEOTitle),
		SEODescription: emptyToNil(r.SEODescription),
	}
}

// updatePostRequest is a partial update. An empty categoryId clears the
// category; an absent one leaves it unchanged.
type updatePostRequest struct {
	Title          *string            `json:"title"`
	Content        *string            `json:"content"`
	Slug           *string            `json:"slug"`
	Excerpt        *string            `json:"excerpt"`
	FeaturedImage  *string            `json:"featuredImage"`
	CategoryID     *string            `json:"categoryId"`
	Tags           *[]string          `json:"tags"`
	Status         *models.PostStatus `json:"status"`
	SEOTitle       *string            `json:"seoTitle"`
	SEODescription *string            `json:"seoDescription"`
}

func (r updatePostRequest) Validate() error {
	var tags []string
	if r.Tags != nil {
		tags = *r.Tags
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.NilOrNotEmpty.Error("Title cannot be empty"),
			validation.RuneLength(0, maxTitleLen).Error("Title is too long (max 300 characters)"),
		),
		validation.Field(&r.Content,
			validation.NilOrNotEmpty.Error("Content cannot be empty"),
			validation.RuneLength(0, maxContentLen).Error("Content is too long (max 100,000 characters)"),
		),
		validation.Field(&r.Slug, validation.NilOrNotEmpty.Error("Slug cannot be empty"), validation.RuneLength(0, maxSlugLen)),
		validation.Field(&r.Excerpt, validation.RuneLength(0, maxExcerptLen)),
		validation.Field(&r.FeaturedImage, validation.When(r.FeaturedImage != nil && *r.FeaturedImage != "",
			is.URL.Error("Featured image must be a URL"))),
		validation.Field(&r.CategoryID, validation.When(r.CategoryID != nil && *r.CategoryID != "",
			is.UUID.Error("Invalid categoryId"))),
		validation.Field(&r.Tags, validation.By(func(any) error {
			return validation.Validate(tags,
				validation.Length(0, maxTags).Error("Too many tags (max 20)"),
				validation.Each(validation.RuneLength(0, maxTagLen).Error("Tag is too long (max 50 characters)")),
			)
		})),
		validation.Field(&r.Status, postStatusRule),
		validation.Field(&r.SEOTitle, validation.RuneLength(0, maxTitleLen)),
		validation.Field(&r.SEODescription, validation.RuneLength(0, maxSEODescLen)),
	)
}

func (r updatePostRequest) patch() store.PostPatch {
	p := store.PostPatch{
		Title:          r.Title,
		Content:        r.Content,
		Slug:           r.Slug,
		Excerpt:        r.Excerpt,
		FeaturedImage:  r.FeaturedImage,
		Tags:           r.Tags,
		Status:         r.Status,
		SEOTitle:       r.SEOTitle,
		SEODescription: r.SEODescription,
	}
	if r.CategoryID != nil {
		if *r.CategoryID == "" {
			p.ClearCategory = true
		} else {
			p.CategoryID = parseOptionalUUID(r.CategoryID)
		}
	}
	return p
}

func (r updatePostRequest) empty() bool {
	return r == updatePostRequest{}
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (r createCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("Name is required"),
			validation.RuneLength(0, maxNameLen).Error("Name is too long (max 100 characters)"),
		),
		validation.Field(&r.Slug, validation.RuneLength(0, maxSlugLen)),
		validation.Field(&r.Description, validation.RuneLength(0, maxDescriptionLen)),
		validation.Field(&r.Color, validation.Match(hexColor).Error("Color must be a hex value like #059669")),
	)
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (r updateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.NilOrNotEmpty.Error("Name cannot be empty"),
			validation.RuneLength(0, maxNameLen).Error("Name is too long (max 100 characters)"),
		),
		validation.Field(&r.Slug, validation.NilOrNotEmpty.Error("Slug cannot be empty"), validation.RuneLength(0, maxSlugLen)),
		validation.Field(&r.Description, validation.RuneLength(0, maxDescriptionLen)),
		validation.Field(&r.Color, validation.Match(hexColor).Error("Color must be a hex value like #059669")),
	)
}

type createCommentRequest struct {
	PostID      string  `json:"postId"`
	Content     string  `json:"content"`
	AuthorName  string  `json:"authorName"`
	AuthorEmail string  `json:"authorEmail"`
	ParentID    *string `json:"parentId"`

	anonymous bool
}

func (r createCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostID,
			validation.Required.Error("Post ID and content are required"),
			is.UUID.Error("Invalid postId"),
		),
		validation.Field(&r.Content,
			validation.Required.Error("Post ID and content are required"),
			validation.RuneLength(0, maxCommentLen).Error("Comment is too long (max 5,000 characters)"),
		),
		validation.Field(&r.AuthorName,
			validation.When(r.anonymous, validation.Required.Error("Name and email are required for anonymous comments")),
			validation.RuneLength(0, maxNameLen),
		),
		validation.Field(&r.AuthorEmail,
			validation.When(r.anonymous, validation.Required.Error("Name and email are required for anonymous comments")),
			is.EmailFormat.Error("Invalid email address"),
		),
		validation.Field(&r.ParentID, validation.When(r.ParentID != nil && *r.ParentID != "",
			is.UUID.Error("Invalid parentId"))),
	)
}

// forCaller sanitises the text fields and records whether the caller is
// anonymous, which makes name and email mandatory.
func (r createCommentRequest) forCaller(id *identity.Identity) createCommentRequest {
	r.anonymous = id == nil
	r.Content = plainText(r.Content)
	r.AuthorName = plainText(r.AuthorName)
	r.AuthorEmail = strings.ToLower(strings.TrimSpace(r.AuthorEmail))
	return r
}

func (r createCommentRequest) input() store.CreateCommentInput {
	postID, _ := uuidFromString(r.PostID)
	return store.CreateCommentInput{
		PostID:      postID,
		Content:     r.Content,
		AuthorName:  r.AuthorName,
		AuthorEmail: r.AuthorEmail,
		ParentID:    parseOptionalUUID(r.ParentID),
	}
}

type commentStatusRequest struct {
	Status models.CommentStatus `json:"status"`
}

func (r commentStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required.Error("Status is required"),
			validation.In(models.CommentStatusPending, models.CommentStatusApproved, models.CommentStatusRejected).
				Error("Status must be pending, approved or rejected"),
		),
	)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required.Error("Username, email and password are required"),
			validation.RuneLength(3, 30).Error("Username must be 3-30 characters"),
			validation.Match(usernameRule).Error("Username may contain only letters, digits, '-' and '_'"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("Username, email and password are required"),
			is.EmailFormat.Error("Invalid email address"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("Username, email and password are required"),
			validation.RuneLength(store.MinPasswordLength, 128).Error("Password must be at least 6 characters"),
		),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("Email and password are required")),
		validation.Field(&r.Password, validation.Required.Error("Email and password are required")),
	)
}

type totpRequest struct {
	Code string `json:"code"`
}

func (r totpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code,
			validation.Required.Error("Verification code is required"),
			validation.Match(totpCode).Error("Verification code must be 6 digits"),
		),
	)
}

type updateUserRequest struct {
	IsActive *bool `json:"isActive"`
}

func (r updateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IsActive, validation.NotNil.Error("isActive is required")),
	)
}

type profileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
	Avatar   *string `json:"avatar"`
}

func (r profileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.NilOrNotEmpty.Error("Username cannot be empty"),
			validation.RuneLength(3, 30).Error("Username must be 3-30 characters"),
			validation.Match(usernameRule).Error("Username may contain only letters, digits, '-' and '_'"),
		),
		validation.Field(&r.Bio, validation.RuneLength(0, maxBioLen)),
		validation.Field(&r.Location, validation.RuneLength(0, maxLocationLen)),
		validation.Field(&r.Avatar, validation.When(r.Avatar != nil && *r.Avatar != "",
			is.URL.Error("Avatar must be a URL"))),
	)
}

func (r profileRequest) patch() store.ProfilePatch {
	return store.ProfilePatch{
		Username: r.Username,
		Bio:      sanitizePtr(r.Bio),
		Location: sanitizePtr(r.Location),
		Avatar:   r.Avatar,
	}
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := plainText(*s)
	return &v
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

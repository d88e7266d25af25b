package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestBlogStatusValid(t *testing.T) {
	assert.True(t, BlogDraft.Valid())
	assert.True(t, BlogPublished.Valid())
	assert.False(t, BlogStatus("archived").Valid())
}

func TestDefaultExcerpt(t *testing.T) {
	short := "A short post body."
	assert.Equal(t, short, DefaultExcerpt(short))

	long := strings.Repeat("é", 200)
	excerpt := DefaultExcerpt(long)
	assert.Equal(t, ExcerptLength, len([]rune(excerpt)))
	assert.True(t, strings.HasPrefix(long, excerpt))
}

func TestIDs(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 24)
	assert.True(t, ValidID(id))
	assert.NotEqual(t, id, NewID())

	assert.False(t, ValidID("not-an-id"))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("zzzzzzzzzzzzzzzzzzzzzzzz"))
}

func TestBlogPatch(t *testing.T) {
	assert.True(t, BlogPatch{}.Empty())

	title := "New title"
	status := BlogPublished
	patch := BlogPatch{Title: &title, Status: &status}
	assert.False(t, patch.Empty())

	b := &Blog{Title: "Old", Content: "unchanged body", Status: BlogDraft}
	patch.Apply(b)
	assert.Equal(t, "New title", b.Title)
	assert.Equal(t, "unchanged body", b.Content)
	assert.Equal(t, BlogPublished, b.Status)
}

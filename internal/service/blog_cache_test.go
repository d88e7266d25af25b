package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blogdesk/internal/cache"
	"blogdesk/internal/logger"
	"blogdesk/internal/model"
)

func newCachedBlogService(t *testing.T, repo *MockBlogRepository) (BlogService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return()
	return NewBlogService(repo, client, time.Minute, pub, logger.Discard()), mr
}

func TestBlogService_ListPublishedServesFromCache(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBlogRepository)
	published := []model.Blog{{ID: model.NewID(), Title: "Hello World", Status: model.BlogPublished, Views: 3}}
	repo.On("ListPublished", mock.Anything).Return(published, nil).Once()

	svc, mr := newCachedBlogService(t, repo)

	first, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	second, err := svc.ListPublished(ctx)
	require.NoError(t, err)

	assert.Equal(t, published[0].ID, first[0].ID)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.EqualValues(t, 3, second[0].Views)
	assert.True(t, mr.Exists("blogdesk:"+publishedBlogsKey))
	repo.AssertNumberOfCalls(t, "ListPublished", 1)

	mr.FastForward(2 * time.Minute)
	repo.On("ListPublished", mock.Anything).Return(published, nil).Once()
	_, err = svc.ListPublished(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "ListPublished", 2)
}

func TestBlogService_MutationsInvalidateCache(t *testing.T) {
	ctx := context.Background()
	actorID := model.NewID()
	blogID := model.NewID()
	blog := &model.Blog{ID: blogID, Title: "Hello World", Status: model.BlogPublished}
	title := "Hello Again"

	mutations := []struct {
		name   string
		expect func(repo *MockBlogRepository)
		run    func(svc BlogService) error
	}{
		{
			name:   "create",
			expect: func(repo *MockBlogRepository) { repo.On("Create", mock.Anything, mock.Anything).Return(nil) },
			run: func(svc BlogService) error {
				_, err := svc.Create(ctx, CreateBlogInput{Title: "Hello World", Content: "Long enough content", AuthorID: actorID})
				return err
			},
		},
		{
			name: "update",
			expect: func(repo *MockBlogRepository) {
				repo.On("Update", mock.Anything, blogID, mock.Anything, mock.Anything).Return(blog, nil)
			},
			run: func(svc BlogService) error {
				_, err := svc.Update(ctx, actorID, blogID, model.BlogPatch{Title: &title})
				return err
			},
		},
		{
			name:   "delete",
			expect: func(repo *MockBlogRepository) { repo.On("Delete", mock.Anything, blogID).Return(nil) },
			run:    func(svc BlogService) error { return svc.Delete(ctx, actorID, blogID) },
		},
		{
			name:   "view of a published blog",
			expect: func(repo *MockBlogRepository) { repo.On("IncrementViews", mock.Anything, blogID).Return(blog, nil) },
			run: func(svc BlogService) error {
				_, err := svc.View(ctx, blogID)
				return err
			},
		},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBlogRepository)
			repo.On("ListPublished", mock.Anything).Return([]model.Blog{*blog}, nil)
			tt.expect(repo)
			svc, mr := newCachedBlogService(t, repo)

			_, err := svc.ListPublished(ctx)
			require.NoError(t, err)
			_, err = svc.ListPublished(ctx)
			require.NoError(t, err)
			repo.AssertNumberOfCalls(t, "ListPublished", 1)

			require.NoError(t, tt.run(svc))
			assert.False(t, mr.Exists("blogdesk:"+publishedBlogsKey))

			_, err = svc.ListPublished(ctx)
			require.NoError(t, err)
			repo.AssertNumberOfCalls(t, "ListPublished", 2)
		})
	}
}

func TestBlogService_DraftViewKeepsCache(t *testing.T) {
	ctx := context.Background()
	draft := &model.Blog{ID: model.NewID(), Title: "Unpublished", Status: model.BlogDraft}
	repo := new(MockBlogRepository)
	repo.On("ListPublished", mock.Anything).Return([]model.Blog{}, nil)
	repo.On("IncrementViews", mock.Anything, draft.ID).Return(draft, nil)
	svc, mr := newCachedBlogService(t, repo)

	_, err := svc.ListPublished(ctx)
	require.NoError(t, err)
	_, err = svc.View(ctx, draft.ID)
	require.NoError(t, err)

	assert.True(t, mr.Exists("blogdesk:"+publishedBlogsKey))
}

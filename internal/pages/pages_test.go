package pages

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopadmin/shop-admin/internal/db/dbtest"
	"github.com/shopadmin/shop-admin/internal/db/models"
)

func newService(t *testing.T) *Service {
	t.Helper()

	return New(dbtest.New(t), "https://shop.test/")
}

func input(name string) Input {
	return Input{
		Name:        name,
		Description: gofakeit.Sentence(8),
		Content:     gofakeit.Paragraph(2, 3, 10, " "),
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "about-us", Slug("About Us"))
	assert.Equal(t, "terms-and-conditions", Slug("  Terms & Conditions "))
}

func TestCreate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	p, err := s.Create(ctx, input("About Us"))
	require.NoError(t, err)
	assert.Equal(t, "about-us", p.Slug)
	assert.Equal(t, models.PageActive, p.Status)
	assert.Equal(t, "https://shop.test/blogs/about-us", p.CanonicalURL)
	assert.Equal(t, "About Us", p.OgTitle)
	assert.Equal(t, p.Description, p.TwitterDescription)
}

func TestCreateRejects(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, input("About Us"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{name: "colliding slug", in: input("about us"), wantErr: ErrSlugTaken},
		{name: "missing content", in: Input{Name: "Help", Description: "x"}, wantErr: ErrMissingFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	bad := input("Contact")
	bad.Status = "archived"
	_, err = s.Create(ctx, bad)
	require.Error(t, err)
}

func TestUpdate(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	a, err := s.Create(ctx, input("About"))
	require.NoError(t, err)
	_, err = s.Create(ctx, input("Privacy"))
	require.NoError(t, err)

	in := input("Privacy")
	in.ID = a.ID
	_, err = s.Update(ctx, in)
	require.ErrorIs(t, err, ErrNameTaken)

	in = input("About The Shop")
	in.ID = a.ID
	in.Status = models.PageInactive
	updated, err := s.Update(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "about-the-shop", updated.Slug)
	assert.Equal(t, models.PageInactive, updated.Status)

	in.ID = a.ID + 100
	_, err = s.Update(ctx, in)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLifecycle(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	a, err := s.Create(ctx, input("Shipping"))
	require.NoError(t, err)

	b := input("Returns")
	b.Status = models.PageInactive
	_, err = s.Create(ctx, b)
	require.NoError(t, err)

	_, err = s.BySlug(ctx, "returns")
	require.ErrorIs(t, err, ErrNotFound, "inactive pages are not published")

	got, err := s.BySlug(ctx, "shipping")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = s.SoftDelete(ctx, nil)
	require.ErrorIs(t, err, ErrNoIDs)

	n, err := s.SoftDelete(ctx, []uint64{a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.BySlug(ctx, "shipping")
	require.ErrorIs(t, err, ErrNotFound)

	list, total, counts, err := s.List(ctx, ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, Counts{Total: 1, Active: 0, Inactive: 1, BulkDelete: 1}, counts)

	trash, trashTotal, err := s.Trash(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), trashTotal)
	assert.Equal(t, a.ID, trash[0].ID)

	_, err = s.Restore(ctx, []uint64{a.ID})
	require.NoError(t, err)

	names, err := s.Names(ctx)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "shipping", names[0].Slug)

	n, err = s.DeletePermanent(ctx, []uint64{a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestListSearch(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	for _, name := range []string{"Gift Cards", "Gift Wrapping", "FAQ"} {
		_, err := s.Create(ctx, input(name))
		require.NoError(t, err)
	}

	list, total, _, err := s.List(ctx, ListOptions{Limit: 1, Search: "gift"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 1)
}

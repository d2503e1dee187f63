package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

type stubListingRepo struct {
	listings map[string]*domain.Listing
	seq      int
}

func newStubListingRepo() *stubListingRepo {
	return &stubListingRepo{listings: make(map[string]*domain.Listing)}
}

func (r *stubListingRepo) Create(_ context.Context, l *domain.Listing) (*domain.Listing, error) {
	copy := *l
	r.seq++
	copy.ID = fmt.Sprintf("lst_%d", r.seq)
	r.listings[copy.ID] = &copy
	clone := copy
	return &clone, nil
}

func (r *stubListingRepo) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	if l, ok := r.listings[id]; ok {
		clone := *l
		return &clone, nil
	}
	return nil, domain.ErrListingNotFound
}

func (r *stubListingRepo) List(_ context.Context, filter ports.ListingFilter, page, limit int) ([]domain.Listing, int64, error) {
	var items []domain.Listing
	for _, l := range r.listings {
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		if filter.City != "" && l.City != filter.City {
			continue
		}
		items = append(items, *l)
	}
	return items, int64(len(items)), nil
}

func (r *stubListingRepo) Update(_ context.Context, l *domain.Listing) error {
	if _, ok := r.listings[l.ID]; !ok {
		return domain.ErrListingNotFound
	}
	clone := *l
	r.listings[l.ID] = &clone
	return nil
}

func (r *stubListingRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.listings[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.listings, id)
	return nil
}

func createTestListing(t *testing.T, svc *ListingService) *domain.Listing {
	t.Helper()
	listing, err := svc.Create(context.Background(), ports.CreateListingInput{
		ProfessionalID: "pro_1",
		Title:          "Deep cleaning",
		Category:       "cleaning",
		City:           "Porto",
		Price:          80,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return listing
}

func TestListingService_Create(t *testing.T) {
	svc := NewListingService(newStubListingRepo(), zerolog.Nop())

	listing := createTestListing(t, svc)
	if !listing.Active {
		t.Fatalf("expected new listing to be active")
	}
	if listing.Currency == "" {
		t.Fatalf("expected a default currency")
	}

	if _, err := svc.Create(context.Background(), ports.CreateListingInput{
		ProfessionalID: "pro_1", Title: "x", Category: "y", Price: 0,
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero price: expected ErrInvalidInput, got %v", err)
	}
}

func TestListingService_Update_OwnerOnly(t *testing.T) {
	svc := NewListingService(newStubListingRepo(), zerolog.Nop())
	listing := createTestListing(t, svc)
	ctx := context.Background()

	title := "Deep cleaning plus"
	updated, err := svc.Update(ctx, ports.UpdateListingInput{
		ListingID: listing.ID, ActorID: "pro_1", ActorRole: domain.RoleProfessional, Title: &title,
	})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "Deep cleaning plus" {
		t.Fatalf("unexpected title: %q", updated.Title)
	}

	if _, err := svc.Update(ctx, ports.UpdateListingInput{
		ListingID: listing.ID, ActorID: "pro_2", ActorRole: domain.RoleProfessional, Title: &title,
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner: expected ErrForbidden, got %v", err)
	}

	if _, err := svc.Update(ctx, ports.UpdateListingInput{
		ListingID: listing.ID, ActorID: "admin_1", ActorRole: domain.RoleAdmin, Title: &title,
	}); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	bad := -5.0
	if _, err := svc.Update(ctx, ports.UpdateListingInput{
		ListingID: listing.ID, ActorID: "pro_1", ActorRole: domain.RoleProfessional, Price: &bad,
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("negative price: expected ErrInvalidInput, got %v", err)
	}
}

func TestListingService_Delete_OwnerOnly(t *testing.T) {
	repo := newStubListingRepo()
	svc := NewListingService(repo, zerolog.Nop())
	listing := createTestListing(t, svc)
	ctx := context.Background()

	if err := svc.Delete(ctx, listing.ID, "pro_2", domain.RoleProfessional); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner delete: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, listing.ID, "pro_1", domain.RoleProfessional); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, listing.ID); !errors.Is(err, domain.ErrListingNotFound) {
		t.Fatalf("expected listing gone, got %v", err)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, defaultPageLimit},
		{-3, -1, 1, defaultPageLimit},
		{2, 50, 2, 50},
		{1, 1000, 1, maxPageLimit},
	}
	for _, tc := range cases {
		page, limit := normalizePage(tc.page, tc.limit)
		if page != tc.wantPage || limit != tc.wantLimit {
			t.Errorf("normalizePage(%d,%d) = (%d,%d), want (%d,%d)",
				tc.page, tc.limit, page, limit, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 20, 5},
	}
	for _, tc := range cases {
		if got := totalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("totalPages(%d,%d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

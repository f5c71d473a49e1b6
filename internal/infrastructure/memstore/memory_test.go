package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/smartcart/backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func seed(t *testing.T, s *Store, name string, listings int) int64 {
	t.Helper()
	ctx := context.Background()

	p := domain.Product{Name: name}
	if err := s.CreateProduct(ctx, &p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	for i := 0; i < listings; i++ {
		l := domain.Listing{
			ProductID:  p.ID,
			RetailerID: int64(i + 1),
			SKU:        name,
			Title:      name,
			Active:     true,
		}
		if err := s.CreateListing(ctx, &l); err != nil {
			t.Fatalf("CreateListing: %v", err)
		}
	}
	return p.ID
}

func TestSingletonAndEstablishedProducts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	orphanID := seed(t, s, "orphan", 0)
	singleID := seed(t, s, "single", 1)
	multiID := seed(t, s, "multi", 3)

	singles, err := s.SingletonProducts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(singles) != 1 || singles[0].ID != singleID {
		t.Errorf("SingletonProducts = %v, want just product %d", singles, singleID)
	}

	established, err := s.EstablishedProducts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(established) != 1 || established[0].ID != multiID {
		t.Errorf("EstablishedProducts = %v, want just product %d", established, multiID)
	}

	// A product with zero listings is neither.
	for _, p := range append(singles, established...) {
		if p.ID == orphanID {
			t.Errorf("orphan product %d appeared in population queries", orphanID)
		}
	}
}

func TestSingletonProductsAscendingOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	// Insertion order is irrelevant; results come back by ID.
	ids := []int64{
		seed(t, s, "c", 1),
		seed(t, s, "a", 1),
		seed(t, s, "b", 1),
	}
	_ = ids

	singles, err := s.SingletonProducts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(singles); i++ {
		if singles[i-1].ID >= singles[i].ID {
			t.Fatalf("SingletonProducts not ascending: %v", singles)
		}
	}
}

func TestPatchProductFillsEmptyOnly(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	brand := "Avonmore"
	p := domain.Product{Name: "Milk", Brand: &brand}
	if err := s.CreateProduct(ctx, &p); err != nil {
		t.Fatal(err)
	}

	err := s.PatchProduct(ctx, p.ID, domain.ProductPatch{
		Brand: strPtr("Imposter"),
		EAN:   strPtr("5391516590129"),
	})
	if err != nil {
		t.Fatalf("PatchProduct: %v", err)
	}

	got, _ := s.Product(p.ID)
	if *got.Brand != "Avonmore" {
		t.Errorf("Brand = %q, want Avonmore (populated field untouched)", *got.Brand)
	}
	if got.EAN == nil || *got.EAN != "5391516590129" {
		t.Errorf("EAN = %v, want filled", got.EAN)
	}
}

func TestPatchProductNotFound(t *testing.T) {
	s := NewStore()
	err := s.PatchProduct(context.Background(), 42, domain.ProductPatch{Brand: strPtr("x")})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("PatchProduct error = %v, want ErrProductNotFound", err)
	}
}

func TestDeleteProductRefusesWhileInUse(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id := seed(t, s, "milk", 1)

	if err := s.DeleteProduct(ctx, id); !errors.Is(err, domain.ErrProductInUse) {
		t.Fatalf("DeleteProduct error = %v, want ErrProductInUse", err)
	}

	// Re-point the listing away, then deletion succeeds.
	other := seed(t, s, "other", 1)
	listing, err := s.SoleListing(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ReassignListing(ctx, listing.ID, other); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProduct(ctx, id); err != nil {
		t.Fatalf("DeleteProduct after reassign: %v", err)
	}
}

func TestSoleListing(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	singleID := seed(t, s, "single", 1)
	multiID := seed(t, s, "multi", 2)

	if _, err := s.SoleListing(ctx, singleID); err != nil {
		t.Errorf("SoleListing(singleton) error = %v", err)
	}
	if _, err := s.SoleListing(ctx, multiID); !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("SoleListing(multi) error = %v, want ErrListingNotFound", err)
	}
	if _, err := s.SoleListing(ctx, 999); !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("SoleListing(missing) error = %v, want ErrListingNotFound", err)
	}
}

func TestProductByEANLowestIDWins(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	ean := "5391516590129"
	first := domain.Product{Name: "a", EAN: &ean}
	second := domain.Product{Name: "b", EAN: &ean}
	if err := s.CreateProduct(ctx, &first); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateProduct(ctx, &second); err != nil {
		t.Fatal(err)
	}

	got, err := s.ProductByEAN(ctx, ean)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != first.ID {
		t.Errorf("ProductByEAN = product %d, want %d (lowest ID)", got.ID, first.ID)
	}

	if _, err := s.ProductByEAN(ctx, "0000000000000"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("ProductByEAN(unknown) error = %v, want ErrProductNotFound", err)
	}
}

func TestCategories(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.CategoryBySlug(ctx, "dairy"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("CategoryBySlug error = %v, want ErrCategoryNotFound", err)
	}

	c := domain.Category{Name: "Dairy", Slug: "dairy"}
	if err := s.CreateCategory(ctx, &c); err != nil {
		t.Fatal(err)
	}
	got, err := s.CategoryBySlug(ctx, "dairy")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != c.ID || got.Name != "Dairy" {
		t.Errorf("CategoryBySlug = %+v, want %+v", got, c)
	}
}

package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"veganbite/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCategoryRepository_SlugCollisionsGetSuffix(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(testDB)

	first := &domain.Category{Name: "Frozen Foods", NameJa: "冷凍食品", Slug: "frozen-foods"}
	second := &domain.Category{Name: "Frozen  Foods", NameJa: "冷凍", Slug: "frozen-foods"}
	third := &domain.Category{Name: "Frozen-Foods", NameJa: "冷凍品", Slug: "frozen-foods"}

	for _, c := range []*domain.Category{first, second, third} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Failed to create category: %v", err)
		}
	}

	if first.Slug != "frozen-foods" || second.Slug != "frozen-foods-2" || third.Slug != "frozen-foods-3" {
		t.Fatalf("unexpected slugs %q %q %q", first.Slug, second.Slug, third.Slug)
	}

	found, err := repo.FindBySlug(ctx, "frozen-foods-2")
	if err != nil || found.ID != second.ID {
		t.Fatalf("FindBySlug returned %v %v", found, err)
	}
}

func TestCategoryRepository_UpdateAndFindByIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(testDB)
	category := createTestCategory(t)
	other := createTestCategory(t)

	category.Name = "Sweets"
	category.NameJa = "スイーツ"
	category.Slug = "sweets"
	if err := repo.Update(ctx, category); err != nil {
		t.Fatalf("Failed to update category: %v", err)
	}
	if !strings.HasPrefix(category.Slug, "sweets") {
		t.Errorf("unexpected slug after rename: %s", category.Slug)
	}

	found, err := repo.FindByIDs(ctx, []int64{other.ID, category.ID, 999999999})
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 existing categories, got %d", len(found))
	}

	if err := repo.Update(ctx, &domain.Category{ID: 999999999, Name: "x", NameJa: "エ"}); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

// Feature: veganbite, Property 4: Category deletion is non-cascading
// Validates: Requirements 3.1
func TestProperty_CategoryDeletionIsNonCascading(t *testing.T) {
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("deleting a category keeps every product and only drops that link", prop.ForAll(
		func(productCount int, alsoLinked []bool) bool {
			ctx := context.Background()
			doomed := createTestCategory(t)
			keeper := createTestCategory(t)

			products := make([]*domain.Product, productCount)
			for i := range products {
				ids := []int64{doomed.ID}
				if i < len(alsoLinked) && alsoLinked[i] {
					ids = append(ids, keeper.ID)
				}
				products[i] = createTestProduct(t, ids...)
			}

			if err := categoryRepo.Delete(ctx, doomed.ID); err != nil {
				t.Logf("FAIL: delete category: %v", err)
				return false
			}

			for i, p := range products {
				got, err := productRepo.FindByID(ctx, p.ID)
				if err != nil {
					t.Logf("FAIL: product %d vanished: %v", p.ID, err)
					return false
				}
				if got.HasCategory(doomed.ID) {
					t.Logf("FAIL: product %d still linked to deleted category", p.ID)
					return false
				}
				wantKeeper := i < len(alsoLinked) && alsoLinked[i]
				if got.HasCategory(keeper.ID) != wantKeeper {
					t.Logf("FAIL: product %d lost an unrelated category", p.ID)
					return false
				}
				if !wantKeeper && len(got.Categories) != 0 {
					t.Logf("FAIL: expected an uncategorized product, got %+v", got.Categories)
					return false
				}
			}

			_, err := categoryRepo.FindByID(ctx, doomed.ID)
			return errors.Is(err, ErrCategoryNotFound)
		},
		gen.IntRange(0, 4),
		gen.SliceOfN(4, gen.Bool()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCategoryRepository_DeleteUnknown(t *testing.T) {
	err := NewCategoryRepository(testDB).Delete(context.Background(), 999999999)
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

package catalog

import (
	"context"
	"strings"
	"sync"

	"boltadmin/internal/apperr"
	"boltadmin/pkg/models"

	"github.com/rs/zerolog/log"
)

// CategoryAll is the filter value matching every category.
const CategoryAll = "All"

// Browser is the backend surface the listing needs.
type Browser interface {
	ListProducts(ctx context.Context, page, perPage int) ([]models.Product, error)
	DeleteProduct(ctx context.Context, token string, id models.FlexID) error
}

// Listing caches one page of the product collection for display and
// dispatches delete requests. Filtering is purely client-side over the cached
// page.
type Listing struct {
	backend Browser
	tokens  TokenSource

	mu       sync.Mutex
	products []models.Product
	page     int
	perPage  int
	failed   bool
}

// NewListing creates an empty listing.
func NewListing(backend Browser, tokens TokenSource) *Listing {
	return &Listing{backend: backend, tokens: tokens, page: 1, perPage: 50}
}

// FetchPage loads one page of products. On failure the listing renders empty
// and reports a generic fetch failure.
func (l *Listing) FetchPage(ctx context.Context, page, perPage int) error {
	products, err := l.backend.ListProducts(ctx, page, perPage)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.page = page
	l.perPage = perPage
	if err != nil {
		l.products = nil
		l.failed = true
		log.Warn().Err(err).Msg("product fetch failed")
		return apperr.NetworkErr(err)
	}
	l.products = products
	l.failed = false
	return nil
}

// Products returns the cached page.
func (l *Listing) Products() []models.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Product(nil), l.products...)
}

// Failed reports whether the last fetch failed.
func (l *Listing) Failed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failed
}

// Delete removes a product after confirmation. Deletion is irreversible, so
// a declining confirm callback aborts without any request. Success re-fetches
// the current page; failure leaves the cached products untouched.
func (l *Listing) Delete(ctx context.Context, id models.FlexID, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}

	token := l.tokens.CurrentToken()
	if token == "" {
		return apperr.AuthErr("You must be logged in as an admin to delete products.")
	}

	if err := l.backend.DeleteProduct(ctx, token, id); err != nil {
		return err
	}

	l.mu.Lock()
	page, perPage := l.page, l.perPage
	l.mu.Unlock()
	return l.FetchPage(ctx, page, perPage)
}

// Filter narrows products by category and search term. Category is either
// CategoryAll or an exact match; the search term matches case-insensitively
// against name and category substrings. Pure function, original order
// preserved.
func Filter(products []models.Product, category, search string) []models.Product {
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != CategoryAll && p.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

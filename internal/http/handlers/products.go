package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"boltadmin/internal/apperr"
	"boltadmin/internal/catalog"
	"boltadmin/internal/upload"
	"boltadmin/pkg/models"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const defaultPerPage = 50

// Products renders the product table with category filter and search applied
// client-side over the fetched page.
func (h *Handler) Products(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	fetchErr := h.listing.FetchPage(c.Request().Context(), page, defaultPerPage)
	if fetchErr != nil {
		log.Warn().Err(fetchErr).Msg("listing fetch failed")
	}

	category := c.QueryParam("category")
	if category == "" {
		category = catalog.CategoryAll
	}
	query := c.QueryParam("q")

	filtered := catalog.Filter(h.listing.Products(), category, query)

	return c.Render(http.StatusOK, "products.html", map[string]interface{}{
		"Products":    filtered,
		"Categories":  append([]string{catalog.CategoryAll}, catalog.Categories...),
		"Selected":    category,
		"Query":       query,
		"Page":        page,
		"FetchFailed": h.listing.Failed(),
		"Admin":       h.sessions.Admin(),
		"Notice":      c.QueryParam("msg"),
		"Error":       c.QueryParam("error"),
	})
}

// DeleteProduct removes a product. The page's confirm dialog sets the confirm
// field; without it the request is treated as declined.
func (h *Handler) DeleteProduct(c echo.Context) error {
	id := models.FlexID(c.Param("id"))
	confirmed := c.FormValue("confirm") == "yes"

	err := h.listing.Delete(c.Request().Context(), id, func() bool { return confirmed })
	if err != nil {
		return redirectWithError(c, "/admin", apperr.PublicMessage(err))
	}
	if !confirmed {
		return c.Redirect(http.StatusFound, "/admin")
	}
	return redirectWithNotice(c, "/admin", "Product deleted")
}

// NewProduct renders an empty create form.
func (h *Handler) NewProduct(c echo.Context) error {
	h.workflow.Reset()
	return h.renderForm(c, "")
}

// EditProduct loads the selected record into a fresh draft and renders the
// form pre-filled.
func (h *Handler) EditProduct(c echo.Context) error {
	id := models.FlexID(c.Param("id"))

	product, ok := h.findProduct(c, id)
	if !ok {
		return redirectWithError(c, "/admin", "Product not found")
	}

	h.workflow.LoadFrom(product)
	return h.renderForm(c, "")
}

// SaveProduct drives the form workflow: the posted form is the source of
// truth for the draft, selected files become pending images, and Submit does
// validation, upload and the backend call.
func (h *Handler) SaveProduct(c echo.Context) error {
	if err := c.Request().ParseMultipartForm(8 * upload.MaxFileSize); err != nil {
		return redirectWithError(c, "/admin/products/new", "Invalid form submission")
	}

	targetID := c.FormValue("id")
	if targetID == "" {
		h.workflow.Reset()
	} else {
		h.workflow.LoadFrom(models.Product{ID: models.FlexID(targetID)})
	}

	form := c.Request().MultipartForm

	h.workflow.Edit(func(d *catalog.ProductDraft) {
		d.Name = c.FormValue("name")
		d.Description = c.FormValue("description")
		d.Price = parseNumber(c.FormValue("price"))
		d.OriginalPrice = nil
		if v := strings.TrimSpace(c.FormValue("original_price")); v != "" {
			op := parseNumber(v)
			d.OriginalPrice = &op
		}
		d.Categories = form.Value["category"]
		d.Brand = c.FormValue("brand")
		d.Material = c.FormValue("material")
		d.Sizes = models.SplitList(c.FormValue("sizes"))
		d.Colors = models.SplitList(c.FormValue("colors"))
		d.IsFeatured = c.FormValue("is_featured") != ""
		d.IsActive = c.FormValue("is_active") != ""
		d.ImageURLs = form.Value["existing_images"]
	})

	for _, fh := range form.File["images"] {
		f, err := upload.FromMultipart(fh)
		if err != nil {
			return h.renderForm(c, "Failed to read "+fh.Filename)
		}
		h.workflow.Edit(func(d *catalog.ProductDraft) {
			d.AddPendingImage(f, "")
		})
	}

	if err := h.workflow.Submit(c.Request().Context()); err != nil {
		return h.renderForm(c, apperr.PublicMessage(err))
	}

	notice := "Product added successfully!"
	if targetID != "" {
		notice = "Product updated successfully!"
	}
	for _, r := range h.workflow.Rejected() {
		notice += " (skipped: " + r.Reason + ")"
	}
	return redirectWithNotice(c, "/admin", notice)
}

// SuggestDescription asks the AI assist for a description for the given
// product name. Returns JSON consumed by the form page.
func (h *Handler) SuggestDescription(c echo.Context) error {
	if h.suggest == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "AI assist is not configured"})
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Product name is required"})
	}

	suggestion, err := h.suggest.Suggest(c.Request().Context(), name)
	if err != nil {
		log.Warn().Err(err).Msg("description suggestion failed")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Suggestion failed"})
	}
	return c.JSON(http.StatusOK, suggestion)
}

func (h *Handler) renderForm(c echo.Context, errMsg string) error {
	draft := h.workflow.Draft()
	if errMsg == "" {
		errMsg = c.QueryParam("error")
	}

	var originalPrice string
	if draft.OriginalPrice != nil {
		originalPrice = strconv.FormatFloat(*draft.OriginalPrice, 'f', -1, 64)
	}

	return c.Render(http.StatusOK, "product_form.html", map[string]interface{}{
		"Draft":         draft,
		"OriginalPrice": originalPrice,
		"Categories":    catalog.Categories,
		"CommonSizes":   catalog.CommonSizes,
		"CommonColors":  catalog.CommonColors,
		"Sizes":         models.JoinList(draft.Sizes),
		"Colors":        models.JoinList(draft.Colors),
		"IsUpdate":      h.workflow.IsUpdate(),
		"TargetID":      h.workflow.Target().String(),
		"AssistEnabled": h.suggest != nil,
		"Admin":         h.sessions.Admin(),
		"Error":         errMsg,
	})
}

// findProduct looks the record up in the cached page, fetching one if the
// cache is empty.
func (h *Handler) findProduct(c echo.Context, id models.FlexID) (models.Product, bool) {
	products := h.listing.Products()
	if len(products) == 0 {
		if err := h.listing.FetchPage(c.Request().Context(), 1, defaultPerPage); err != nil {
			return models.Product{}, false
		}
		products = h.listing.Products()
	}
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

package catalog

import (
	"errors"
	"os"
	"strings"

	"boltadmin/internal/upload"
	"boltadmin/pkg/models"

	"github.com/go-playground/validator/v10"
)

// DefaultBrand is pre-filled on new drafts.
const DefaultBrand = "BOLT FIT"

// Categories offered by the store.
var Categories = []string{"Shirts", "T-Shirts", "Pants", "Trending"}

// CommonSizes and CommonColors back the quick-add controls on the form.
var (
	CommonSizes  = []string{"XS", "S", "M", "L", "XL", "XXL"}
	CommonColors = []string{
		"Red", "Blue", "Green", "Black", "White", "Gray",
		"Yellow", "Orange", "Purple", "Pink", "Brown", "Navy",
	}
)

// PendingImage is a locally selected file awaiting upload: the file itself, a
// preview reference, and the upload progress percentage.
type PendingImage struct {
	File        upload.File
	PreviewPath string
	Progress    int
}

// ProductDraft is the in-progress form state for a product being created or
// edited. Categories are always the canonical multi-value set; the singular
// field the backend expects is produced by the wire adapter at submit time.
type ProductDraft struct {
	Name          string `validate:"required"`
	Description   string `validate:"required"`
	Price         float64
	OriginalPrice *float64
	Categories    []string `validate:"min=1"`
	Brand         string
	Material      string
	Sizes         []string
	Colors        []string
	IsFeatured    bool
	IsActive      bool

	// ImageURLs are already-hosted images (pre-existing on edit, or merged in
	// after an upload). Pending holds local files not yet hosted.
	ImageURLs []string
	Pending   []PendingImage
}

// NewDraft returns the initial empty form state.
func NewDraft() *ProductDraft {
	return &ProductDraft{
		Brand:    DefaultBrand,
		IsActive: true,
	}
}

// LoadDraftFrom builds an edit draft from an existing record. This is an
// explicit constructor step, independent of any rendering lifecycle, so the
// edit flow is testable on its own.
func LoadDraftFrom(p models.Product) *ProductDraft {
	d := &ProductDraft{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Categories:  p.Categories(),
		Brand:       p.Brand,
		Material:    p.Material,
		Sizes:       append([]string(nil), p.Sizes...),
		Colors:      append([]string(nil), p.Colors...),
		IsFeatured:  p.IsFeatured,
		IsActive:    p.IsActive,
		ImageURLs:   append([]string(nil), p.Images...),
	}
	if p.OriginalPrice > 0 {
		op := p.OriginalPrice
		d.OriginalPrice = &op
	}
	if d.Brand == "" {
		d.Brand = DefaultBrand
	}
	return d
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterStructValidation(draftStructLevel, ProductDraft{})
}

func draftStructLevel(sl validator.StructLevel) {
	d := sl.Current().Interface().(ProductDraft)
	if d.Price <= 0 {
		sl.ReportError(d.Price, "price", "Price", "gt", "0")
	}
	if len(d.ImageURLs)+len(d.Pending) == 0 {
		sl.ReportError(d.ImageURLs, "image_urls", "ImageURLs", "images", "")
	}
	if d.OriginalPrice != nil && *d.OriginalPrice <= d.Price {
		sl.ReportError(d.OriginalPrice, "original_price", "OriginalPrice", "gtprice", "")
	}
}

// Validate checks the draft against the form rules and returns every violated
// rule at once, in user wording, never just the first.
func (d *ProductDraft) Validate() []string {
	err := validate.Struct(d.normalized())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid product data"}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Name":
			msgs = append(msgs, "Product name is required")
		case "Description":
			msgs = append(msgs, "Description is required")
		case "Price":
			msgs = append(msgs, "Valid price is required")
		case "Categories":
			msgs = append(msgs, "Category is required")
		case "ImageURLs":
			msgs = append(msgs, "At least one image is required")
		case "OriginalPrice":
			msgs = append(msgs, "Original price should be higher than current price")
		default:
			msgs = append(msgs, fe.StructField()+" is invalid")
		}
	}
	return msgs
}

// normalized returns a copy with trimmed strings and cleaned label lists, the
// shape validation and submission both operate on.
func (d *ProductDraft) normalized() ProductDraft {
	c := *d
	c.Name = strings.TrimSpace(d.Name)
	c.Description = strings.TrimSpace(d.Description)
	c.Brand = strings.TrimSpace(d.Brand)
	c.Material = strings.TrimSpace(d.Material)
	c.Categories = trimList(d.Categories)
	c.Sizes = trimList(d.Sizes)
	c.Colors = trimList(d.Colors)
	return c
}

func trimList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// AddPendingImage attaches a locally selected file and its preview reference
// to the draft.
func (d *ProductDraft) AddPendingImage(f upload.File, previewPath string) {
	d.Pending = append(d.Pending, PendingImage{File: f, PreviewPath: previewPath})
}

// RemovePendingImage drops the pending image at index and releases its
// preview.
func (d *ProductDraft) RemovePendingImage(index int) {
	if index < 0 || index >= len(d.Pending) {
		return
	}
	releasePreview(d.Pending[index])
	d.Pending = append(d.Pending[:index], d.Pending[index+1:]...)
}

// ReleasePending releases every pending preview and clears the pending set.
// Called on successful submission and on discard.
func (d *ProductDraft) ReleasePending() {
	for _, p := range d.Pending {
		releasePreview(p)
	}
	d.Pending = nil
}

func releasePreview(p PendingImage) {
	if p.PreviewPath != "" {
		os.Remove(p.PreviewPath)
	}
}

func joinLabels(items []string) string { return models.JoinList(items) }

package catalog

import (
	"testing"

	"boltadmin/internal/upload"
	"boltadmin/pkg/models"
)

func validDraft() *ProductDraft {
	d := NewDraft()
	d.Name = "Oxford Shirt"
	d.Description = "A crisp cotton oxford shirt"
	d.Price = 49.9
	d.Categories = []string{"Shirts"}
	d.ImageURLs = []string{"https://img.example/shirt.png"}
	return d
}

func TestNewDraftDefaults(t *testing.T) {
	d := NewDraft()
	if d.Brand != DefaultBrand {
		t.Errorf("Brand = %q, expected %q", d.Brand, DefaultBrand)
	}
	if !d.IsActive {
		t.Error("expected new drafts to be active")
	}
	if d.IsFeatured {
		t.Error("expected new drafts to not be featured")
	}
}

func TestValidateReportsAllViolations(t *testing.T) {
	d := NewDraft()
	msgs := d.Validate()

	expected := []string{
		"Product name is required",
		"Description is required",
		"Valid price is required",
		"Category is required",
		"At least one image is required",
	}
	if len(msgs) != len(expected) {
		t.Fatalf("Validate() returned %d violations %v, expected %d", len(msgs), msgs, len(expected))
	}
	found := make(map[string]bool)
	for _, m := range msgs {
		found[m] = true
	}
	for _, want := range expected {
		if !found[want] {
			t.Errorf("Validate() missing violation %q", want)
		}
	}
}

func TestValidateSingleViolations(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(d *ProductDraft)
		expected string
	}{
		{"blank name", func(d *ProductDraft) { d.Name = "   " }, "Product name is required"},
		{"blank description", func(d *ProductDraft) { d.Description = "" }, "Description is required"},
		{"zero price", func(d *ProductDraft) { d.Price = 0 }, "Valid price is required"},
		{"negative price", func(d *ProductDraft) { d.Price = -5 }, "Valid price is required"},
		{"no categories", func(d *ProductDraft) { d.Categories = nil }, "Category is required"},
		{"whitespace category", func(d *ProductDraft) { d.Categories = []string{"  "} }, "Category is required"},
		{"no images", func(d *ProductDraft) { d.ImageURLs = nil }, "At least one image is required"},
	}

	for _, test := range tests {
		d := validDraft()
		test.mutate(d)
		msgs := d.Validate()
		if len(msgs) != 1 || msgs[0] != test.expected {
			t.Errorf("%s: Validate() = %v, expected [%q]", test.name, msgs, test.expected)
		}
	}
}

func TestValidateOriginalPrice(t *testing.T) {
	tests := []struct {
		original float64
		valid    bool
	}{
		{99.9, true},
		{49.9, false},
		{10, false},
	}

	for _, test := range tests {
		d := validDraft()
		op := test.original
		d.OriginalPrice = &op
		msgs := d.Validate()
		if test.valid && len(msgs) != 0 {
			t.Errorf("original %.2f: unexpected violations %v", test.original, msgs)
		}
		if !test.valid {
			if len(msgs) != 1 || msgs[0] != "Original price should be higher than current price" {
				t.Errorf("original %.2f: Validate() = %v, expected original price violation", test.original, msgs)
			}
		}
	}
}

func TestValidateCountsPendingImages(t *testing.T) {
	d := validDraft()
	d.ImageURLs = nil
	d.AddPendingImage(upload.File{Name: "a.png", ContentType: "image/png"}, "")
	if msgs := d.Validate(); len(msgs) != 0 {
		t.Errorf("draft with only pending images failed validation: %v", msgs)
	}
}

func TestLoadDraftFrom(t *testing.T) {
	p := models.Product{
		ID:            "42",
		Name:          "Cargo Pants",
		Description:   "Relaxed fit",
		Price:         79.5,
		OriginalPrice: 99,
		Category:      "Pants, Trending",
		Brand:         "",
		Sizes:         []string{"M", "L"},
		Colors:        []string{"Navy"},
		Images:        []string{"https://img.example/pants.png"},
		IsActive:      true,
	}

	d := LoadDraftFrom(p)
	if d.Name != p.Name || d.Description != p.Description || d.Price != p.Price {
		t.Errorf("scalar fields not carried over: %+v", d)
	}
	if len(d.Categories) != 2 || d.Categories[0] != "Pants" || d.Categories[1] != "Trending" {
		t.Errorf("Categories = %v, expected [Pants Trending]", d.Categories)
	}
	if d.OriginalPrice == nil || *d.OriginalPrice != 99 {
		t.Errorf("OriginalPrice = %v, expected 99", d.OriginalPrice)
	}
	if d.Brand != DefaultBrand {
		t.Errorf("empty brand should default to %q, got %q", DefaultBrand, d.Brand)
	}
	if msgs := d.Validate(); len(msgs) != 0 {
		t.Errorf("loaded draft should be valid, got %v", msgs)
	}
}

func TestRemovePendingImage(t *testing.T) {
	d := NewDraft()
	d.AddPendingImage(upload.File{Name: "a.png"}, "")
	d.AddPendingImage(upload.File{Name: "b.png"}, "")
	d.AddPendingImage(upload.File{Name: "c.png"}, "")

	d.RemovePendingImage(1)
	if len(d.Pending) != 2 || d.Pending[0].File.Name != "a.png" || d.Pending[1].File.Name != "c.png" {
		t.Errorf("Pending after remove = %v", d.Pending)
	}

	d.RemovePendingImage(10)
	d.RemovePendingImage(-1)
	if len(d.Pending) != 2 {
		t.Errorf("out-of-range remove changed the pending set: %v", d.Pending)
	}
}

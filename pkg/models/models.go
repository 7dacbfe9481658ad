package models

import (
	"encoding/json"
	"strings"
)

// Admin represents the authenticated administrator profile returned by the backend
type Admin struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Product represents a catalog product owned by the backend. The console only
// caches pages of these in memory for display.
type Product struct {
	ID            FlexID   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"original_price,omitempty"`
	Stock         int      `json:"stock"`
	Sales         int      `json:"sales"`
	Brand         string   `json:"brand,omitempty"`
	Material      string   `json:"material,omitempty"`
	IsFeatured    bool     `json:"is_featured"`
	IsActive      bool     `json:"is_active"`
	Images        []string `json:"images,omitempty"`
	Sizes         []string `json:"sizes,omitempty"`
	Colors        []string `json:"colors,omitempty"`
}

// Categories splits the backend's comma-joined category field into the
// canonical multi-value form used everywhere inside this app.
func (p Product) Categories() []string {
	return SplitList(p.Category)
}

// SplitList splits a comma-joined label list, trimming whitespace and
// dropping empty entries.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of SplitList, producing the comma-joined form the
// backend accepts on writes.
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}

// FlexID is a product identifier that decodes from either a JSON string or a
// number. The backend is an external collaborator and has been observed using
// both shapes.
type FlexID string

func (id *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id FlexID) String() string { return string(id) }

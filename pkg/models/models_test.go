package models

import (
	"encoding/json"
	"testing"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{}},
		{"Shirts", []string{"Shirts"}},
		{"Shirts, Trending", []string{"Shirts", "Trending"}},
		{" Shirts ,, Trending ", []string{"Shirts", "Trending"}},
	}

	for _, test := range tests {
		got := SplitList(test.input)
		if len(got) != len(test.expected) {
			t.Errorf("SplitList(%q) = %v, expected %v", test.input, got, test.expected)
			continue
		}
		for i := range got {
			if got[i] != test.expected[i] {
				t.Errorf("SplitList(%q)[%d] = %q, expected %q", test.input, i, got[i], test.expected[i])
			}
		}
	}
}

func TestJoinListRoundTrip(t *testing.T) {
	labels := []string{"Shirts", "Trending"}
	joined := JoinList(labels)
	if joined != "Shirts, Trending" {
		t.Errorf("JoinList() = %q", joined)
	}
	back := SplitList(joined)
	if len(back) != 2 || back[0] != "Shirts" || back[1] != "Trending" {
		t.Errorf("round trip = %v", back)
	}
}

func TestFlexIDUnmarshal(t *testing.T) {
	tests := []struct {
		input    string
		expected FlexID
	}{
		{`"abc-123"`, "abc-123"},
		{`42`, "42"},
		{`42.0`, "42.0"},
	}

	for _, test := range tests {
		var id FlexID
		if err := json.Unmarshal([]byte(test.input), &id); err != nil {
			t.Errorf("Unmarshal(%s) error: %v", test.input, err)
			continue
		}
		if id != test.expected {
			t.Errorf("Unmarshal(%s) = %q, expected %q", test.input, id, test.expected)
		}
	}

	var id FlexID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Error("expected an error for a non-scalar id")
	}
}

func TestProductCategories(t *testing.T) {
	p := Product{Category: "Pants, Trending"}
	cats := p.Categories()
	if len(cats) != 2 || cats[0] != "Pants" || cats[1] != "Trending" {
		t.Errorf("Categories() = %v", cats)
	}
}

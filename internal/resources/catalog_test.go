package resources_test

import (
	"strings"
	"testing"

	"github.com/RichardoC/lumi/internal/resources"
)

func TestSearch(t *testing.T) {
	c := resources.Default()

	tests := []struct {
		term     string
		category resources.Category
		want     []string
	}{
		{"", "", []string{"1", "2", "3", "4", "5", "6", "7"}},
		{"", resources.CategoryHotline, []string{"1", "2"}},
		{"ANXIETY", "", []string{"3", "7"}},
		{"stress", resources.CategoryExercise, []string{"5"}},
		{"crisis", resources.CategoryArticle, nil},
		{"no such thing", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.term+"/"+string(tt.category), func(t *testing.T) {
			got := c.Search(tt.term, tt.category)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("Search(%q, %q) = %v, want %v", tt.term, tt.category, ids, tt.want)
			}
		})
	}
}

func TestParseRejectsUnknownCategory(t *testing.T) {
	_, err := resources.Parse([]byte(`- {id: "1", title: x, url: "https://example.org", category: podcast}`))
	if err == nil || !strings.Contains(err.Error(), "unknown category") {
		t.Fatalf("expected unknown category error, got %v", err)
	}
}

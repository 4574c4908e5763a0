package render

import (
	"strings"
	"testing"

	domain "github.com/foliopress/foliopress/internal/portfolio/domain"
)

func TestRenderIndexEscapesContent(t *testing.T) {
	r := NewRenderer()

	html, err := r.RenderIndex(domain.Content{
		FullName: "Jane <script>alert(1)</script>",
		Headline: "Engineer",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatal("markup leaked into the page unescaped")
	}
	if !strings.Contains(html, "Engineer") {
		t.Fatal("headline missing")
	}
}

func TestRenderIndexSanitizesTheme(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name  string
		theme domain.Theme
		want  []string
	}{
		{
			name:  "valid theme passes through",
			theme: domain.Theme{PrimaryColor: "#ff0099", FontFamily: "Space Grotesk"},
			want:  []string{"#ff0099", "Space Grotesk"},
		},
		{
			name:  "hostile values fall back to defaults",
			theme: domain.Theme{PrimaryColor: "red;}</style>", FontFamily: `"></style><script>`},
			want:  []string{"#111827", "Inter"},
		},
		{
			name: "empty theme gets defaults",
			want: []string{"#111827", "Inter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := r.RenderIndex(domain.Content{FullName: "Jane", Theme: tt.theme})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			for _, fragment := range tt.want {
				if !strings.Contains(html, fragment) {
					t.Fatalf("page missing %q", fragment)
				}
			}
		})
	}
}

func TestRenderIndexFallsBackToUsername(t *testing.T) {
	r := NewRenderer()

	html, err := r.RenderIndex(domain.Content{Username: "jdoe"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "jdoe") {
		t.Fatal("username not used as display name")
	}
}

func TestRenderNotFound(t *testing.T) {
	r := NewRenderer()

	html := r.RenderNotFound()
	if !strings.Contains(html, "404") {
		t.Fatal("not-found page missing status text")
	}
}

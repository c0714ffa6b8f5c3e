package image

import (
	"context"
	"strings"
	"testing"

	"logoforge/internal/brand"
	"logoforge/internal/domain"
	"logoforge/internal/storage"
)

func TestPlaceholderURL(t *testing.T) {
	asset, err := NewPlaceholder().Generate(context.Background(), GenerateRequest{JobID: "a1b2c3d4-0000"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	want := "https://via.placeholder.com/400/4A90E2/FFFFFF?text=Logo+a1b2c3"
	if asset.URL != want {
		t.Fatalf("URL = %q, want %q", asset.URL, want)
	}

	short, _ := NewPlaceholder().Generate(context.Background(), GenerateRequest{JobID: "abc"})
	if !strings.HasSuffix(short.URL, "Logo+abc") {
		t.Fatalf("short id URL = %q", short.URL)
	}
}

func TestSVGGenerateStoresFile(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), "http://cdn.test/static")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	gen, err := NewSVG(store)
	if err != nil {
		t.Fatalf("NewSVG returned error: %v", err)
	}

	asset, err := gen.Generate(context.Background(), GenerateRequest{
		JobID:  "job-1",
		Prompt: `A bold logo for "Tom & Jerry"`,
		Style:  domain.StyleMonogram,
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if asset.URL != "http://cdn.test/static/logos/job-1/logo.svg" {
		t.Fatalf("URL = %q", asset.URL)
	}
	body, err := store.Read(context.Background(), asset.StorageKey)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	svg := string(body)
	for _, want := range []string{"Tom &amp; Jerry", "#4A90E2", "Manrope-Bold", ">T</text>"} {
		if !strings.Contains(svg, want) {
			t.Fatalf("svg missing %q: %s", want, svg)
		}
	}
}

func TestRenderSVGVariants(t *testing.T) {
	for _, key := range domain.StyleKeys {
		svg := string(RenderSVG(brand.Derive("Nova logo", key)))
		if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
			t.Fatalf("%s: malformed svg", key)
		}
		if !strings.Contains(svg, brand.Style(key).AccentColor) {
			t.Fatalf("%s: accent colour missing", key)
		}
	}
}

func TestNewSVGRequiresStore(t *testing.T) {
	if _, err := NewSVG(nil); err == nil {
		t.Fatalf("expected error without storage")
	}
}

func TestNewGenerator(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	if g, err := NewGenerator(KindPlaceholder, nil); err != nil {
		t.Fatalf("placeholder: %v", err)
	} else if _, ok := g.(*Placeholder); !ok {
		t.Fatalf("placeholder kind built %T", g)
	}
	if g, err := NewGenerator(KindSVG, store); err != nil {
		t.Fatalf("svg: %v", err)
	} else if _, ok := g.(*SVG); !ok {
		t.Fatalf("svg kind built %T", g)
	}
	if _, err := NewGenerator("dalle", store); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

package image

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"

	"logoforge/internal/brand"
	"logoforge/internal/storage"
)

const svgSize = 400

// SVG renders the derived brand as a vector logo and stores it on disk.
type SVG struct {
	store *storage.FileStore
}

func NewSVG(store *storage.FileStore) (*SVG, error) {
	if store == nil {
		return nil, errors.New("svg generator: storage is required")
	}
	return &SVG{store: store}, nil
}

func (g *SVG) Generate(ctx context.Context, req GenerateRequest) (Asset, error) {
	if req.JobID == "" {
		return Asset{}, errors.New("svg generator: job id is required")
	}
	body := RenderSVG(brand.Derive(req.Prompt, req.Style))
	key, err := g.store.Write(ctx, fmt.Sprintf("logos/%s/logo.svg", req.JobID), body)
	if err != nil {
		return Asset{}, fmt.Errorf("svg generator: %w", err)
	}
	return Asset{
		URL:        g.store.URL(key),
		StorageKey: key,
		Format:     "image/svg+xml",
		Width:      svgSize,
		Height:     svgSize,
	}, nil
}

// RenderSVG draws the brand mark for the style's image key followed by the
// brand name in the selected font.
func RenderSVG(d brand.DerivedBrand) []byte {
	var buf bytes.Buffer
	accent := d.Style.AccentColor
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, svgSize, svgSize, svgSize, svgSize)
	buf.WriteString(`<rect width="100%" height="100%" fill="#FFFFFF"/>`)

	switch d.Style.ImageKey {
	case "image1":
		fmt.Fprintf(&buf, `<circle cx="200" cy="150" r="90" fill="%s"/>`, accent)
		fmt.Fprintf(&buf, `<text x="200" y="150" dy="0.35em" text-anchor="middle" font-family="Manrope-ExtraBold" font-weight="800" font-size="96" fill="#FFFFFF">%s</text>`, escape(d.Initial()))
	case "image2":
		fmt.Fprintf(&buf, `<polygon points="200,60 290,210 110,210" fill="%s"/>`, accent)
		fmt.Fprintf(&buf, `<circle cx="250" cy="170" r="45" fill="%s" fill-opacity="0.55"/>`, accent)
	case "image3":
		fmt.Fprintf(&buf, `<circle cx="200" cy="150" r="90" fill="%s"/>`, accent)
		buf.WriteString(`<circle cx="170" cy="130" r="12" fill="#FFFFFF"/><circle cx="230" cy="130" r="12" fill="#FFFFFF"/>`)
		buf.WriteString(`<path d="M160 180 Q200 215 240 180" stroke="#FFFFFF" stroke-width="8" fill="none" stroke-linecap="round"/>`)
	default:
		fmt.Fprintf(&buf, `<rect x="110" y="60" width="180" height="180" rx="24" fill="%s"/>`, accent)
	}

	fmt.Fprintf(&buf, `<text x="200" y="330" text-anchor="middle" font-family="%s" font-weight="%d" font-size="40" fill="%s">%s</text>`,
		d.FontStyle.Family(), d.FontStyle.Weight(), accent, escape(d.BrandName))
	buf.WriteString(`</svg>`)
	return buf.Bytes()
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

var _ Generator = (*SVG)(nil)

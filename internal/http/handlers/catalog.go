package handlers

import (
	"net/http"

	"logoforge/internal/brand"
)

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"styles": brand.Styles()})
}

// SurprisePrompt returns one random canned prompt with its style.
func (a *App) SurprisePrompt(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, brand.Surprise())
}

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Translator is the slice of the translation proxy the handlers consume.
// Translation is fail-open: callers always get text back.
type Translator interface {
	Text(ctx context.Context, text, targetLang string) string
	Object(ctx context.Context, obj map[string]interface{}, fields []string, targetLang string) map[string]interface{}
}

// TranslateHandler serves the translation proxy endpoints.
type TranslateHandler struct {
	translator Translator
	logger     *slog.Logger
}

func NewTranslateHandler(translator Translator, logger *slog.Logger) *TranslateHandler {
	return &TranslateHandler{translator: translator, logger: logger}
}

// Text handles POST /api/translate.
func (h *TranslateHandler) Text(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		TargetLang string `json:"targetLang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, r, h.logger, err)
		return
	}
	defer r.Body.Close()

	if req.Text == "" {
		respondError(w, r, h.logger, http.StatusBadRequest, "Text is required")
		return
	}
	if req.TargetLang == "" {
		req.TargetLang = "es"
	}

	translated := h.translator.Text(r.Context(), req.Text, req.TargetLang)
	respondJSON(w, r, h.logger, http.StatusOK, map[string]string{"translatedText": translated})
}

// Fields handles POST /api/translate/fields.
func (h *TranslateHandler) Fields(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Object     map[string]interface{} `json:"object"`
		Fields     []string               `json:"fields"`
		TargetLang string                 `json:"targetLang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, r, h.logger, err)
		return
	}
	defer r.Body.Close()

	if req.Object == nil || len(req.Fields) == 0 {
		respondError(w, r, h.logger, http.StatusBadRequest, "Object and fields are required")
		return
	}
	if req.TargetLang == "" {
		req.TargetLang = "es"
	}

	translated := h.translator.Object(r.Context(), req.Object, req.Fields, req.TargetLang)
	respondJSON(w, r, h.logger, http.StatusOK, translated)
}

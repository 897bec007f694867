// Package translate proxies the free Google translate web endpoint. Failures
// are non-fatal: callers always get text back, translated or not.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// langMap collapses locale tags onto the codes the endpoint accepts.
var langMap = map[string]string{
	"es": "es", "es-ES": "es",
	"pt": "pt", "pt-BR": "pt",
	"en": "en", "en-US": "en",
}

// Client calls a translate_a/single-compatible endpoint.
type Client struct {
	endpoint string
	httpc    *http.Client
	logger   *slog.Logger
}

func NewClient(endpoint string, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{},
		logger:   logger,
	}
}

// Text translates text into targetLang. English targets and empty input pass
// through untouched; any upstream failure returns the original text.
func (c *Client) Text(ctx context.Context, text, targetLang string) string {
	if text == "" || targetLang == "en" || targetLang == "en-US" {
		return text
	}
	target, ok := langMap[targetLang]
	if !ok {
		target = "es"
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return text
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "translation request failed", slog.String("error", err.Error()))
		return text
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "translation endpoint returned non-200",
			slog.Int("status", resp.StatusCode))
		return text
	}

	translated, err := decodeSegments(resp.Body)
	if err != nil || translated == "" {
		c.logger.WarnContext(ctx, "failed to decode translation response",
			slog.String("error", fmt.Sprintf("%v", err)))
		return text
	}
	return translated
}

// Object translates the named string fields of obj, returning a new map.
func (c *Client) Object(ctx context.Context, obj map[string]interface{}, fields []string, targetLang string) map[string]interface{} {
	if obj == nil || targetLang == "en" || targetLang == "en-US" {
		return obj
	}
	out := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	for _, field := range fields {
		if s, ok := out[field].(string); ok && s != "" {
			out[field] = c.Text(ctx, s, targetLang)
		}
	}
	return out
}

// decodeSegments parses the endpoint's nested-array response:
// [[["hola","hello",...],["mundo","world",...]],...] where the first element
// of each inner segment is a translated chunk.
func decodeSegments(body io.Reader) (string, error) {
	var raw []interface{}
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty translation response")
	}
	segments, ok := raw[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected translation response shape")
	}
	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if chunk, ok := parts[0].(string); ok {
			sb.WriteString(chunk)
		}
	}
	return sb.String(), nil
}

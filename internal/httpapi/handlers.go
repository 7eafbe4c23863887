package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/uebersetzer/internal/db"
	"horse.fit/uebersetzer/internal/globaltime"
	"horse.fit/uebersetzer/internal/language"
	"horse.fit/uebersetzer/internal/payloadschema"
	"horse.fit/uebersetzer/internal/reader"
	"horse.fit/uebersetzer/internal/translation"
)

const maxRequestBodyBytes = 256 * 1024

type languageItem struct {
	Code      string `json:"code"`
	Label     string `json:"label"`
	TTSLocale string `json:"tts_locale"`
}

type translateResponse struct {
	Text         string `json:"text"`
	Backend      string `json:"backend,omitempty"`
	SourceLang   string `json:"source_lang"`
	TargetLang   string `json:"target_lang"`
	LatencyMS    int64  `json:"latency_ms"`
	Succeeded    bool   `json:"succeeded"`
	ErrorMessage string `json:"error_message,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	Truncated    bool   `json:"truncated,omitempty"`
}

type modelStatusResponse struct {
	Language     string `json:"language"`
	Downloaded   bool   `json:"downloaded"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "uebersetzer",
		"time":    globaltime.UTC(),
		"mode":    s.deps.Translator.Mode(),
		"history": s.deps.History != nil,
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	entries := s.deps.Catalog.Entries()
	items := make([]languageItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, languageItem{Code: entry.Code, Label: entry.Label, TTSLocale: entry.TTSLocale})
	}
	return success(c, map[string]any{
		"items": items,
	})
}

func (s *Server) handleBackends(c echo.Context) error {
	return success(c, map[string]any{
		"mode":       s.deps.Translator.Mode(),
		"chain":      s.deps.Translator.ChainNames(),
		"registered": s.deps.BackendNames,
	})
}

func (s *Server) handleState(c echo.Context) error {
	return success(c, s.deps.Translator.State())
}

func (s *Server) handleTranslate(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	req, err := payloadschema.ValidateTranslateRequest(body)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	translator, err := s.translatorFor(req.Backend)
	if err != nil {
		return failValidation(c, map[string]string{"backend": err.Error()})
	}

	outcome := translator.Translate(c.Request().Context(), translation.Request{
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Text:       req.Text,
	})
	return success(c, newTranslateResponse(req.Text, outcome))
}

func (s *Server) handleTranslateURL(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	req, err := payloadschema.ValidateTranslateURLRequest(body)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	translator, err := s.translatorFor(req.Backend)
	if err != nil {
		return failValidation(c, map[string]string{"backend": err.Error()})
	}

	fetchOpts := reader.FetchOptions{MaxChars: req.MaxChars}
	if !language.IsAuto(req.SourceLang) {
		fetchOpts.AcceptLanguage = req.SourceLang
	}
	page, err := s.deps.FetchPage(c.Request().Context(), req.URL, fetchOpts)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", req.URL).Msg("fetch page failed")
		return failUpstream(c, "Failed to fetch page", map[string]string{"url": err.Error()})
	}

	outcome := translator.Translate(c.Request().Context(), translation.Request{
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Text:       page.Text,
	})
	resp := newTranslateResponse(page.Text, outcome)
	resp.SourceURL = page.URL
	resp.Truncated = page.Truncated
	return success(c, resp)
}

func (s *Server) handleModelStatus(c echo.Context) error {
	lang, ok := modelLanguage(c)
	if !ok {
		return failValidation(c, map[string]string{"lang": "must be a language code"})
	}

	downloaded, err := s.deps.Translator.ModelStatus(c.Request().Context(), lang)
	if err != nil {
		if errors.Is(err, translation.ErrNoNativePlugin) {
			return failNotFound(c, "No on-device translation plugin is available")
		}
		s.logger.Error().Err(err).Str("lang", lang).Msg("model status failed")
		return failUpstream(c, "Failed to query language model", nil)
	}
	return success(c, modelStatusResponse{Language: lang, Downloaded: downloaded})
}

// handleEnsureModel answers 200 once the model is resident, 202 when the
// host accepted the download but is still installing it, and 502 with this
// call's own failure otherwise.
func (s *Server) handleEnsureModel(c echo.Context) error {
	lang, ok := modelLanguage(c)
	if !ok {
		return failValidation(c, map[string]string{"lang": "must be a language code"})
	}
	if s.deps.Translator.Mode() != translation.ModeNative {
		return failNotFound(c, "No on-device translation plugin is available")
	}

	if err := s.deps.Translator.EnsureModel(c.Request().Context(), lang); err != nil {
		return failUpstream(c, "Failed to prepare language model", modelStatusResponse{
			Language:     lang,
			ErrorMessage: err.Error(),
		})
	}

	downloaded, err := s.deps.Translator.ModelStatus(c.Request().Context(), lang)
	if err != nil {
		s.logger.Warn().Err(err).Str("lang", lang).Msg("model status after ensure failed")
		return failUpstream(c, "Failed to query language model", modelStatusResponse{
			Language:     lang,
			ErrorMessage: err.Error(),
		})
	}
	resp := modelStatusResponse{Language: lang, Downloaded: downloaded}
	if !downloaded {
		return successWithStatus(c, http.StatusAccepted, resp)
	}
	return success(c, resp)
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.deps.History == nil {
		return failNotFound(c, "Translation history is disabled")
	}

	limit, err := parsePositiveInt(c.QueryParam("limit"), 50, 1, 500)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}
	failedOnly, err := parseBool(c.QueryParam("failed"))
	if err != nil {
		return failValidation(c, map[string]string{"failed": err.Error()})
	}

	opts := db.HistoryListOptions{
		Limit:      limit,
		SourceLang: language.NormalizeCode(c.QueryParam("source_lang")),
		TargetLang: language.NormalizeCode(c.QueryParam("target_lang")),
		Backend:    strings.ToLower(strings.TrimSpace(c.QueryParam("backend"))),
		FailedOnly: failedOnly,
	}
	items, err := s.deps.History.List(c.Request().Context(), opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("query history failed")
		return internalError(c, "Failed to load translation history")
	}

	return success(c, map[string]any{
		"items": items,
		"limit": limit,
	})
}

func (s *Server) translatorFor(backend string) (Translator, error) {
	name := strings.TrimSpace(backend)
	if name == "" {
		return s.deps.Translator, nil
	}
	if s.deps.ForBackend == nil {
		return nil, fmt.Errorf("backend selection is not available")
	}
	return s.deps.ForBackend(name)
}

func newTranslateResponse(original string, outcome translation.Outcome) translateResponse {
	return translateResponse{
		Text:         outcome.Text,
		Backend:      outcome.Backend,
		SourceLang:   outcome.SourceLang,
		TargetLang:   outcome.TargetLang,
		LatencyMS:    outcome.LatencyMS,
		Succeeded:    outcome.Succeeded() || strings.TrimSpace(original) == "",
		ErrorMessage: outcome.ErrorMessage,
	}
}

func modelLanguage(c echo.Context) (string, bool) {
	lang := language.NormalizeCode(c.Param("lang"))
	return lang, lang != ""
}

func readBody(c echo.Context) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRequestBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(body) > maxRequestBodyBytes {
		return nil, fmt.Errorf("request body exceeds %d bytes", maxRequestBodyBytes)
	}
	return body, nil
}

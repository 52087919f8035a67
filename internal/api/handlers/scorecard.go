package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/scorecard"
	"github.com/wonny/scorecard/internal/source"
	"github.com/wonny/scorecard/internal/store"
	"github.com/wonny/scorecard/pkg/logger"
)

// SingleScorer scores one stock on demand
type SingleScorer interface {
	ProcessSingle(ctx context.Context, code, name string) (*contracts.ScorecardResult, error)
}

// ResultLoader reads saved results back
type ResultLoader interface {
	Load(ctx context.Context, source string) ([]store.Record, error)
}

// ScorecardHandler handles scorecard API endpoints
// ⭐ SSOT: 스코어카드 API 핸들러는 이 구조체에서만
type ScorecardHandler struct {
	scorer        SingleScorer
	loader        ResultLoader
	table         *scorecard.Table
	defaultSource string
	logger        *logger.Logger
}

// NewScorecardHandler creates a new scorecard handler.
// defaultSource는 source 파라미터가 없을 때 읽을 결과 위치
func NewScorecardHandler(scorer SingleScorer, loader ResultLoader, table *scorecard.Table, defaultSource string, log *logger.Logger) *ScorecardHandler {
	return &ScorecardHandler{
		scorer:        scorer,
		loader:        loader,
		table:         table,
		defaultSource: defaultSource,
		logger:        log,
	}
}

// GetScorecard scores one stock live
// GET /api/scorecards/{code}?name=삼성전자
func (h *ScorecardHandler) GetScorecard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	name := r.URL.Query().Get("name")

	result, err := h.scorer.ProcessSingle(r.Context(), code, name)
	if err != nil {
		status, message := errorStatus(err)
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"code":   code,
			"status": status,
		}).Warn("Failed to score stock")
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetResults returns saved results
// GET /api/results?source=postgres:2026-03-02
func (h *ScorecardHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("source")
	if src == "" {
		src = h.defaultSource
	}

	// 임의 파일 읽기 방지: DB 또는 설정된 결과 파일만 허용
	if !h.allowedSource(src) {
		respondError(w, http.StatusBadRequest, "source must be postgres[:YYYY-MM-DD] or the configured output")
		return
	}

	records, err := h.loader.Load(r.Context(), src)
	if err != nil {
		h.logger.WithError(err).WithField("source", src).Error("Failed to load results")
		respondError(w, http.StatusInternalServerError, "Failed to load results")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"source":  src,
		"count":   len(records),
		"results": records,
	})
}

// GetBands returns the active grade-band table as YAML
// GET /api/bands
func (h *ScorecardHandler) GetBands(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.table.Encode(&buf); err != nil {
		h.logger.WithError(err).Error("Failed to encode band table")
		respondError(w, http.StatusInternalServerError, "Failed to encode band table")
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	if hash, err := scorecard.Hash(h.table); err == nil {
		w.Header().Set("X-Bands-Hash", hash)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *ScorecardHandler) allowedSource(src string) bool {
	lower := strings.ToLower(src)
	if lower == store.DestPostgres || lower == store.DestDB || strings.HasPrefix(lower, store.DestPostgres+":") {
		return true
	}
	return src == h.defaultSource
}

// errorStatus maps a scoring error to an HTTP status
func errorStatus(err error) (int, string) {
	var verr *contracts.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}

	var ferr *contracts.SourceFetchError
	if errors.As(err, &ferr) {
		if errors.Is(err, source.ErrNoData) {
			return http.StatusNotFound, ferr.Error()
		}
		return http.StatusBadGateway, ferr.Error()
	}

	return http.StatusInternalServerError, "Internal server error"
}

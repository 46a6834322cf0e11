package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/af-corp/llm-cost-calculator/internal/calc"
	"github.com/af-corp/llm-cost-calculator/internal/catalog"
	"github.com/af-corp/llm-cost-calculator/internal/httputil"
	"github.com/af-corp/llm-cost-calculator/internal/models"
	"github.com/af-corp/llm-cost-calculator/internal/reference"
)

const maxBodyBytes = 1 << 20

// defaults resolves the curated defaults against the catalog being served.
func (s *Server) defaults() []models.Model {
	_, records, source := s.catalog.Snapshot()
	if source == SourceFallback {
		return models.CuratedDefaults()
	}
	return models.Resolve(records, models.CuratedDefaults())
}

func (s *Server) listDefaults(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"models": s.defaults()})
}

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"providers": s.index().Providers()})
}

func (s *Server) listRegions(w http.ResponseWriter, r *http.Request) {
	provider := r.URL.Query().Get("provider")
	if provider == "" {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"regions": reference.KnownRegions()})
		return
	}
	_, records, _ := s.catalog.Snapshot()
	regions := reference.NewMatcher(records, s.index()).RegionsFor(provider)
	if regions == nil {
		regions = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"provider": provider, "regions": regions})
}

type referencesResponse struct {
	Kind      string                `json:"kind"`
	Provider  string                `json:"provider"`
	Message   string                `json:"message,omitempty"`
	VendorURL string                `json:"vendorUrl,omitempty"`
	Records   []catalog.PriceRecord `json:"records"`
}

// findReferences handles GET /api/v1/references?provider=X&region=a&region=b.
// Regions may also be comma separated.
func (s *Server) findReferences(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	q := r.URL.Query()
	provider := q.Get("provider")
	if provider == "" {
		httputil.WriteBadRequestError(w, reqID, "provider is required")
		return
	}
	var regions []string
	for _, v := range q["region"] {
		for _, region := range strings.Split(v, ",") {
			if region = strings.TrimSpace(region); region != "" {
				regions = append(regions, region)
			}
		}
	}

	_, records, _ := s.catalog.Snapshot()
	res := reference.NewMatcher(records, s.index()).Find(provider, regions)
	out := referencesResponse{
		Kind:      res.Kind.String(),
		Provider:  provider,
		Message:   res.Message(),
		VendorURL: res.VendorURL,
		Records:   res.Records,
	}
	if out.Records == nil {
		out.Records = []catalog.PriceRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type estimateRequest struct {
	ModelID string      `json:"modelId"`
	Rates   *calc.Rates `json:"rates"`
	Usage   calc.Usage  `json:"usage"`
}

type estimateResponse struct {
	Model     *models.Model  `json:"model,omitempty"`
	Rates     calc.Rates     `json:"rates"`
	Breakdown calc.Breakdown `json:"breakdown"`
}

// estimate prices usage against a default model by id, or against
// explicit rates for models the server does not know about.
func (s *Server) estimate(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	var req estimateRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}
	if err := req.Usage.Validate(); err != nil {
		httputil.WriteValidationError(w, reqID, err.Error())
		return
	}

	var resp estimateResponse
	switch {
	case req.ModelID != "":
		m, ok := findModel(s.defaults(), req.ModelID)
		if !ok {
			httputil.WriteNotFoundError(w, reqID, "unknown model: "+req.ModelID)
			return
		}
		resp.Model = &m
		resp.Rates = calc.RatesOf(m)
	case req.Rates != nil:
		if req.Rates.InputCost < 0 || req.Rates.OutputCost < 0 {
			httputil.WriteValidationError(w, reqID, "rates must not be negative")
			return
		}
		resp.Rates = *req.Rates
	default:
		httputil.WriteBadRequestError(w, reqID, "modelId or rates is required")
		return
	}

	resp.Breakdown = calc.Compute(resp.Rates, req.Usage)
	if s.metrics != nil {
		s.metrics.RecordEstimate("single")
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type compareRequest struct {
	Region     string     `json:"region"`
	ModelIDs   []string   `json:"modelIds"`
	SelectedID string     `json:"selectedId"`
	Usage      calc.Usage `json:"usage"`
}

// compare runs a whole-region comparison, or a subset comparison when
// modelIds is given.
func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	var req compareRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}
	all := s.defaults()

	var (
		cmp  calc.Comparison
		err  error
		kind string
	)
	if len(req.ModelIDs) > 0 {
		kind = "compare_selected"
		subset := make([]models.Model, 0, len(req.ModelIDs))
		for _, id := range req.ModelIDs {
			m, ok := findModel(all, id)
			if !ok {
				httputil.WriteNotFoundError(w, reqID, "unknown model: "+id)
				return
			}
			subset = append(subset, m)
		}
		var selected *models.Model
		if req.SelectedID != "" {
			m, ok := findModel(all, req.SelectedID)
			if !ok {
				httputil.WriteNotFoundError(w, reqID, "unknown model: "+req.SelectedID)
				return
			}
			selected = &m
		}
		cmp, err = calc.CompareSelected(subset, req.Usage, selected)
	} else {
		kind = "compare_region"
		cmp, err = calc.CompareRegion(all, req.Region, req.Usage, req.SelectedID)
	}

	switch {
	case errors.Is(err, calc.ErrNoModels):
		httputil.WriteNotFoundError(w, reqID, "No models available in the selected region.")
		return
	case err != nil:
		httputil.WriteValidationError(w, reqID, err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.RecordEstimate(kind)
	}
	httputil.WriteJSON(w, http.StatusOK, cmp)
}

type embeddingRequest struct {
	ModelID   string              `json:"modelId"`
	InputType calc.EmbeddingInput `json:"inputType"`
	Value     float64             `json:"value"`
	PricePerK float64             `json:"pricePerK"`
}

func (s *Server) embedding(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	var req embeddingRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}
	if req.ModelID == "" {
		req.ModelID = calc.DefaultEmbeddingModel
	}
	model, ok := calc.LookupEmbeddingModel(req.ModelID)
	if !ok {
		httputil.WriteNotFoundError(w, reqID, "unknown embedding model: "+req.ModelID)
		return
	}
	if req.PricePerK == 0 {
		req.PricePerK = model.PricePerK
	}
	if req.InputType == "" {
		req.InputType = calc.InputDataSize
	}

	est, err := calc.EstimateEmbedding(req.InputType, req.Value, req.PricePerK)
	if err != nil {
		httputil.WriteValidationError(w, reqID, err.Error())
		return
	}
	if s.metrics != nil {
		s.metrics.RecordEstimate("embedding")
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"model": model, "estimate": est})
}

type tokensRequest struct {
	Text      string `json:"text"`
	Tokenizer string `json:"tokenizer"`
}

func (s *Server) countTokens(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	var req tokensRequest
	if !decodeBody(w, r, reqID, &req) {
		return
	}
	stats, err := calc.CountTokens(req.Text, req.Tokenizer)
	if err != nil {
		httputil.WriteValidationError(w, reqID, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func decodeBody(w http.ResponseWriter, r *http.Request, reqID string, dest any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return false
	}
	defer r.Body.Close()
	if err := json.Unmarshal(body, dest); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

func findModel(all []models.Model, id string) (models.Model, bool) {
	for _, m := range all {
		if m.ID == id {
			return m, true
		}
	}
	return models.Model{}, false
}

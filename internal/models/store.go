package models

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
)

// Store is the in-memory model set for one session: the defaults tier
// followed by the custom tier. Default-tier edits last only as long as the
// Store; custom-tier edits are persisted through the repository before they
// become visible. A Store is not safe for concurrent mutation.
type Store struct {
	repo     CustomRepository
	logger   *slog.Logger
	defaults []Model
	custom   []Model
	catalog  []catalog.PriceRecord
}

func NewStore(repo CustomRepository, logger *slog.Logger) *Store {
	return &Store{
		repo:     repo,
		logger:   logger,
		defaults: CuratedDefaults(),
	}
}

// Load resets both tiers: defaults from src (curated fallback on any
// failure) and custom models from the repository (empty on failure).
func (s *Store) Load(ctx context.Context, src catalog.Source) {
	s.defaults, s.catalog = LoadDefaults(ctx, src, s.logger)

	custom, err := s.repo.LoadCustom(ctx)
	if err != nil {
		s.logger.Warn("failed to load custom models, starting empty", "error", err)
		custom = nil
	}
	s.custom = custom

	// Entries stored before ids existed get one now, written back so the
	// next session sees the same id.
	assigned := 0
	for i := range s.custom {
		if s.custom[i].ID == "" {
			s.custom[i].ID = NewID()
			assigned++
		}
	}
	if assigned > 0 {
		if err := s.repo.SaveCustom(ctx, s.custom); err != nil {
			s.logger.Warn("failed to persist assigned model ids", "count", assigned, "error", err)
		}
	}
}

// Merged returns defaults ++ custom as a fresh slice.
func (s *Store) Merged() []Model {
	out := make([]Model, 0, len(s.defaults)+len(s.custom))
	out = append(out, s.defaults...)
	return append(out, s.custom...)
}

// Catalog returns the normalized catalog the defaults were resolved from,
// or nil when the fallback list is in use.
func (s *Store) Catalog() []catalog.PriceRecord {
	return s.catalog
}

type AddRequest struct {
	Provider   string
	Name       string
	Regions    []string
	InputCost  string
	OutputCost string
}

// AddCustom validates req and appends one custom model per non-blank
// region. Nothing changes unless the whole batch persists.
func (s *Store) AddCustom(ctx context.Context, req AddRequest) ([]Model, error) {
	provider := strings.TrimSpace(req.Provider)
	name := strings.TrimSpace(req.Name)
	if provider == "" {
		return nil, invalid("provider", "Please enter a provider.")
	}
	if name == "" {
		return nil, invalid("name", "Please enter a model name.")
	}
	inputCost, outputCost, err := parseCosts(req.InputCost, req.OutputCost)
	if err != nil {
		return nil, err
	}

	var added []Model
	for _, region := range req.Regions {
		region = strings.TrimSpace(region)
		if region == "" {
			continue
		}
		added = append(added, Model{
			ID:         NewID(),
			Provider:   provider,
			Name:       name,
			Region:     region,
			InputCost:  inputCost,
			OutputCost: outputCost,
			Tier:       TierCustom,
		})
	}
	if len(added) == 0 {
		return nil, invalid("regions", "Please select at least one region.")
	}

	next := make([]Model, 0, len(s.custom)+len(added))
	next = append(next, s.custom...)
	next = append(next, added...)
	if err := s.commitCustom(ctx, next); err != nil {
		return nil, err
	}
	return added, nil
}

type ModelUpdate struct {
	Region     string
	InputCost  string
	OutputCost string
}

// UpdateAt overwrites region and costs of the entry at a merged-view
// position. The position is resolved against the current defaults length.
func (s *Store) UpdateAt(ctx context.Context, index int, upd ModelUpdate) (Model, error) {
	region := strings.TrimSpace(upd.Region)
	if region == "" {
		return Model{}, invalid("region", "Please enter a region.")
	}
	inputCost, outputCost, err := parseCosts(upd.InputCost, upd.OutputCost)
	if err != nil {
		return Model{}, err
	}

	tier, offset, err := s.resolve(index)
	if err != nil {
		return Model{}, err
	}

	apply := func(m *Model) {
		m.Region = region
		m.InputCost = inputCost
		m.OutputCost = outputCost
	}

	if tier == TierDefault {
		apply(&s.defaults[offset])
		return s.defaults[offset], nil
	}

	next := make([]Model, len(s.custom))
	copy(next, s.custom)
	apply(&next[offset])
	if err := s.commitCustom(ctx, next); err != nil {
		return Model{}, err
	}
	return next[offset], nil
}

// DeleteAt removes the entry at a merged-view position. Only custom-tier
// deletions are persisted.
func (s *Store) DeleteAt(ctx context.Context, index int) (Model, error) {
	tier, offset, err := s.resolve(index)
	if err != nil {
		return Model{}, err
	}

	if tier == TierDefault {
		removed := s.defaults[offset]
		s.defaults = remove(s.defaults, offset)
		return removed, nil
	}

	removed := s.custom[offset]
	if err := s.commitCustom(ctx, remove(s.custom, offset)); err != nil {
		return Model{}, err
	}
	return removed, nil
}

func (s *Store) Update(ctx context.Context, id string, upd ModelUpdate) (Model, error) {
	index, err := s.IndexOf(id)
	if err != nil {
		return Model{}, err
	}
	return s.UpdateAt(ctx, index, upd)
}

func (s *Store) Delete(ctx context.Context, id string) (Model, error) {
	index, err := s.IndexOf(id)
	if err != nil {
		return Model{}, err
	}
	return s.DeleteAt(ctx, index)
}

// ResetCustom clears the custom tier and persists the empty set.
func (s *Store) ResetCustom(ctx context.Context) error {
	return s.commitCustom(ctx, nil)
}

// IndexOf returns the current merged-view position of id.
func (s *Store) IndexOf(id string) (int, error) {
	for i, m := range s.defaults {
		if m.ID == id {
			return i, nil
		}
	}
	for i, m := range s.custom {
		if m.ID == id {
			return len(s.defaults) + i, nil
		}
	}
	return -1, ErrNotFound
}

func (s *Store) Get(id string) (Model, error) {
	index, err := s.IndexOf(id)
	if err != nil {
		return Model{}, err
	}
	return s.Merged()[index], nil
}

// Filter returns merged models matching provider and region. An empty
// argument matches everything.
func (s *Store) Filter(provider, region string) []Model {
	var out []Model
	for _, m := range s.Merged() {
		if provider != "" && m.Provider != provider {
			continue
		}
		if region != "" && m.Region != region {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *Store) InRegion(region string) []Model {
	if region == "" {
		return nil
	}
	return s.Filter("", region)
}

// Regions lists distinct regions in first-seen merged order.
func (s *Store) Regions() []string {
	return distinct(s.Merged(), func(m Model) string { return m.Region })
}

// Providers lists distinct providers in first-seen order, restricted to
// region when it is non-empty.
func (s *Store) Providers(region string) []string {
	return distinct(s.Filter("", region), func(m Model) string { return m.Provider })
}

func (s *Store) resolve(index int) (Tier, int, error) {
	if index < 0 || index >= len(s.defaults)+len(s.custom) {
		return "", 0, ErrIndexOutOfRange
	}
	if index < len(s.defaults) {
		return TierDefault, index, nil
	}
	return TierCustom, index - len(s.defaults), nil
}

// commitCustom persists next and only then installs it as the custom tier.
func (s *Store) commitCustom(ctx context.Context, next []Model) error {
	if err := s.repo.SaveCustom(ctx, next); err != nil {
		return err
	}
	s.custom = next
	return nil
}

func parseCosts(input, output string) (float64, float64, error) {
	in, err := parseCost(input)
	if err != nil {
		return 0, 0, invalid("inputCost", "Input cost must be a number greater than or equal to 0.")
	}
	out, err := parseCost(output)
	if err != nil {
		return 0, 0, invalid("outputCost", "Output cost must be a number greater than or equal to 0.")
	}
	return in, out, nil
}

func parseCost(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func remove(models []Model, i int) []Model {
	out := make([]Model, 0, len(models)-1)
	out = append(out, models[:i]...)
	return append(out, models[i+1:]...)
}

func distinct(models []Model, field func(Model) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range models {
		v := field(m)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

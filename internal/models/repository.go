package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/af-corp/llm-cost-calculator/internal/kvstore"
)

// CustomModelsKey is the storage key holding the custom tier as a JSON array.
const CustomModelsKey = "customModels"

type CustomRepository interface {
	LoadCustom(ctx context.Context) ([]Model, error)
	SaveCustom(ctx context.Context, models []Model) error
}

// KVRepository persists the custom tier in a kvstore.Store.
type KVRepository struct {
	store kvstore.Store
}

func NewKVRepository(store kvstore.Store) *KVRepository {
	return &KVRepository{store: store}
}

// LoadCustom returns the stored custom models. A missing key is an empty
// tier. Entries written before ids existed come back with an empty ID.
func (r *KVRepository) LoadCustom(ctx context.Context) ([]Model, error) {
	data, err := r.store.Get(ctx, CustomModelsKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load custom models: %w", err)
	}

	var stored []Model
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode custom models: %w", err)
	}
	for i := range stored {
		stored[i].Tier = TierCustom
	}
	return stored, nil
}

func (r *KVRepository) SaveCustom(ctx context.Context, models []Model) error {
	if models == nil {
		models = []Model{}
	}
	data, err := json.Marshal(models)
	if err != nil {
		return fmt.Errorf("encode custom models: %w", err)
	}
	if err := r.store.Put(ctx, CustomModelsKey, data); err != nil {
		return fmt.Errorf("save custom models: %w", err)
	}
	return nil
}

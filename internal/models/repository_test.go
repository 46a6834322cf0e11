package models

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/af-corp/llm-cost-calculator/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := kvstore.NewFile(t.TempDir())
	require.NoError(t, err)
	repo := NewKVRepository(kv)

	got, err := repo.LoadCustom(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	models := []Model{{ID: "01J", Provider: "OpenAI", Name: "gpt-4o", Region: "us-east-1", InputCost: 0.0025, OutputCost: 0.01, Tier: TierCustom}}
	require.NoError(t, repo.SaveCustom(ctx, models))

	got, err = repo.LoadCustom(ctx)
	require.NoError(t, err)
	assert.Equal(t, models, got)

	require.NoError(t, repo.SaveCustom(ctx, nil))
	raw, err := kv.Get(ctx, CustomModelsKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestKVRepository_LegacyEntries(t *testing.T) {
	ctx := context.Background()
	kv, err := kvstore.OpenSQLite(ctx, filepath.Join(t.TempDir(), "llmcost.db"))
	require.NoError(t, err)
	defer kv.Close()

	legacy := `[{"provider":"Mistral AI","name":"mistral-large","region":"eu-west-1","inputCost":0.004,"outputCost":0.012,"source":"custom"},
	            {"provider":"Mistral AI","name":"mistral-small","region":"eu-west-1","inputCost":0.001,"outputCost":0.003}]`
	require.NoError(t, kv.Put(ctx, CustomModelsKey, []byte(legacy)))

	got, err := NewKVRepository(kv).LoadCustom(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, m := range got {
		assert.Empty(t, m.ID)
		assert.Equal(t, TierCustom, m.Tier)
	}
	assert.Equal(t, 0.004, got[0].InputCost)
}

func TestStore_LegacyIDsStableAcrossSessions(t *testing.T) {
	ctx := context.Background()
	kv, err := kvstore.NewFile(t.TempDir())
	require.NoError(t, err)
	legacy := `[{"provider":"X","name":"m","region":"us-east-1","inputCost":0.001,"outputCost":0.002}]`
	require.NoError(t, kv.Put(ctx, CustomModelsKey, []byte(legacy)))

	s1 := NewStore(NewKVRepository(kv), discardLogger())
	s1.Load(ctx, failingSource{})
	merged := s1.Merged()
	require.Len(t, merged, 6)
	id := merged[5].ID
	require.NotEmpty(t, id)

	s2 := NewStore(NewKVRepository(kv), discardLogger())
	s2.Load(ctx, failingSource{})
	assert.Equal(t, id, s2.Merged()[5].ID)

	deleted, err := s2.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "m", deleted.Name)

	s3 := NewStore(NewKVRepository(kv), discardLogger())
	s3.Load(ctx, failingSource{})
	assert.Len(t, s3.Merged(), 5)
}

func TestKVRepository_Corrupt(t *testing.T) {
	ctx := context.Background()
	kv, err := kvstore.NewFile(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, CustomModelsKey, []byte("{oops")))

	_, err = NewKVRepository(kv).LoadCustom(ctx)
	assert.ErrorContains(t, err, "decode custom models")
}

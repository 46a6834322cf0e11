package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/af-corp/llm-cost-calculator/internal/calc"
	"github.com/af-corp/llm-cost-calculator/internal/models"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	configDir string
	catalog   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	configDir := filepath.Join(dir, "configs")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	catalogPath := filepath.Join(dir, "normalized-pricing.json")
	cfg := fmt.Sprintf(`
pricing:
  catalog_path: %q
storage:
  backend: file
  path: %q
`, catalogPath, filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "calculator.yaml"), []byte(cfg), 0o644))
	return &env{configDir: configDir, catalog: catalogPath}
}

// run executes one CLI invocation, which is one session.
func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := e.runApp(t, stdin, args...)
	return out, err
}

func (e *env) runApp(t *testing.T, stdin string, args ...string) (string, *app, error) {
	t.Helper()
	a := &app{}
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", e.configDir}, args...))
	err := a.execute(context.Background(), root)
	return out.String(), a, err
}

func (e *env) listModels(t *testing.T) []models.Model {
	t.Helper()
	out, err := e.run(t, "", "models", "list", "--json")
	require.NoError(t, err)
	var list []models.Model
	require.NoError(t, json.Unmarshal([]byte(out), &list), out)
	return list
}

func TestModels_DefaultsWithoutCatalog(t *testing.T) {
	e := newEnv(t)
	list := e.listModels(t)
	require.Len(t, list, 5)
	assert.Equal(t, "default-1", list[0].ID)
	assert.Equal(t, models.TierDefault, list[0].Tier)

	out, err := e.run(t, "", "models", "list", "--region", "mumbai")
	require.NoError(t, err)
	assert.Contains(t, out, "Llama 3 Instruct (70B)")
	assert.NotContains(t, out, "Claude 3 Haiku")
}

func TestModels_CatalogEnrichesDefaults(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.catalog, []byte(`[
		{"provider":"AWS","name":"Claude 3 Opus","region":"us-east-1","inputCost":0.02,"outputCost":0.08}
	]`), 0o644))

	list := e.listModels(t)
	assert.Equal(t, 0.02, list[2].InputCost)
	assert.Equal(t, 0.00025, list[0].InputCost)
}

func TestModels_CustomLifecycle(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "models", "add", "--json",
		"--provider", "Anthropic", "--name", "Claude 3.5 Sonnet",
		"--region", "us-east-1,us-west-2", "--input", "0.003", "--output", "0.015")
	require.NoError(t, err)
	var added []models.Model
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	require.Len(t, added, 2)

	// A new invocation sees the persisted custom tier.
	list := e.listModels(t)
	require.Len(t, list, 7)
	assert.Equal(t, models.TierCustom, list[5].Tier)
	assert.Equal(t, "us-west-2", list[6].Region)

	_, err = e.run(t, "", "models", "update", added[0].ID, "--output", "0.02")
	require.NoError(t, err)
	list = e.listModels(t)
	assert.Equal(t, 0.02, list[5].OutputCost)
	assert.Equal(t, 0.003, list[5].InputCost, "unset flags keep current values")

	_, err = e.run(t, "", "models", "delete", added[1].ID)
	require.NoError(t, err)
	assert.Len(t, e.listModels(t), 6)

	_, err = e.run(t, "", "models", "reset")
	require.NoError(t, err)
	assert.Len(t, e.listModels(t), 5)
}

func TestModels_DefaultEditsAreSessionOnly(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "models", "update", "default-1", "--input", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "this run only")

	assert.Equal(t, 0.00025, e.listModels(t)[0].InputCost)
}

func TestModels_Errors(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "models", "add", "--name", "x", "--region", "us-east-1", "--input", "1", "--output", "1")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please enter a provider.", verr.Message)

	_, err = e.run(t, "", "models", "delete", "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCalculate(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "calculate", "default-2",
		"--input-tokens", "500", "--output-tokens", "300", "--requests", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "Claude 3 Sonnet")
	assert.Contains(t, out, "$6.0000")

	out, err = e.run(t, "", "calculate", "--json", "--input-cost", "0.001", "--output-cost", "0.002",
		"--input-tokens", "1000", "--output-tokens", "1000", "--requests", "10")
	require.NoError(t, err)
	var resp struct {
		Breakdown calc.Breakdown `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.InDelta(t, 0.03, resp.Breakdown.TotalCost, 1e-12)

	_, err = e.run(t, "", "calculate")
	assert.ErrorIs(t, err, errNothingToPrice)

	_, err = e.run(t, "", "calculate", "default-1", "--requests", "-1")
	assert.ErrorIs(t, err, calc.ErrNegativeUsage)
}

func TestCompare(t *testing.T) {
	e := newEnv(t)
	usage := []string{"--input-tokens", "500", "--output-tokens", "300", "--requests", "1000"}

	out, err := e.run(t, "", append([]string{"compare", "--json", "--region", "us-east-1", "--selected", "default-2"}, usage...)...)
	require.NoError(t, err)
	var cmp calc.Comparison
	require.NoError(t, json.Unmarshal([]byte(out), &cmp))
	require.Len(t, cmp.Rows, 4)
	assert.Equal(t, "Claude 3 Haiku", cmp.Rows[0].Model.Name)
	assert.InDelta(t, 6.0, cmp.BaselineCost, 1e-9)

	out, err = e.run(t, "", append([]string{"compare", "default-3", "default-1"}, usage...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Base")
	assert.Contains(t, out, "+$")

	_, err = e.run(t, "", append([]string{"compare", "default-1"}, usage...)...)
	assert.ErrorIs(t, err, calc.ErrTooFewModels)

	_, err = e.run(t, "", append([]string{"compare", "--region", "sa-east-1"}, usage...)...)
	assert.ErrorIs(t, err, calc.ErrNoModels)
}

func TestReferencesAndRegions(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.catalog, []byte(`[
		{"provider":"Anthropic","name":"claude-3-haiku","region":"us-west-2","inputCost":0.00025,"outputCost":0.00125},
		{"provider":"Anthropic","name":"claude-3-haiku","region":"eu-west-1","inputCost":0.0003,"outputCost":0.0015}
	]`), 0o644))

	out, err := e.run(t, "", "references", "Anthropic", "--region", "us-west-2")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 reference price(s) for Anthropic")

	out, err = e.run(t, "", "references", "Writer")
	require.NoError(t, err)
	assert.Contains(t, out, "Refer to AWS Bedrock Pricing")

	out, err = e.run(t, "", "regions", "--provider", "Anthropic")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1\nus-west-2\n", out)

	out, err = e.run(t, "", "references")
	require.NoError(t, err)
	assert.Contains(t, out, "Mistral AI\n")
}

func TestEmbedAndTokens(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "embed", "--json", "--type", "token-count", "--value", "1000000")
	require.NoError(t, err)
	var resp struct {
		Estimate calc.EmbeddingEstimate `json:"estimate"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.InDelta(t, 0.024, resp.Estimate.TotalCost, 1e-12)

	_, err = e.run(t, "", "embed", "--model", "nope", "--value", "1")
	assert.Error(t, err)

	out, err = e.run(t, "Hello there. How are you?", "tokens", "--json", "--tokenizer", "llama")
	require.NoError(t, err)
	var stats calc.TextStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 25, stats.Characters)
	assert.Equal(t, 2, stats.Sentences)
	assert.Equal(t, 7, stats.EstimatedTokens)

	_, err = e.run(t, "   ", "tokens")
	assert.ErrorIs(t, err, calc.ErrEmptyText)
}

func TestExecute_ClosesStorageOnFailure(t *testing.T) {
	e := newEnv(t)
	cfg, err := os.ReadFile(filepath.Join(e.configDir, "calculator.yaml"))
	require.NoError(t, err)
	cfg = bytes.Replace(cfg, []byte("backend: file"), []byte("backend: sqlite"), 1)
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "calculator.yaml"), cfg, 0o644))

	_, a, err := e.runApp(t, "", "models", "delete", "no-such-model")
	require.Error(t, err)
	assert.NotNil(t, a.store, "storage was opened")
	assert.Nil(t, a.kv, "storage closed after the failing command")

	_, a, err = e.runApp(t, "", "models", "list")
	require.NoError(t, err)
	assert.Nil(t, a.kv)
}

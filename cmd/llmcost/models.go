package main

import (
	"errors"
	"fmt"

	"github.com/af-corp/llm-cost-calculator/internal/models"
	"github.com/spf13/cobra"
)

func modelsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model", "m"},
		Short:   "List and manage models",
		Long: `List the merged model set and manage custom models.

Default models come from the curated list, enriched with catalog prices.
Custom models are persisted in the configured storage backend. Edits to
default models only apply to the current invocation.`,
	}
	cmd.AddCommand(
		modelsListCmd(a),
		modelsAddCmd(a),
		modelsUpdateCmd(a),
		modelsDeleteCmd(a),
		modelsResetCmd(a),
	)
	return cmd
}

func modelsListCmd(a *app) *cobra.Command {
	var provider, region string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List default and custom models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := a.store.Filter(provider, region)
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			return renderModels(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "only models from this provider")
	cmd.Flags().StringVar(&region, "region", "", "only models in this region")
	return cmd
}

func modelsAddCmd(a *app) *cobra.Command {
	var req models.AddRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a custom model in one or more regions",
		Example: `  llmcost models add --provider Anthropic --name "Claude 3.5 Sonnet" \
    --region us-east-1 --region us-west-2 --input 0.003 --output 0.015`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := a.store.AddCustom(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), added)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d custom model(s)\n", success("Added"), len(added))
			return renderModels(cmd.OutOrStdout(), added)
		},
	}
	cmd.Flags().StringVar(&req.Provider, "provider", "", "provider name")
	cmd.Flags().StringVar(&req.Name, "name", "", "model name")
	cmd.Flags().StringSliceVar(&req.Regions, "region", nil, "region (repeatable or comma separated)")
	cmd.Flags().StringVar(&req.InputCost, "input", "", "input cost, USD per 1K tokens")
	cmd.Flags().StringVar(&req.OutputCost, "output", "", "output cost, USD per 1K tokens")
	return cmd
}

func modelsUpdateCmd(a *app) *cobra.Command {
	var upd models.ModelUpdate
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a model's region or costs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.store.Get(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			// Unset flags keep the current values.
			if !cmd.Flags().Changed("region") {
				upd.Region = current.Region
			}
			if !cmd.Flags().Changed("input") {
				upd.InputCost = formatCost(current.InputCost)
			}
			if !cmd.Flags().Changed("output") {
				upd.OutputCost = formatCost(current.OutputCost)
			}

			m, err := a.store.Update(cmd.Context(), args[0], upd)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), m)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", success("Updated"), m.Name)
			if m.Tier == models.TierDefault {
				fmt.Fprintln(cmd.OutOrStdout(), muted("default models are not persisted; the change applies to this run only"))
			}
			return renderModels(cmd.OutOrStdout(), []models.Model{m})
		},
	}
	cmd.Flags().StringVar(&upd.Region, "region", "", "new region")
	cmd.Flags().StringVar(&upd.InputCost, "input", "", "new input cost, USD per 1K tokens")
	cmd.Flags().StringVar(&upd.OutputCost, "output", "", "new output cost, USD per 1K tokens")
	return cmd
}

func modelsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a model",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.store.Delete(cmd.Context(), args[0])
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", success("Deleted"), m.Name, m.Region)
			return nil
		},
	}
}

func modelsResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove every custom model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.ResetCustom(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), success("Custom models cleared"))
			return nil
		},
	}
}

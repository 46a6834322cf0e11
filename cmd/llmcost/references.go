package main

import (
	"fmt"
	"sort"

	"github.com/af-corp/llm-cost-calculator/internal/reference"
	"github.com/spf13/cobra"
)

func referencesCmd(a *app) *cobra.Command {
	var regions []string
	cmd := &cobra.Command{
		Use:     "references <provider>",
		Aliases: []string{"refs"},
		Short:   "Show catalog prices comparable to a provider's models",
		Long: `Show catalog prices comparable to a provider's models, to help price a
custom model. Without a provider, the known providers are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeLines(cmd.OutOrStdout(), a.jsonOut, a.index.Providers())
			}
			res := reference.NewMatcher(a.store.Catalog(), a.index).Find(args[0], regions)
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"kind":      res.Kind.String(),
					"provider":  res.Provider,
					"message":   res.Message(),
					"vendorUrl": res.VendorURL,
					"records":   res.Records,
				})
			}
			if res.Kind != reference.KindMatches {
				fmt.Fprintln(cmd.OutOrStdout(), warning(res.Message()))
				return nil
			}
			return renderReferences(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringSliceVar(&regions, "region", nil, "only these regions (repeatable or comma separated)")
	return cmd
}

func regionsCmd(a *app) *cobra.Command {
	var provider string
	var known bool
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List regions",
		Long: `List the regions of the current model set. With --provider, list the
catalog regions that provider's reference models appear in. With --known,
list the regions offered when adding a custom model.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []string
			switch {
			case known:
				out = reference.KnownRegions()
			case provider != "":
				out = reference.NewMatcher(a.store.Catalog(), a.index).RegionsFor(provider)
			default:
				out = a.store.Regions()
				sort.Strings(out)
			}
			return writeLines(cmd.OutOrStdout(), a.jsonOut, out)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "regions with reference pricing for this provider")
	cmd.Flags().BoolVar(&known, "known", false, "list the regions offered for custom models")
	return cmd
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStrengthCmd(a *app) *cobra.Command {
	var (
		competitors []string
		year        int
		trackType   string
	)

	cmd := &cobra.Command{
		Use:   "strength",
		Short: "Print the strength rating of each competitor",
		RunE: func(cmd *cobra.Command, args []string) error {
			aggregator, err := a.aggregator()
			if err != nil {
				return err
			}
			strengths, err := aggregator.Estimator().EstimateAll(cmd.Context(), competitors, year, trackType)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COMPETITOR\tSTRENGTH")
			for _, id := range strengths.IDs() {
				value, _ := strengths.Get(id)
				fmt.Fprintf(w, "%s\t%.4f\n", id, value)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringSliceVar(&competitors, "competitors", nil, "Competitor IDs (comma separated or repeated)")
	cmd.Flags().IntVar(&year, "year", 0, "Target season")
	cmd.Flags().StringVar(&trackType, "track-type", "", "Track type or category")
	_ = cmd.MarkFlagRequired("competitors")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("track-type")

	return cmd
}

func newTracksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List accepted track types",
		RunE: func(cmd *cobra.Command, args []string) error {
			aggregator, err := a.aggregator()
			if err != nil {
				return err
			}
			for _, trackType := range aggregator.Estimator().Catalog().TrackTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), trackType)
			}
			return nil
		},
	}
}

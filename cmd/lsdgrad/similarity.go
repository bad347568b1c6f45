package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/lsdgrad/internal/anal"
	"github.com/KyungWonPark/lsdgrad/internal/io"
)

func (a *app) similarityCmd() *cobra.Command {
	var (
		gradDirs   []string
		refPath    string
		metricName string
		out        string
	)

	cmd := &cobra.Command{
		Use:   "similarity",
		Short: "Compare subject gradients with a reference or between two groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := anal.ParseMetric(metricName)
			if err != nil {
				return err
			}

			groups := make([]anal.Group, 0, len(gradDirs))
			for _, dir := range gradDirs {
				g, err := anal.LoadGroup(dir)
				if err != nil {
					return err
				}
				groups = append(groups, g)
			}

			var (
				rows   []anal.SimilarityRow
				paired = refPath == ""
			)
			err = a.stage("similarity", func() error {
				if !paired {
					ref, err := anal.LoadGradient(refPath)
					if err != nil {
						return err
					}
					rows, err = anal.CompareToReference(groups, ref, metric)
					return err
				}

				if len(groups) != 2 {
					return fmt.Errorf("without --reference exactly two --grad-dir are needed, got %d", len(groups))
				}
				var err error
				rows, err = anal.ComparePairs(groups[0], groups[1], metric)
				return err
			})
			if err != nil {
				return err
			}

			for range rows {
				a.rec.Subject("similarity")
			}

			header, records := anal.SimilarityTable(rows, metric, paired)
			if err := io.WriteTable(out, header, records); err != nil {
				return err
			}
			log.Info().Int("rows", len(rows)).Bool("paired", paired).Msg("similarity table written")
			saved(cmd.OutOrStdout(), out)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&gradDirs, "grad-dir", nil, "directories of <subject>.npy gradients, one per group")
	cmd.Flags().StringVar(&refPath, "reference", "", "optional reference gradient; without it two groups are compared subject by subject")
	cmd.Flags().StringVar(&metricName, "metric", string(anal.Corr), "corr, euclid or both")
	cmd.Flags().StringVar(&out, "out", "gradient_similarity.tsv", "output TSV")
	cmd.MarkFlagRequired("grad-dir")

	return cmd
}

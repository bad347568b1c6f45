package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/KyungWonPark/lsdgrad/internal/io"
)

func (a *app) fcCmd() *cobra.Command {
	var (
		roiPaths  []string
		timeFirst bool
		out       string
	)

	cmd := &cobra.Command{
		Use:   "fc",
		Short: "Build a Pearson FC matrix from ROI time series",
		Long: "Build a Pearson FC matrix from ROI time series. With several --roi-ts inputs the\n" +
			"per-subject matrices are averaged in Fisher z space into one group matrix.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range roiPaths {
				if path == "" {
					return fmt.Errorf("--roi-ts: empty path")
				}
			}
			if len(roiPaths) == 0 {
				return fmt.Errorf("--roi-ts: at least one time series file is needed")
			}

			var fcs []*mat.Dense

			err := a.stage("fc", func() error {
				for _, path := range roiPaths {
					ts, err := io.LoadMatrix(path)
					if err != nil {
						return err
					}
					if timeFirst {
						ts = mat.DenseCopyOf(ts.T())
					}

					regions, timePoints := ts.Dims()
					fc := mat.NewDense(regions, regions, nil)
					if err := a.pl.Pearson(ts, fc); err != nil {
						return err
					}

					fcs = append(fcs, fc)
					a.rec.Subject("fc")
					log.Debug().Str("file", path).Int("regions", regions).Int("timepoints", timePoints).Msg("FC built")
				}
				return nil
			})
			if err != nil {
				return err
			}

			fc := fcs[0]
			if len(fcs) > 1 {
				if fc, err = a.pl.FisherMean(fcs); err != nil {
					return err
				}
				log.Info().Int("subjects", len(fcs)).Msg("group FC averaged")
			}

			if err := io.SaveMatrix(out, fc); err != nil {
				return err
			}
			saved(cmd.OutOrStdout(), out)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roiPaths, "roi-ts", nil, "ROI by time matrices (.npy, .csv or .txt)")
	cmd.Flags().BoolVar(&timeFirst, "time-first", false, "inputs are time by ROI")
	cmd.Flags().StringVar(&out, "out", "outputs/fc.npy", "output .npy or .csv path")
	cmd.MarkFlagRequired("roi-ts")

	return cmd
}

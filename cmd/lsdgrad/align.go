package main

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/lsdgrad/internal/anal"
	"github.com/KyungWonPark/lsdgrad/internal/extract"
	"github.com/KyungWonPark/lsdgrad/internal/io"
)

func (a *app) alignCmd() *cobra.Command {
	var (
		tsPath     string
		gradPath   string
		out        string
		saveSeries bool
	)

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Correlate every timepoint of every subject with a reference gradient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			grad, err := anal.LoadGradient(gradPath)
			if err != nil {
				return err
			}

			entries, err := io.ReadNpz(tsPath)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("%w: %s holds no time series", anal.ErrNoSubjects, tsPath)
			}

			alignments := make([]anal.Alignment, 0, len(entries))
			err = a.stage("align", func() error {
				for _, e := range entries {
					if err := cmd.Context().Err(); err != nil {
						return err
					}

					group, subject := extract.SplitKey(e.Key)
					al, err := anal.Align(a.pl, group, subject, e.Matrix, grad)
					if err != nil {
						return err
					}

					alignments = append(alignments, al)
					a.rec.Subject("align")
					log.Debug().Str("group", group).Str("subject", subject).Float64("mean_r", al.MeanR).Msg("aligned")
				}
				return nil
			})
			if err != nil {
				return err
			}

			header, records := anal.AlignmentTable(alignments)
			if err := io.WriteTable(out, header, records); err != nil {
				return err
			}
			if saveSeries {
				dir := filepath.Join(filepath.Dir(out), "corr_series")
				for _, al := range alignments {
					name := fmt.Sprintf("%s_%s_corr.npy", al.Group, al.Subject)
					if err := io.F64SliceToNpy(filepath.Join(dir, name), al.Series); err != nil {
						return err
					}
				}
			}

			log.Info().Int("subjects", len(alignments)).Msg("alignment summary written")
			saved(cmd.OutOrStdout(), out)

			return nil
		},
	}

	cmd.Flags().StringVar(&tsPath, "timeseries", "", "npz written by the extract command")
	cmd.Flags().StringVar(&gradPath, "gradient", "", "reference gradient vector (.npy, .csv or .txt)")
	cmd.Flags().StringVar(&out, "output", "gradient_correlations.tsv", "output TSV")
	cmd.Flags().BoolVar(&saveSeries, "save-series", false, "also save each subject's correlation series under corr_series/")
	cmd.MarkFlagRequired("timeseries")
	cmd.MarkFlagRequired("gradient")

	return cmd
}

package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/lsdgrad/internal/gradient"
	"github.com/KyungWonPark/lsdgrad/internal/io"
)

func (a *app) dynamicsCmd() *cobra.Command {
	var (
		roiPath  string
		gradPath string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "dynamics",
		Short: "Project ROI time courses into gradient space and summarise the trajectory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signal, err := io.LoadMatrix(roiPath)
			if err != nil {
				return err
			}

			basis, err := io.LoadGradients(gradPath)
			if err != nil {
				return err
			}

			var d gradient.Dynamics
			err = a.stage("dynamics", func() (err error) {
				d, err = gradient.Summarize(signal, basis)
				return err
			})
			if err != nil {
				return err
			}

			log.Info().Float64("mean_euclidean_step", d.MeanEuclideanStep).Msg("trajectory summarised")

			if err := io.SaveJSON(out, d); err != nil {
				return err
			}
			saved(cmd.OutOrStdout(), out)

			return nil
		},
	}

	cmd.Flags().StringVar(&roiPath, "roi-ts", "", "ROI by time matrix (.npy, .csv or .txt)")
	cmd.Flags().StringVar(&gradPath, "grad", "", "gradients npz (array G) or matrix file")
	cmd.Flags().StringVar(&out, "out", "outputs/dynamics.json", "output JSON path")
	cmd.MarkFlagRequired("roi-ts")
	cmd.MarkFlagRequired("grad")

	return cmd
}

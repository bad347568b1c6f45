package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/KyungWonPark/lsdgrad/internal/gradient"
	"github.com/KyungWonPark/lsdgrad/internal/io"
)

func (a *app) gradientsCmd() *cobra.Command {
	var (
		fcPath     string
		methodName string
		components int
		out        string
	)

	cmd := &cobra.Command{
		Use:   "gradients",
		Short: "Build a gradient embedding from an FC matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("method") {
				methodName = a.cfg.Method
			}
			if !cmd.Flags().Changed("n-components") {
				components = a.cfg.Components
			}

			method, err := gradient.ParseMethod(methodName)
			if err != nil {
				return err
			}

			fc, err := io.LoadMatrix(fcPath)
			if err != nil {
				return err
			}

			var basis *mat.Dense
			err = a.stage("gradients", func() error {
				aff, err := gradient.Affinity(fc, a.cfg.Epsilon)
				if err != nil {
					return err
				}
				basis, err = gradient.Embed(aff, components, method)
				return err
			})
			if err != nil {
				return err
			}

			rows, cols := basis.Dims()
			log.Info().Str("method", string(method)).Int("regions", rows).Int("components", cols).Msg("gradients embedded")

			if err := io.SaveNpz(out, []io.NpzEntry{{Key: io.GradientKey, Matrix: basis}}); err != nil {
				return err
			}
			saved(cmd.OutOrStdout(), out)

			return nil
		},
	}

	cmd.Flags().StringVar(&fcPath, "fc", "", "FC matrix (.npy, .csv or .txt)")
	cmd.Flags().StringVar(&methodName, "method", string(gradient.PCA), "embedding method (pca)")
	cmd.Flags().IntVar(&components, "n-components", gradient.DefaultComponents, "number of gradients")
	cmd.Flags().StringVar(&out, "out", "outputs/gradients.npz", "output npz path, basis stored under G")
	cmd.MarkFlagRequired("fc")

	return cmd
}

package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/lsdgrad/internal/connectivity"
	"github.com/KyungWonPark/lsdgrad/internal/io"
)

func (a *app) connectivityCmd() *cobra.Command {
	var (
		fcPath string
		atlas  string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "connectivity",
		Short: "Compute global FC and Louvain modularity from an FC matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := io.LoadMatrix(fcPath)
			if err != nil {
				return err
			}

			var summary connectivity.Summary
			err = a.stage("connectivity", func() (err error) {
				summary, err = connectivity.Summarize(a.pl, fc, atlas, a.cfg.Resolution)
				return err
			})
			if err != nil {
				return err
			}

			log.Info().Str("atlas", atlas).Int("communities", summary.Communities).Msg("connectivity summarised")

			if err := io.SaveJSON(out, summary); err != nil {
				return err
			}
			saved(cmd.OutOrStdout(), out)

			return nil
		},
	}

	cmd.Flags().StringVar(&fcPath, "fc", "", "FC matrix (.npy, .csv or .txt)")
	cmd.Flags().StringVar(&atlas, "atlas", "Schaefer100", "atlas name (metadata only)")
	cmd.Flags().StringVar(&out, "out", "outputs/connectivity.json", "output JSON path")
	cmd.MarkFlagRequired("fc")

	return cmd
}

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/lsdgrad/internal/extract"
	"github.com/KyungWonPark/lsdgrad/internal/io"
)

func (a *app) extractCmd() *cobra.Command {
	var (
		atlasPath   string
		labelsPath  string
		inputDirs   []string
		pattern     string
		standardize bool
		out         string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract parcel mean time series from NIfTI images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			atlasVol, err := extract.OpenVolume(atlasPath)
			if err != nil {
				return err
			}

			atlas, err := extract.NewAtlas(atlasVol)
			if err != nil {
				return err
			}

			if labelsPath != "" {
				names, err := extract.LoadLabels(labelsPath)
				if err != nil {
					return err
				}
				if err := atlas.SetNames(names); err != nil {
					return err
				}
			}

			atlasKey, err := extract.FileKey(atlasPath)
			if err != nil {
				return err
			}

			e := extract.NewExtractor(a.pl, atlas, atlasKey)
			e.Standardize = standardize
			e.Metrics = a.rec

			if a.cfg.CacheDir != "" {
				cache, err := extract.NewDiskCache(a.cfg.CacheDir, a.cfg.CacheMaxEntries)
				if err != nil {
					return err
				}
				e.Cache = cache
			}

			log.Info().Int("parcels", atlas.Len()).Strs("groups", inputDirs).Msg("extracting time series")

			var series []extract.Series
			err = a.stage("extract", func() (err error) {
				series, err = e.ExtractDirs(cmd.Context(), inputDirs, pattern)
				return err
			})
			if err != nil {
				return err
			}
			if len(series) == 0 {
				return fmt.Errorf("no images matching %q in %v", pattern, inputDirs)
			}

			entries := make([]io.NpzEntry, 0, len(series))
			for _, s := range series {
				entries = append(entries, io.NpzEntry{Key: s.Key(), Matrix: s.Matrix})
			}

			if err := io.SaveNpz(out, entries); err != nil {
				return err
			}
			saved(cmd.OutOrStdout(), out)

			return nil
		},
	}

	cmd.Flags().StringVar(&atlasPath, "atlas", "", "3-D NIfTI atlas with integer labels")
	cmd.Flags().StringVar(&labelsPath, "labels", "", "optional label names, one per line")
	cmd.Flags().StringSliceVar(&inputDirs, "input-dirs", nil, "directories of 4-D NIfTI images, one per group")
	cmd.Flags().StringVar(&pattern, "pattern", extract.DefaultPattern, "image file pattern")
	cmd.Flags().BoolVar(&standardize, "standardize", false, "z-score each parcel over time")
	cmd.Flags().StringVar(&out, "output", "timeseries.npz", "output npz with one <group>/<subject> array per image")
	cmd.MarkFlagRequired("atlas")
	cmd.MarkFlagRequired("input-dirs")

	return cmd
}

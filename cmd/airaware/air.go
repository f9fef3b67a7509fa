package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/i474232898/airaware/internal/airquality"
	"github.com/i474232898/airaware/internal/pipeline"
)

func (c *cli) newAirCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "air [city]",
		Short: "Show current air quality and activity advice",
		Long: `Show the current air quality for a city. Without a city the last
searched city is shown, or the device position given by --lat/--lon, or the
default city.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
			if latSet != lonSet {
				return errors.New("--lat and --lon must be given together")
			}

			var report pipeline.Report
			switch {
			case len(args) == 1:
				a.LoadSession(ctx)
				report, err = a.Orchestrator.Search(ctx, args[0])
			case latSet:
				a.LoadSession(ctx)
				geo := pipeline.StaticGeolocator(airquality.Coordinates{Latitude: lat, Longitude: lon})
				report, err = a.Orchestrator.UseGeolocationWith(ctx, geo)
			default:
				report, err = a.Orchestrator.Start(ctx)
			}
			if err != nil {
				return userError(err)
			}

			renderReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "device latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "device longitude")
	return cmd
}

// userError reduces a failed request to the message shown to users.
func userError(err error) error {
	var reqErr *pipeline.RequestError
	if errors.As(err, &reqErr) {
		return errors.New(reqErr.UserMessage())
	}
	return err
}

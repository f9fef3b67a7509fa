package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func (c *cli) newRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Rank major cities by current AQI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ranked, err := a.Orchestrator.Rankings(cmd.Context())
			if err != nil {
				return errors.New("could not load city rankings")
			}
			renderRankings(cmd.OutOrStdout(), ranked)
			return nil
		},
	}
}

package main

import (
	"github.com/helpcar/quotechat/internal/cli"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/spf13/cobra"
)

var composeOpts cli.ComposeOptions

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Print the message and link for answers given as flags",
	Example: `  quotechat compose --problem battery --vehicle sedan --transmission manual --4x4 no --address "Rue Neuve 1, Bruxelles"
  quotechat compose --problem towing --vehicle van --transmission automatic --4x4 yes --lat 50.85 --lng 4.35 --destination Gent`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		opts := composeOpts
		opts.Language, _ = cmd.Flags().GetString("language")
		if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lng, _ := cmd.Flags().GetFloat64("lng")
			opts.Position = &domain.Coordinates{Lat: lat, Lng: lng}
		}
		return cli.Compose(cmd.Context(), cfg, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(composeCmd)
	f := composeCmd.Flags()
	f.StringVar(&composeOpts.Problem, "problem", "", "battery, nostart, flat, towing, wreck, locked or other")
	f.StringVar(&composeOpts.Vehicle, "vehicle", "", "city, sedan, van or premium")
	f.StringVar(&composeOpts.Wheel, "wheel", "", "front or rear (flat tire)")
	f.StringVar(&composeOpts.Transmission, "transmission", "", "manual or automatic")
	f.StringVar(&composeOpts.FourWheelDrive, "4x4", "", "yes or no")
	f.StringVar(&composeOpts.Brand, "brand", "", "Brand (wreck)")
	f.StringVar(&composeOpts.Model, "model", "", "Model (wreck)")
	f.StringVar(&composeOpts.Year, "year", "", "Year (wreck)")
	f.StringVar(&composeOpts.Address, "address", "", "Pickup address")
	f.StringVar(&composeOpts.Destination, "destination", "", "Drop-off address (towing)")
	f.Float64("lat", 0, "Pickup latitude")
	f.Float64("lng", 0, "Pickup longitude")
	_ = composeCmd.MarkFlagRequired("problem")
}

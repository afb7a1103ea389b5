package main

import (
	"fmt"

	"github.com/James2022-rgb/gpmf-tools/internal/geoindex"
	"github.com/spf13/cobra"
)

var nearbyLat, nearbyLon float64

var nearbyCmd = &cobra.Command{
	Use:   "nearby <file.mp4> --lat <deg> --lon <deg>",
	Short: "Find the indexed fix closest to a lat/lon point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixes, err := loadFixes(args[0])
		if err != nil {
			return err
		}

		idx := geoindex.Build(fixes)
		logVerbose("indexed %d of %d fixes", idx.Len(), len(fixes))

		fix, distanceKm, ok := idx.NearestWithDistance(nearbyLat, nearbyLon)
		if !ok {
			fmt.Println("no usable fixes to search")
			return nil
		}

		fmt.Printf("nearest fix: lat=%.6f lon=%.6f alt=%.2fm (%.3f km away)\n",
			fix.Latitude, fix.Longitude, fix.Altitude, distanceKm)
		fmt.Printf("time: %s\n", fix.Time().Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	nearbyCmd.Flags().Float64Var(&nearbyLat, "lat", 0, "query latitude, degrees")
	nearbyCmd.Flags().Float64Var(&nearbyLon, "lon", 0, "query longitude, degrees")
	rootCmd.AddCommand(nearbyCmd)
}

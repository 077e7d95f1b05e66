// Command generate runs a single dashboard cycle and exits. It reads the same
// environment as the server.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/spencer-p/tidedash/pkg/config"
	"github.com/spencer-p/tidedash/pkg/dashboard"
	"github.com/spencer-p/tidedash/pkg/noaa"
	"github.com/spencer-p/tidedash/pkg/product"
)

const atLayout = "2006-01-02 15:04"

var (
	products []string
	at       string
	quiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the station animations once",
	Long: `Pulls the configured products from the CO-OPS API, renders their
animations into ASSETS_PATH and prints the latest observations and tides.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := config.Load()
		if err != nil {
			return err
		}

		kinds := env.Kinds()
		if len(products) > 0 {
			if kinds, err = product.ParseKinds(products); err != nil {
				return err
			}
		}

		now := time.Now().In(env.Location())
		if at != "" {
			if now, err = time.ParseInLocation(atLayout, at, env.Location()); err != nil {
				return fmt.Errorf("%w: --at %q: %v", product.ErrInvalidInput, at, err)
			}
		}

		for _, dir := range []string{env.AssetsPath, env.PlotPath} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}

		client := noaa.NewClient(env.Gateway())
		dash, err := dashboard.FromKinds(client, env.Location(), kinds, env.Settings)
		if err != nil {
			return err
		}
		dash.SetClock(func() time.Time { return now })

		ctx, cancel := context.WithTimeout(cmd.Context(), env.Interval)
		defer cancel()
		cycleErr := dash.RunCycle(ctx)

		snap := dash.Snapshot()
		out := cmd.OutOrStdout()
		for _, name := range snap.Artifacts {
			fmt.Fprintln(out, filepath.Join(env.AssetsPath, name))
		}
		if !quiet {
			for _, line := range snap.Latest.Lines() {
				fmt.Fprintln(out, line)
			}
			for _, row := range snap.Tides {
				fmt.Fprintln(out, row.String())
			}
		}
		return cycleErr
	},
}

func init() {
	rootCmd.Flags().StringSliceVarP(&products, "products", "p", nil, "products to render (default from PRODUCTS)")
	rootCmd.Flags().StringVar(&at, "at", "", `reference time as "`+atLayout+`" in the station time zone (default now)`)
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print artifact paths")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

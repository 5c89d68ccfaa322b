package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/contactkeval/option-heatmap/internal/config"
	"github.com/contactkeval/option-heatmap/internal/data"
	"github.com/contactkeval/option-heatmap/internal/logger"
	"github.com/contactkeval/option-heatmap/internal/pricing"
	"github.com/contactkeval/option-heatmap/internal/report"
	"github.com/contactkeval/option-heatmap/internal/scale"
	"github.com/contactkeval/option-heatmap/internal/server"
	"github.com/contactkeval/option-heatmap/internal/tenor"
)

func newPriceCmd() *cobra.Command {
	var (
		outputNames []string
		long        bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "price STRIKE SPOT RATE VOL TAU",
		Short: "Price call and put grids and write them as CSV",
		Long: "Price call and put grids around STRIKE and SPOT and write them as two CSV files.\n" +
			"RATE and VOL are decimals, TAU is in years.",
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			callName, putName := report.DefaultOutputNames(time.Now())
			if len(outputNames) != 0 {
				if len(outputNames) != 2 {
					return fmt.Errorf("--output-names takes exactly two file names, got %d", len(outputNames))
				}
				callName, putName = outputNames[0], outputNames[1]
			}

			if err := report.ValidateOutputNames(callName, putName); err != nil {
				return err
			}

			params, err := parseParams(args)
			if err != nil {
				return err
			}

			call, put, err := pricing.PriceChecked(params)
			if err != nil {
				return err
			}

			if err := writeGrids(cfg.OutputDir, callName, putName, call, put, long); err != nil {
				return err
			}
			if asJSON {
				return report.WriteJSON(cmd.OutOrStdout(), pricedGrids{Params: params, Call: call, Put: put})
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&outputNames, "output-names", "o", nil, "call and put file names, both ending in .csv (e.g. -o call.csv,put.csv)")
	cmd.Flags().BoolVar(&long, "long", false, "write one spot,strike,price record per line")
	cmd.Flags().BoolVar(&asJSON, "json", false, "also print both grids as JSON on stdout")
	return cmd
}

type pricedGrids struct {
	Params pricing.MarketParams `json:"params"`
	Call   pricing.Grid         `json:"call"`
	Put    pricing.Grid         `json:"put"`
}

func parseParams(args []string) (pricing.MarketParams, error) {
	names := []string{"strike", "spot", "risk free rate", "volatility", "time to maturity"}
	values := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return pricing.MarketParams{}, fmt.Errorf("%s: %w", names[i], err)
		}
		values[i] = v
	}
	return pricing.MarketParams{Strike: values[0], Spot: values[1], Rate: values[2], Vol: values[3], Tau: values[4]}, nil
}

func writeGrids(dir, callName, putName string, call, put pricing.Grid, long bool) error {
	write := report.WriteCSVFile
	if long {
		write = report.WriteLongCSVFile
	}

	for _, out := range []struct {
		name string
		grid pricing.Grid
	}{{callName, call}, {putName, put}} {
		path := out.name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if err := write(path, out.grid); err != nil {
			return err
		}
		logger.Infof("wrote %s", path)
	}
	return nil
}

type heatmapFlags struct {
	strike, spot, rate, vol, tau float64
	callPrice, putPrice          float64
	tauUnit, dayCount, palette   string
	profitLoss, noColor          bool
	ticker                       string
	realizedVol                  bool
	volLookback                  int
}

func newHeatmapCmd() *cobra.Command {
	var f heatmapFlags

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Draw call and put price heatmaps in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			params, purchase, palette, err := resolveHeatmap(ctx, cmd, f, cfg, newProvider(cfg))
			if err != nil {
				return err
			}

			return renderHeatmaps(cmd.OutOrStdout(), params, purchase, palette, f.profitLoss, !f.noColor && !color.NoColor)
		},
	}

	cmd.Flags().Float64Var(&f.strike, "strike", 0, "strike price (default from config)")
	cmd.Flags().Float64Var(&f.spot, "spot", 0, "spot price (default from config)")
	cmd.Flags().Float64Var(&f.rate, "rate", 0, "risk free rate as a decimal (default from config)")
	cmd.Flags().Float64Var(&f.vol, "vol", 0, "volatility as a decimal (default from config)")
	cmd.Flags().Float64Var(&f.tau, "tau", 0, "time to maturity in --tau-unit (default from config)")
	cmd.Flags().StringVar(&f.tauUnit, "tau-unit", "", "years, months or days (default from config)")
	cmd.Flags().StringVar(&f.dayCount, "day-count", "", "360, 365 or actual, used with days (default from config)")
	cmd.Flags().StringVar(&f.palette, "palette", "", "Red-Blue, Red-Green or Orange-Seafoam (default from config)")
	cmd.Flags().Float64Var(&f.callPrice, "call-price", 0, "price paid for the call (default the at-the-money value)")
	cmd.Flags().Float64Var(&f.putPrice, "put-price", 0, "price paid for the put (default the at-the-money value)")
	cmd.Flags().BoolVar(&f.profitLoss, "pl", false, "show profit and loss against the price paid")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colours")
	cmd.Flags().StringVar(&f.ticker, "ticker", "", "take the spot price from the previous close of this ticker")
	cmd.Flags().BoolVar(&f.realizedVol, "realized-vol", false, "with --ticker, use realized volatility instead of --vol")
	cmd.Flags().IntVar(&f.volLookback, "vol-lookback", 90, "calendar days of history for --realized-vol")
	return cmd
}

// newProvider picks Polygon when an API key is configured, otherwise the
// quotes from the config file.
func newProvider(c config.Config) data.Provider {
	if c.APIKey != "" {
		return data.NewPolygonDataProvider(c.APIKey, nil)
	}
	logger.Debugf("%s not set, using %d configured quotes", config.APIKeyEnv, len(c.Quotes))
	return data.NewStaticProvider(c.Quotes, c.Market.Vol)
}

// resolveHeatmap merges config, flags and market data into validated inputs.
func resolveHeatmap(ctx context.Context, cmd *cobra.Command, f heatmapFlags, c config.Config, prov data.Provider) (pricing.MarketParams, pricing.Purchase, scale.Palette, error) {
	var (
		params   = c.Market
		purchase = c.Purchase
		changed  = cmd.Flags().Changed
	)

	if changed("strike") {
		params.Strike = f.strike
	}
	if changed("spot") {
		params.Spot = f.spot
	}
	if changed("rate") {
		params.Rate = f.rate
	}
	if changed("vol") {
		params.Vol = f.vol
	}
	if changed("call-price") {
		purchase.Call = &f.callPrice
	}
	if changed("put-price") {
		purchase.Put = &f.putPrice
	}

	tauValue := params.Tau
	if changed("tau") {
		tauValue = f.tau
	}
	unitName := string(c.TauUnit)
	if changed("tau-unit") {
		unitName = f.tauUnit
	}
	convName := string(c.DayCount)
	if changed("day-count") {
		convName = f.dayCount
	}

	unit, err := tenor.ParseUnit(unitName)
	if err != nil {
		return pricing.MarketParams{}, pricing.Purchase{}, scale.Palette{}, err
	}
	conv, err := tenor.ParseConvention(convName)
	if err != nil {
		return pricing.MarketParams{}, pricing.Purchase{}, scale.Palette{}, err
	}
	params.Tau, err = tenor.YearFraction(tauValue, unit, conv, time.Now())
	if err != nil {
		return pricing.MarketParams{}, pricing.Purchase{}, scale.Palette{}, err
	}

	if f.ticker != "" {
		if prov == nil {
			return pricing.MarketParams{}, pricing.Purchase{}, scale.Palette{}, fmt.Errorf("--ticker needs %s or a configured quote", config.APIKeyEnv)
		}
		if params.Spot, err = prov.Spot(ctx, f.ticker); err != nil {
			return pricing.MarketParams{}, pricing.Purchase{}, scale.Palette{}, err
		}
		if f.realizedVol {
			to := time.Now()
			from := to.AddDate(0, 0, -f.volLookback)
			if params.Vol, err = prov.RealizedVol(ctx, f.ticker, from, to); err != nil {
				return pricing.MarketParams{}, pricing.Purchase{}, scale.Palette{}, err
			}
		}
		logger.Infof("%s spot=%.4f vol=%.4f", f.ticker, params.Spot, params.Vol)
	}

	key := c.Palette
	if changed("palette") {
		key = scale.PaletteKey(f.palette)
	}
	palette, err := scale.Lookup(key)
	if err != nil {
		return pricing.MarketParams{}, pricing.Purchase{}, scale.Palette{}, err
	}
	if palette.Name == scale.RedGreen {
		logger.Infof("warning: red-green colour palettes are not colour blind friendly")
	}

	if err := params.Validate(); err != nil {
		return pricing.MarketParams{}, pricing.Purchase{}, scale.Palette{}, err
	}
	if err := purchase.Validate(); err != nil {
		return pricing.MarketParams{}, pricing.Purchase{}, scale.Palette{}, err
	}
	return params, purchase, palette, nil
}

type heatmap struct {
	title string
	grid  pricing.Grid
	norm  scale.Descriptor
}

// buildHeatmaps prices params and normalizes the call and put surfaces
// against what was paid for each.
func buildHeatmaps(params pricing.MarketParams, purchase pricing.Purchase, profitLoss bool) ([]heatmap, error) {
	logger.Debugf("pricing strike=%v spot=%v rate=%v vol=%v tau=%v", params.Strike, params.Spot, params.Rate, params.Vol, params.Tau)

	call, put := pricing.Price(params)
	callRef := pricing.Reference(call, purchase.Call)
	putRef := pricing.Reference(put, purchase.Put)

	suffix := ""
	if profitLoss {
		call, put = pricing.ProfitLoss(call, put, &callRef, &putRef)
		suffix = " - P&L"
	}

	var out []heatmap
	for _, s := range []struct {
		title string
		grid  pricing.Grid
		ref   float64
	}{
		{"Call Option Pricing" + suffix, call, callRef},
		{"Put Option Pricing" + suffix, put, putRef},
	} {
		opts := scale.WithReference(s.ref)
		if profitLoss {
			opts = scale.ProfitLoss()
		}
		d, err := scale.Normalize(s.grid, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.title, err)
		}
		logger.Tracef("%s norm=%+v", s.title, d)
		out = append(out, heatmap{title: s.title, grid: s.grid, norm: d})
	}
	return out, nil
}

func renderHeatmaps(out io.Writer, params pricing.MarketParams, purchase pricing.Purchase, palette scale.Palette, profitLoss, colored bool) error {
	maps, err := buildHeatmaps(params, purchase, profitLoss)
	if err != nil {
		return err
	}

	for _, m := range maps {
		if err := report.RenderHeatmap(out, m.title, m.grid, m.norm, palette, report.HeatmapOptions{ProfitLoss: profitLoss, Color: colored}); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pricing and normalization over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			return server.ListenAndServe(addr, cfg.Palette)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

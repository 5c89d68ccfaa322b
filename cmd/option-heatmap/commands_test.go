package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-heatmap/internal/config"
	"github.com/contactkeval/option-heatmap/internal/data"
	"github.com/contactkeval/option-heatmap/internal/logger"
	"github.com/contactkeval/option-heatmap/internal/pricing"
	"github.com/contactkeval/option-heatmap/internal/report"
	"github.com/contactkeval/option-heatmap/internal/scale"
)

func TestPriceCommandWritesBothGrids(t *testing.T) {
	dir := t.TempDir()
	cfg = config.Default()
	cfg.OutputDir = dir

	cmd := newPriceCmd()
	cmd.SetArgs([]string{"10", "10", "0.05", "0.30", "1", "-o", "call.csv,put.csv"})
	require.NoError(t, cmd.Execute())

	for _, name := range []string{"call.csv", "put.csv"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		lines := strings.Split(strings.TrimSpace(string(b)), "\n")
		assert.Len(t, lines, pricing.AxisPoints+1, name)
		assert.True(t, strings.HasPrefix(lines[0], report.SpotHeader), name)
	}
}

func TestPriceCommandValidation(t *testing.T) {
	dir := t.TempDir()
	cfg = config.Default()
	cfg.OutputDir = dir

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "bad extension", args: []string{"10", "10", "0.05", "0.3", "1", "-o", "call.csv,put.txt"}, want: report.ErrBadExtension},
		{name: "names checked before params", args: []string{"10", "10", "0.05", "0", "1", "-o", "call.txt,put.csv"}, want: report.ErrBadExtension},
		{name: "strike", args: []string{"0", "10", "0.05", "0.3", "1", "-o", "c.csv,p.csv"}, want: pricing.ErrInvalidParams},
		{name: "vol", args: []string{"10", "10", "0.05", "0", "1", "-o", "c.csv,p.csv"}, want: pricing.ErrInvalidParams},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := newPriceCmd()
			cmd.SetArgs(tc.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			err := cmd.Execute()
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is written when validation fails")
}

func TestParseParams(t *testing.T) {
	p, err := parseParams([]string{"100", "95.5", "-0.01", "0.2", "0.5"})
	require.NoError(t, err)
	assert.Equal(t, pricing.MarketParams{Strike: 100, Spot: 95.5, Rate: -0.01, Vol: 0.2, Tau: 0.5}, p)

	_, err = parseParams([]string{"100", "abc", "0", "0.2", "1"})
	assert.ErrorContains(t, err, "spot")
}

func TestResolveHeatmap(t *testing.T) {
	c := config.Default()
	cmd := newHeatmapCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--tau", "6", "--tau-unit", "months", "--palette", "Red-Green", "--ticker", "SPY", "--realized-vol"}))

	var f heatmapFlags
	f.ticker = "SPY"
	f.realizedVol = true
	f.tau = 6
	f.tauUnit = "months"
	f.palette = "Red-Green"

	prov := data.NewStaticProvider(map[string]float64{"SPY": 581.39}, 0.18)
	params, purchase, palette, err := resolveHeatmap(context.Background(), cmd, f, c, prov)
	require.NoError(t, err)
	assert.Equal(t, pricing.Purchase{}, purchase)

	assert.Equal(t, 581.39, params.Spot)
	assert.Equal(t, 0.18, params.Vol)
	assert.Equal(t, 0.5, params.Tau)
	assert.Equal(t, c.Market.Strike, params.Strike)
	assert.Equal(t, scale.RedGreen, palette.Name)
}

func TestResolveHeatmapErrors(t *testing.T) {
	c := config.Default()

	cmd := newHeatmapCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--ticker", "SPY"}))
	_, _, _, err := resolveHeatmap(context.Background(), cmd, heatmapFlags{ticker: "SPY"}, c, nil)
	assert.ErrorContains(t, err, config.APIKeyEnv)

	cmd = newHeatmapCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--vol=-0.2"}))
	_, _, _, err = resolveHeatmap(context.Background(), cmd, heatmapFlags{vol: -0.2}, c, nil)
	assert.True(t, errors.Is(err, pricing.ErrInvalidParams))

	cmd = newHeatmapCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--palette", "Viridis"}))
	_, _, _, err = resolveHeatmap(context.Background(), cmd, heatmapFlags{palette: "Viridis"}, c, nil)
	assert.True(t, errors.Is(err, scale.ErrUnknownPalette))
}

func TestRenderHeatmaps(t *testing.T) {
	palette, err := scale.Lookup(scale.OrangeSeafoam)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderHeatmaps(&buf, config.Default().Market, pricing.Purchase{}, palette, false, false))
	out := buf.String()
	assert.Contains(t, out, "Call Option Pricing\n")
	assert.Contains(t, out, "Put Option Pricing\n")
	assert.Contains(t, out, "$1.42")

	buf.Reset()
	require.NoError(t, renderHeatmaps(&buf, config.Default().Market, pricing.Purchase{}, palette, true, false))
	assert.Contains(t, buf.String(), "Call Option Pricing - P&L")
	assert.Contains(t, buf.String(), "$0.00")
}

func TestPriceCommandJSON(t *testing.T) {
	cfg = config.Default()
	cfg.OutputDir = t.TempDir()

	var out bytes.Buffer
	cmd := newPriceCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"10", "10", "0.05", "0.30", "1", "-o", "call.csv,put.csv", "--json"})
	require.NoError(t, cmd.Execute())

	var got pricedGrids
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 10.0, got.Params.Strike)
	require.Len(t, got.Call.Values, pricing.AxisPoints)
	assert.InDelta(t, 1.4231, got.Call.ATM(), 1e-3)
	assert.InDelta(t, got.Call.ATM()-got.Put.ATM(), 10-10*math.Exp(-0.05), 1e-9)
}

func TestResolveHeatmapPurchasePrice(t *testing.T) {
	c := config.Default()
	cmd := newHeatmapCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--call-price", "100"}))

	_, purchase, _, err := resolveHeatmap(context.Background(), cmd, heatmapFlags{callPrice: 100}, c, nil)
	require.NoError(t, err)
	require.NotNil(t, purchase.Call)
	assert.Equal(t, 100.0, *purchase.Call)
	assert.Nil(t, purchase.Put)

	cmd = newHeatmapCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--put-price=-1"}))
	_, _, _, err = resolveHeatmap(context.Background(), cmd, heatmapFlags{putPrice: -1}, c, nil)
	assert.True(t, errors.Is(err, pricing.ErrInvalidParams))
}

func TestBuildHeatmapsPurchasePrice(t *testing.T) {
	paid := 100.0
	maps, err := buildHeatmaps(config.Default().Market, pricing.Purchase{Call: &paid}, false)
	require.NoError(t, err)
	require.Len(t, maps, 2)

	// paid more than any cell is worth: centre pinned just under the top
	call := maps[0].norm
	assert.Equal(t, 0.0, call.VMin)
	assert.Equal(t, maps[0].grid.Max(), call.VMax)
	assert.InDelta(t, call.VMax-scale.Epsilon, call.VCenter, 1e-12)

	// the put keeps its at-the-money centre
	assert.Equal(t, maps[1].grid.ATM(), maps[1].norm.VCenter)
}

func TestBuildHeatmapsProfitLossBaseline(t *testing.T) {
	paid := 1.0
	maps, err := buildHeatmaps(config.Default().Market, pricing.Purchase{Call: &paid}, true)
	require.NoError(t, err)

	assert.Equal(t, "Call Option Pricing - P&L", maps[0].title)
	assert.InDelta(t, 0.4231, maps[0].grid.ATM(), 1e-3)
	assert.Equal(t, 0.0, maps[0].norm.VCenter)
	assert.Equal(t, 0.0, maps[1].grid.ATM())
}

func TestNewProviderWithoutKeyUsesQuotes(t *testing.T) {
	c := config.Default()
	c.Quotes = map[string]float64{"spy": 581.39}

	prov := newProvider(c)
	require.NotNil(t, prov)

	spot, err := prov.Spot(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 581.39, spot)

	vol, err := prov.RealizedVol(context.Background(), "SPY", time.Now().AddDate(0, 0, -90), time.Now())
	require.NoError(t, err)
	assert.Equal(t, c.Market.Vol, vol)

	_, err = prov.Spot(context.Background(), "QQQ")
	assert.True(t, errors.Is(err, data.ErrNoData))
}

func TestRedGreenWarning(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	defer logger.SetOutput(os.Stderr)
	logger.SetVerbosity(int(logger.Info))

	c := config.Default()
	cmd := newHeatmapCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--palette", "red-green"}))
	_, _, _, err := resolveHeatmap(context.Background(), cmd, heatmapFlags{palette: "red-green"}, c, nil)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "not colour blind friendly")

	logs.Reset()
	cmd = newHeatmapCmd()
	_, _, _, err = resolveHeatmap(context.Background(), cmd, heatmapFlags{}, c, nil)
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "colour blind")
}

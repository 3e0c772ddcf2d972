package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/prismtrade/prismtrade/internal/analysis"
	"github.com/prismtrade/prismtrade/internal/config"
	"github.com/prismtrade/prismtrade/internal/history"
	"github.com/prismtrade/prismtrade/internal/logger"
	"github.com/prismtrade/prismtrade/internal/marketdata"
)

func main() {
	var (
		symbol     = flag.String("symbol", "", "Instrument symbol (e.g., BTCUSDT)")
		configFile = flag.String("config", "", "Configuration file (YAML, optional)")
		csvFile    = flag.String("csv", "", "Analyze a local CSV file instead of fetching from the exchange")
		exportFile = flag.String("export", "", "Export prediction history to this .xlsx file and exit")
		asJSON     = flag.Bool("json", false, "Print the raw result JSON instead of tables")
	)
	flag.Parse()

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "Please specify a symbol with -symbol")
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.Environment)

	var recorder *history.Recorder
	if cfg.History.Enabled {
		recorder = history.NewRecorder(cfg.History.Dir)
	}

	if *exportFile != "" {
		if recorder == nil {
			fmt.Fprintln(os.Stderr, "history is disabled, nothing to export")
			os.Exit(1)
		}
		if err := recorder.ExportXLSX(*symbol, *exportFile); err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported prediction history for %s to %s\n", *symbol, *exportFile)
		return
	}

	var provider marketdata.Provider
	var service *analysis.Service
	if *csvFile != "" {
		series, err := marketdata.LoadCSV(*csvFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load CSV: %v\n", err)
			os.Exit(1)
		}
		provider = &marketdata.StaticProvider{Series: series}
		service = analysis.NewService(provider, recorder, nil, log)
		if len(series) > 0 {
			// Offline data is valid at its own newest timestamp.
			frozen := series.Last().Timestamp.Add(time.Minute)
			service = service.WithClock(func() time.Time { return frozen })
		}
	} else {
		provider = marketdata.NewBybitProvider(marketdata.BybitConfig{
			APIKey:    cfg.MarketData.APIKey,
			APISecret: cfg.MarketData.APISecret,
			Testnet:   cfg.MarketData.Testnet,
			Category:  cfg.MarketData.Category,
		})
		service = analysis.NewService(provider, recorder, nil, log)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := service.Analyze(ctx, *symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(encoded))
		return
	}

	printSummary(result)
	printMarketState(result)
	printLevels(result)
	printForecasts(result)
	printReasons(result)
}

func printMarketState(result *analysis.Result) {
	if result.MarketState == nil {
		return
	}
	state := result.MarketState.Summarize()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("MARKET STATE")
	t.SetStyle(table.StyleRounded)

	direction := "neutral"
	if state.Bullish {
		direction = "bullish"
	} else if state.Bearish {
		direction = "bearish"
	}
	t.AppendRows([]table.Row{
		{"Direction", direction},
		{"Trend strength", fmt.Sprintf("%d%%", state.TrendStrength)},
	})
	if state.Correction {
		t.AppendRow(table.Row{"Correction depth", fmt.Sprintf("%.2f%%", state.CorrectionDepth)})
	}
	for _, note := range state.Explanation {
		t.AppendRow(table.Row{"", note})
	}
	t.Render()
	fmt.Println()
}

func printSummary(result *analysis.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("ANALYSIS: " + result.Symbol)
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Current price", fmt.Sprintf("%.4f", result.CurrentPrice)},
		{"Trend", result.Trend},
		{"Price change", fmt.Sprintf("%+.2f%%", result.PriceChange)},
		{"Volatility", fmt.Sprintf("%.2f%%", result.Volatility)},
		{"Momentum", fmt.Sprintf("%+.2f", result.Momentum)},
		{"RSI", fmt.Sprintf("%.1f", result.RSI)},
		{"MACD", fmt.Sprintf("%.4f", result.MACD)},
		{"Recommendation", result.Recommendation},
		{"Score", fmt.Sprintf("%+.2f", result.Score)},
		{"Confidence", fmt.Sprintf("%d%%", result.ConfidenceLevel)},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 16, Align: text.AlignLeft},
		{Number: 2, WidthMin: 28, Align: text.AlignLeft},
	})
	t.Render()
	fmt.Println()
}

func printLevels(result *analysis.Result) {
	levels := result.EntryExitPrices

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TRADE LEVELS")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Side", "Entry", "Exit", "Stop loss"})
	t.AppendRows([]table.Row{
		{"LONG", fmt.Sprintf("%.4f", levels.EntryBuy), fmt.Sprintf("%.4f", levels.ExitBuy), fmt.Sprintf("%.4f", levels.StopLossBuy)},
		{"SHORT", fmt.Sprintf("%.4f", levels.EntrySell), fmt.Sprintf("%.4f", levels.ExitSell), fmt.Sprintf("%.4f", levels.StopLossSell)},
	})
	t.AppendFooter(table.Row{"Holding", fmt.Sprintf("%d h", levels.HoldingPeriod), "", ""})
	t.Render()
	fmt.Println()
}

func printForecasts(result *analysis.Result) {
	if len(result.Predictions) == 0 {
		if result.ForecastNote != "" {
			fmt.Println(result.ForecastNote)
			fmt.Println()
		}
		return
	}

	horizons := make([]int, 0, len(result.Predictions))
	for key := range result.Predictions {
		if h, err := strconv.Atoi(key); err == nil {
			horizons = append(horizons, h)
		}
	}
	sort.Ints(horizons)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("PRICE FORECASTS")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Horizon", "Price", "Change", "Band"})
	for _, h := range horizons {
		fc := result.Predictions[strconv.Itoa(h)]
		t.AppendRow(table.Row{
			fmt.Sprintf("%d min", h),
			fmt.Sprintf("%.4f", fc.Price),
			fmt.Sprintf("%+.2f%%", fc.Change),
			fmt.Sprintf("±%.2f%%", fc.Confidence),
		})
	}
	t.Render()
	fmt.Println()
}

func printReasons(result *analysis.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("SIGNALS")
	t.SetStyle(table.StyleRounded)
	for _, reason := range result.Reasons {
		t.AppendRow(table.Row{reason})
	}
	t.Render()
}

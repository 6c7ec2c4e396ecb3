package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"klineo/client"
	"klineo/config"
	sqlite "klineo/db"
	"klineo/logger"
	"klineo/metrics"
	"klineo/models"
	"klineo/order"
	"klineo/symbols"
	"klineo/utils"
)

const usage = `usage: klineo [-log level] [-env file] <command> [flags]

commands:
  symbol   <pair>                      show exchange and display forms of a pair
  round    -qty Q -step S [-min -max]  round a quantity to a step size
  filters  <pair>                      fetch exchange filters for a pair
  validate -symbol P -side S ...       dry-run an order and record it
  order    -symbol P -side S ...       validate and place an order
  ping                                 test authenticated connectivity
  report   [-symbol P] [-csv file]     summarize the order log
  monitor  [-interval d] [-csv file]   log summaries until interrupted
`

func main() {
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Arg(0), flag.Args()[1:]); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, cmd string, args []string) error {
	switch cmd {
	case "symbol":
		return runSymbol(args)
	case "round":
		return runRound(args)
	case "filters":
		return runFilters(ctx, cfg, args)
	case "validate", "order":
		return runOrder(ctx, cfg, cmd == "order", args)
	case "ping":
		return runPing(ctx, cfg)
	case "report":
		return runReport(cfg, args)
	case "monitor":
		return runMonitor(ctx, cfg, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSymbol(args []string) error {
	if len(args) == 0 {
		return errors.New("symbol: pair argument required")
	}
	pair := models.NewTradingPair(args[0])
	return printJSON(map[string]string{
		"exchange": pair.Symbol,
		"display":  pair.Display(),
		"base":     pair.BaseAsset,
		"quote":    pair.QuoteAsset,
	})
}

func runRound(args []string) error {
	fs := flag.NewFlagSet("round", flag.ContinueOnError)
	qty := fs.Float64("qty", 0, "quantity")
	step := fs.Float64("step", 0, "step size")
	minQty := fs.Float64("min", -1, "min quantity (enables clamping)")
	maxQty := fs.Float64("max", -1, "max quantity (enables clamping)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *minQty >= 0 && *maxQty >= 0 {
		out, err := symbols.NormalizeQty(*qty, symbols.StepSizeConstraint{MinQty: *minQty, MaxQty: *maxQty, StepSize: *step})
		if errors.Is(err, symbols.ErrBelowMinQty) {
			logger.Warn(err)
		} else if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	fmt.Println(symbols.RoundToStep(*qty, *step))
	return nil
}

func newExchange(cfg config.Config, store *sqlite.SQLite) (*client.BinanceClient, error) {
	ccfg := client.Config{
		APIKey:      cfg.APIKey,
		APISecret:   cfg.APISecret,
		Environment: cfg.Environment,
		BaseURL:     cfg.BaseURL,
		ProxyURL:    cfg.ProxyURL(),
		HTTPTimeout: cfg.HTTPTimeout,
		FilterTTL:   cfg.FilterCacheTTL,
	}
	httpClient, err := client.NewHTTPClient(ccfg)
	if err != nil {
		return nil, err
	}
	if ccfg.ProxyURL != "" {
		logger.Infof("Routing Binance requests through proxy")
	}
	cl, err := client.NewBinanceClient(ccfg, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Binance client: %w", err)
	}
	if store != nil {
		cl.WithFilterStore(store)
	}
	return cl, nil
}

func openStore(cfg config.Config) (*sqlite.SQLite, error) {
	store, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func runFilters(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("filters: pair argument required")
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cl, err := newExchange(cfg, store)
	if err != nil {
		return err
	}
	pair := models.NewTradingPair(args[0])
	if pair.Filters, err = cl.GetSymbolFilters(ctx, pair.Symbol); err != nil {
		return err
	}
	return printJSON(pair)
}

func runOrder(ctx context.Context, cfg config.Config, place bool, args []string) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	req := models.OrderRequest{Exchange: "binance"}
	var side, orderType string
	fs.StringVar(&req.Symbol, "symbol", "", "pair, e.g. BTC/USDT or BTCUSDT")
	fs.StringVar(&side, "side", "", "BUY or SELL")
	fs.StringVar(&orderType, "type", "MARKET", "MARKET or LIMIT")
	fs.Float64Var(&req.Quantity, "qty", 0, "base asset quantity")
	fs.Float64Var(&req.QuoteOrderQty, "quote", 0, "quote asset amount")
	fs.Float64Var(&req.Price, "price", 0, "limit price")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req.Side = models.Side(side)
	req.Type = models.OrderType(orderType)

	if place && !cfg.HasCredentials() {
		return errors.New("BINANCE_API_KEY or BINANCE_API_SECRET not set")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cl, err := newExchange(cfg, store)
	if err != nil {
		return err
	}
	svc := order.NewService(cl, store)

	if !place {
		res, err := svc.Check(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(res)
	}

	res, orderID, err := svc.Place(ctx, req)
	if printErr := printJSON(struct {
		models.ValidationResult
		OrderID int64 `json:"orderId,omitempty"`
	}{res, orderID}); printErr != nil {
		return printErr
	}
	return err
}

func runPing(ctx context.Context, cfg config.Config) error {
	if !cfg.HasCredentials() {
		return errors.New("BINANCE_API_KEY or BINANCE_API_SECRET not set")
	}
	cl, err := newExchange(cfg, nil)
	if err != nil {
		return err
	}
	status := cl.TestConnection(ctx)
	if err := printJSON(status); err != nil {
		return err
	}
	if !status.OK {
		return errors.New(status.Error)
	}
	return nil
}

func runReport(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "only export checks for this pair")
	csvPath := fs.String("csv", "", "export order checks to this CSV file")
	limit := fs.Int("limit", 1000, "max rows to export")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := metrics.Summarize(store.DB)
	if err != nil {
		return err
	}
	if *csvPath != "" {
		checks, err := store.ListOrderChecks(symbols.ToExchangeSymbol(*symbol), *limit)
		if err != nil {
			return err
		}
		if err := utils.AppendOrderChecksToCSV(*csvPath, checks); err != nil {
			return err
		}
		logger.Infof("Exported %d order checks to %s", len(checks), *csvPath)
	}
	return printJSON(summary)
}

func runMonitor(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	interval := fs.Duration("interval", time.Hour, "summary interval")
	csvPath := fs.String("csv", "", "append summaries to this CSV file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return fmt.Errorf("monitor: -interval must be positive, got %s", *interval)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Infof("/// Monitoring order log every %s ///", *interval)
	if err := metrics.MonitorOrderLog(ctx, store.DB, *interval, *csvPath); err != nil {
		return err
	}
	logger.Info("Monitor stopped")
	return nil
}

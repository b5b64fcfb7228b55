package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dealhound/dealhound/config"
	"github.com/dealhound/dealhound/history"
	"github.com/dealhound/dealhound/hunt"
	"github.com/dealhound/dealhound/models"
	"github.com/dealhound/dealhound/platform"
	"github.com/dealhound/dealhound/report"
)

// HuntOptions holds flags for the hunt command.
type HuntOptions struct {
	*RootOptions

	Items        string
	CriteriaFile string
	Interactive  bool

	Rating     float64
	PriceMin   float64
	PriceMax   float64
	MaxResults int
	Location   string

	Platforms []string

	Timeout           time.Duration
	CommitAttempts    int
	AvailabilityFirst bool
	SkipCommit        bool

	Output      string
	HistoryDB   string
	MetricsAddr string
}

// NewHuntCommand creates the hunt command.
func NewHuntCommand(rootOpts *RootOptions) *cobra.Command {
	cmd, _ := newHuntCommand(rootOpts)
	return cmd
}

func newHuntCommand(rootOpts *RootOptions) (*cobra.Command, *HuntOptions) {
	opts := &HuntOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "hunt",
		Short: "Search all platforms and commit the best deal",
		Long: `Search every selected platform concurrently, pick the cheapest offer
matching the criteria, and add it to that platform's cart.

Examples:
  dealhound hunt --items "pizza,burger" --rating 4.0
  dealhound hunt --criteria criteria.yaml --output report.json
  dealhound hunt --interactive --skip-commit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHunt(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Items, "items", "", "comma-separated food items")
	cmd.Flags().StringVar(&opts.CriteriaFile, "criteria", "", "criteria file (.yaml or .json)")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "prompt for criteria")
	cmd.MarkFlagsOneRequired("items", "criteria", "interactive")
	cmd.MarkFlagsMutuallyExclusive("items", "criteria", "interactive")

	cmd.Flags().Float64Var(&opts.Rating, "rating", models.DefaultMinRating, "minimum rating")
	cmd.Flags().Float64Var(&opts.PriceMin, "price-min", 0, "minimum price filter")
	cmd.Flags().Float64Var(&opts.PriceMax, "price-max", 0, "maximum price filter")
	cmd.Flags().IntVar(&opts.MaxResults, "max-results", models.DefaultMaxResultsPerPlatform, "max results per platform")
	cmd.Flags().StringVar(&opts.Location, "location", "", "delivery location")

	cmd.Flags().StringSliceVar(&opts.Platforms, "platforms", []string{"swiggy", "zomato"}, "platforms to search")

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-platform search timeout")
	cmd.Flags().IntVar(&opts.CommitAttempts, "commit-attempts", 0, "max cart commit attempts")
	cmd.Flags().BoolVar(&opts.AvailabilityFirst, "availability-first", false, "single commit cycle, no retries")
	cmd.Flags().BoolVar(&opts.SkipCommit, "skip-commit", false, "search only, leave carts alone")

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "save the report JSON to this path")
	cmd.Flags().StringVar(&opts.HistoryDB, "history-db", "", "record the run in this sqlite database")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "prometheus listen address, e.g. :9090")

	return cmd, opts
}

func runHunt(cmd *cobra.Command, opts *HuntOptions) error {
	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}

	criteria, err := buildCriteria(cmd, opts, cfg)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(opts.Platforms, cfg)
	if err != nil {
		return err
	}

	metrics := hunt.NewMetrics()
	hunter, err := hunt.NewHunter(registry, hunt.Settings{
		SearchTimeout: cfg.SearchTimeout,
		Commit: hunt.CommitPolicy{
			Mode:          commitMode(cfg),
			MaxAttempts:   cfg.CommitAttempts,
			BackoffBase:   cfg.CommitBackoff,
			BackoffFactor: cfg.CommitBackoffFactor,
			BackoffMax:    cfg.CommitBackoffMax,
		},
		DedupeSize: cfg.DedupeSize,
		SkipCommit: cfg.SkipCommit,
		Metrics:    metrics,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "wiring hunter", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsServer := startMetricsServer(cfg.MetricsAddr, metrics)
	defer shutdownMetricsServer(metricsServer)

	runReport, runErr := hunter.Run(ctx, criteria)

	if err := report.NewRenderer(cmd.OutOrStdout()).Render(runReport); err != nil {
		return WrapExitError(ExitCommandError, "rendering report", err)
	}
	if err := persistReport(cfg.OutputFile, runReport); err != nil {
		return err
	}
	if err := recordHistory(ctx, cfg.HistoryPath, runReport); err != nil {
		return err
	}

	if runErr != nil && errors.Is(runErr, context.Canceled) {
		return NewExitError(ExitInterrupted, "interrupted")
	}
	if runReport.TotalOptions == 0 {
		return NewExitError(ExitNoOffers, "no matching offers found")
	}
	return nil
}

// buildConfig layers flag values over environment defaults over the built-in
// defaults. A flag wins only when it was set on the command line.
func buildConfig(cmd *cobra.Command, opts *HuntOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if value, ok, err := config.EnvDuration("DEALHOUND_SEARCH_TIMEOUT"); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid environment", err)
	} else if ok {
		cfg.SearchTimeout = value
	}
	if value, ok, err := config.EnvDuration("DEALHOUND_REQUEST_TIMEOUT"); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid environment", err)
	} else if ok {
		cfg.RequestTimeout = value
	}
	if value, ok, err := config.EnvInt("DEALHOUND_COMMIT_ATTEMPTS"); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid environment", err)
	} else if ok {
		cfg.CommitAttempts = value
	}
	if value, ok := config.EnvString("DEALHOUND_USER_AGENT"); ok {
		cfg.UserAgent = value
	}
	if value, ok := config.EnvString("DEALHOUND_OUTPUT"); ok {
		cfg.OutputFile = value
	}
	if value, ok := config.EnvString("DEALHOUND_HISTORY_DB"); ok {
		cfg.HistoryPath = value
	}
	if value, ok := config.EnvString("DEALHOUND_METRICS_ADDR"); ok {
		cfg.MetricsAddr = value
	}

	if cmd.Flags().Changed("timeout") {
		cfg.SearchTimeout = opts.Timeout
	}
	if cmd.Flags().Changed("commit-attempts") {
		cfg.CommitAttempts = opts.CommitAttempts
	}
	if cmd.Flags().Changed("output") {
		cfg.OutputFile = opts.Output
	}
	if cmd.Flags().Changed("history-db") {
		cfg.HistoryPath = opts.HistoryDB
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = opts.MetricsAddr
	}
	cfg.AvailabilityFirst = opts.AvailabilityFirst
	cfg.SkipCommit = opts.SkipCommit
	cfg.Verbose = opts.Verbose

	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

func buildCriteria(cmd *cobra.Command, opts *HuntOptions, cfg *config.Config) (models.Criteria, error) {
	switch {
	case opts.CriteriaFile != "":
		criteria, err := config.LoadCriteria(opts.CriteriaFile)
		if err != nil {
			return models.Criteria{}, WrapExitError(ExitCommandError, "loading criteria", err)
		}
		return criteria, nil

	case opts.Interactive:
		defaults := models.Criteria{
			MinRating:             cfg.MinRating,
			MaxResultsPerPlatform: cfg.MaxResultsPerPlatform,
		}
		criteria, err := promptCriteria(cmd.InOrStdin(), cmd.OutOrStdout(), defaults)
		if err != nil {
			return models.Criteria{}, WrapExitError(ExitCommandError, "reading criteria", err)
		}
		return criteria, nil

	default:
		raw := models.Criteria{
			Items:                 strings.Split(opts.Items, ","),
			MinRating:             opts.Rating,
			MaxResultsPerPlatform: opts.MaxResults,
			Location:              opts.Location,
		}
		if cmd.Flags().Changed("price-min") {
			raw.PriceMin = models.Float(opts.PriceMin)
		}
		if cmd.Flags().Changed("price-max") {
			raw.PriceMax = models.Float(opts.PriceMax)
		}
		criteria, err := models.NewCriteria(raw)
		if err != nil {
			return models.Criteria{}, WrapExitError(ExitCommandError, "invalid criteria", err)
		}
		return criteria, nil
	}
}

func buildRegistry(names []string, cfg *config.Config) (*platform.Registry, error) {
	popts := platform.Options{
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
		CacheTTL:  cfg.CacheTTL,
		CacheSize: cfg.CacheSize,
	}

	var adapters []platform.Adapter
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "swiggy":
			a, err := platform.NewSwiggy(popts)
			if err != nil {
				return nil, WrapExitError(ExitCommandError, "configuring swiggy", err)
			}
			adapters = append(adapters, a)
		case "zomato":
			a, err := platform.NewZomato(popts)
			if err != nil {
				return nil, WrapExitError(ExitCommandError, "configuring zomato", err)
			}
			adapters = append(adapters, a)
		default:
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown platform %q, supported: swiggy, zomato", name))
		}
	}

	registry, err := platform.NewRegistry(adapters...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "building platform registry", err)
	}
	return registry, nil
}

func commitMode(cfg *config.Config) hunt.Mode {
	if cfg.AvailabilityFirst {
		return hunt.AvailabilityFirst
	}
	return hunt.ConsistencyFirst
}

func persistReport(path string, r *models.RunReport) error {
	if path == "" {
		return nil
	}
	writer, err := report.NewJSONWriter(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "creating report file", err)
	}
	defer writer.Close()

	if err := writer.Write(r); err != nil {
		return WrapExitError(ExitCommandError, "writing report", err)
	}
	if err := writer.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "validating report file", err)
	}
	return nil
}

func recordHistory(ctx context.Context, path string, r *models.RunReport) error {
	if path == "" {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening history", err)
	}
	defer store.Close()

	if err := store.Save(ctx, r); err != nil {
		return WrapExitError(ExitCommandError, "recording history", err)
	}
	return nil
}

func startMetricsServer(addr string, metrics *hunt.Metrics) *http.Server {
	if addr == "" {
		return nil
	}
	server := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func shutdownMetricsServer(server *http.Server) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("error", err))
	}
}

package gather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"quantbt/internal/domain"
	"quantbt/internal/store"
	"quantbt/internal/util"
)

// Compile-time interface check.
var _ Gatherer = (*AlpacaGatherer)(nil)

// AlpacaGatherer fetches daily OHLCV bars for a set of symbols from the
// Alpaca market-data API and writes them to a BarStore. Requests are rate
// limited and retried with backoff.
type AlpacaGatherer struct {
	client  *marketdata.Client
	store   store.BarStore
	symbols []string
	start   time.Time
	end     time.Time
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewAlpacaGatherer creates an AlpacaGatherer with the given credentials and
// target store. rateLimitPerMin bounds API calls per minute.
func NewAlpacaGatherer(apiKey, apiSecret, dataURL string, s store.BarStore, symbols []string, start, end time.Time, rateLimitPerMin int) *AlpacaGatherer {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	return &AlpacaGatherer{
		client:  marketdata.NewClient(opts),
		store:   s,
		symbols: symbols,
		start:   start,
		end:     end,
		limiter: util.NewRateLimiter(rateLimitPerMin),
		log:     slog.Default().With("gatherer", "alpaca-daily"),
	}
}

// Name returns the gatherer identifier.
func (g *AlpacaGatherer) Name() string { return "alpaca-daily" }

// Run fetches daily bars for every configured symbol and writes them to the
// store. A symbol with no data is skipped, not an error.
func (g *AlpacaGatherer) Run(ctx context.Context) error {
	for _, symbol := range g.symbols {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		var raw []marketdata.Bar
		err := util.Retry(ctx, 3, time.Second, func() error {
			var err error
			raw, err = g.client.GetBars(symbol, marketdata.GetBarsRequest{
				TimeFrame: marketdata.OneDay,
				Start:     g.start,
				End:       g.end,
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("fetching bars for %s: %w", symbol, err)
		}
		if len(raw) == 0 {
			g.log.Warn("no bars returned", "symbol", symbol)
			continue
		}

		bars := make([]domain.Bar, len(raw))
		for i, b := range raw {
			bars[i] = domain.Bar{
				Symbol:    symbol,
				Timestamp: b.Timestamp.UTC(),
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    float64(b.Volume),
			}
		}
		if err := g.store.WriteBars(ctx, bars); err != nil {
			return fmt.Errorf("storing bars for %s: %w", symbol, err)
		}
		g.log.Info("gathered daily bars", "symbol", symbol, "bars", len(bars))
	}
	return nil
}

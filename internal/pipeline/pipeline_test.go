package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rickgao/kalshi-analysis/internal/api"
	"github.com/rickgao/kalshi-analysis/internal/discovery"
	"github.com/rickgao/kalshi-analysis/internal/model"
	"github.com/rickgao/kalshi-analysis/internal/resolve"
	"github.com/rickgao/kalshi-analysis/internal/window"
)

// fakeSink records what was flushed and how many times.
type fakeSink struct {
	mu      sync.Mutex
	flushes int
	records []model.OutputRecord
}

func (s *fakeSink) Write(ctx context.Context, records []model.OutputRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	s.records = append([]model.OutputRecord(nil), records...)
	return nil
}

// fakeAPI serves /markets, /markets/trades and /markets/{ticker} from fixed
// fixtures, with optional per-ticker failure injection and request hooks.
type fakeAPI struct {
	markets     []api.APIMarket
	trades      map[string][]api.APITrade
	failResolve map[string]bool

	mu          sync.Mutex
	onResolve   func(ticker string)
	resolveSeen []string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/markets":
			json.NewEncoder(w).Encode(api.MarketsResponse{Markets: f.markets})

		case r.URL.Path == "/markets/trades":
			ticker := r.URL.Query().Get("ticker")
			json.NewEncoder(w).Encode(api.TradesResponse{Trades: f.trades[ticker]})

		case strings.HasPrefix(r.URL.Path, "/markets/"):
			ticker := strings.TrimPrefix(r.URL.Path, "/markets/")

			f.mu.Lock()
			f.resolveSeen = append(f.resolveSeen, ticker)
			hook := f.onResolve
			f.mu.Unlock()
			if hook != nil {
				hook(ticker)
			}

			if f.failResolve[ticker] {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			for _, m := range f.markets {
				if m.Ticker == ticker {
					json.NewEncoder(w).Encode(api.SingleMarketResponse{Market: m})
					return
				}
			}
			http.NotFound(w, r)

		default:
			t.Errorf("unexpected request path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	})
}

func newTestPipeline(serverURL string) *Pipeline {
	client := api.NewClient(serverURL, "")
	return New(
		Config{TopStrikes: 5, MarketDelay: time.Millisecond},
		discovery.New(discovery.Config{PageDelay: time.Millisecond}, client, nil),
		resolve.New(client, nil),
		window.New(window.Config{Delay: time.Millisecond}, client, nil),
		nil,
	)
}

func settledMarket(ticker string, volume int64) api.APIMarket {
	return api.APIMarket{
		Ticker:    ticker,
		Status:    "settled",
		Result:    "yes",
		LastPrice: 90,
		Volume:    volume,
		CloseTime: "2025-11-14T17:00:00Z",
	}
}

func TestRun_SelectsTopStrikesInRankOrder(t *testing.T) {
	f := &fakeAPI{
		markets: []api.APIMarket{
			settledMarket("KXBTCD-25NOV1417-T100000", 10),
			settledMarket("KXBTCD-25NOV1417-T101000", 50),
			settledMarket("KXBTCD-25NOV1417-T102000", 20),
		},
	}
	server := httptest.NewServer(f.handler(t))
	defer server.Close()

	p := newTestPipeline(server.URL)
	p.cfg.TopStrikes = 2

	sink := &fakeSink{}
	n, err := p.Run(context.Background(), "KXBTCD", time.Time{}, time.Time{}, sink)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if n != 2 {
		t.Fatalf("wrote %d records, want 2", n)
	}
	if sink.records[0].Volume != 50 || sink.records[1].Volume != 20 {
		t.Errorf("volumes = [%d, %d], want [50, 20]",
			sink.records[0].Volume, sink.records[1].Volume)
	}
}

func TestRun_ResolverFailureSkipsOnlyThatMarket(t *testing.T) {
	var markets []api.APIMarket
	tickers := []string{
		"KXBTCD-25NOV1417-T100000", "KXBTCD-25NOV1417-T101000",
		"KXBTCD-25NOV1418-T100000", "KXBTCD-25NOV1418-T101000",
		"KXBTCD-25NOV1419-T100000", "KXBTCD-25NOV1419-T101000",
		"KXBTCD-25NOV1420-T100000", "KXBTCD-25NOV1420-T101000",
		"KXBTCD-25NOV1421-T100000", "KXBTCD-25NOV1421-T101000",
	}
	for i, ticker := range tickers {
		markets = append(markets, settledMarket(ticker, int64(100-i)))
	}

	f := &fakeAPI{
		markets:     markets,
		failResolve: map[string]bool{"KXBTCD-25NOV1418-T100000": true},
	}
	server := httptest.NewServer(f.handler(t))
	defer server.Close()

	sink := &fakeSink{}
	n, err := newTestPipeline(server.URL).Run(context.Background(), "KXBTCD", time.Time{}, time.Time{}, sink)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if n != 9 {
		t.Fatalf("wrote %d records, want 9 (one resolver failure among 10)", n)
	}
	for _, rec := range sink.records {
		if rec.Ticker == "KXBTCD-25NOV1418-T100000" {
			t.Error("failed market must not appear in output")
		}
	}
}

func TestRun_EmptyWindowStillEmitsRecord(t *testing.T) {
	f := &fakeAPI{
		markets: []api.APIMarket{settledMarket("KXBTCD-25NOV1417-T100000", 10)},
		// No trades fixture: the window is empty.
	}
	server := httptest.NewServer(f.handler(t))
	defer server.Close()

	sink := &fakeSink{}
	n, err := newTestPipeline(server.URL).Run(context.Background(), "KXBTCD", time.Time{}, time.Time{}, sink)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("wrote %d records, want 1", n)
	}

	rec := sink.records[0]
	if rec.SnapshotsInWindow != 0 {
		t.Errorf("SnapshotsInWindow = %d, want 0", rec.SnapshotsInWindow)
	}
	for i, p := range []*float64{rec.Price15Min, rec.Price10Min, rec.Price5Min, rec.Price1Min} {
		if p != nil {
			t.Errorf("snapshot %d = %v, want absent", i, *p)
		}
	}
	if rec.Result != "yes" || rec.ResultBinary != 1 {
		t.Errorf("result = %q/%d, want yes/1", rec.Result, rec.ResultBinary)
	}
	if rec.Volume != 10 {
		t.Errorf("Volume = %d, want 10", rec.Volume)
	}
}

func TestRun_SnapshotPricesFlowThrough(t *testing.T) {
	ticker := "KXBTCD-25NOV1417-T100000"
	f := &fakeAPI{
		markets: []api.APIMarket{settledMarket(ticker, 10)},
		trades: map[string][]api.APITrade{
			ticker: {
				{TradeID: "t1", CreatedTime: "2025-11-14T16:44:00Z", YesPrice: 62},
				{TradeID: "t2", CreatedTime: "2025-11-14T16:46:30Z", YesPrice: 65},
			},
		},
	}
	server := httptest.NewServer(f.handler(t))
	defer server.Close()

	sink := &fakeSink{}
	if _, err := newTestPipeline(server.URL).Run(context.Background(), "KXBTCD", time.Time{}, time.Time{}, sink); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rec := sink.records[0]
	if rec.Price15Min == nil || *rec.Price15Min != 0.62 {
		t.Errorf("Price15Min = %v, want 0.62", rec.Price15Min)
	}
	if rec.SnapshotsInWindow != 2 {
		t.Errorf("SnapshotsInWindow = %d, want 2", rec.SnapshotsInWindow)
	}
}

func TestRun_CancellationFlushesCompletedRecords(t *testing.T) {
	f := &fakeAPI{
		markets: []api.APIMarket{
			settledMarket("KXBTCD-25NOV1417-T100000", 50),
			settledMarket("KXBTCD-25NOV1417-T101000", 40),
			settledMarket("KXBTCD-25NOV1417-T102000", 30),
			settledMarket("KXBTCD-25NOV1417-T103000", 20),
		},
		// The third market's resolve fails regardless of the cancellation
		// race, so exactly two records can ever complete.
		failResolve: map[string]bool{"KXBTCD-25NOV1417-T102000": true},
	}
	server := httptest.NewServer(f.handler(t))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel while the third market is being resolved. The first two records
	// are already complete; the fourth market must never be touched.
	f.onResolve = func(ticker string) {
		if ticker == "KXBTCD-25NOV1417-T102000" {
			cancel()
		}
	}

	sink := &fakeSink{}
	n, err := newTestPipeline(server.URL).Run(ctx, "KXBTCD", time.Time{}, time.Time{}, sink)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if sink.flushes != 1 {
		t.Fatalf("flushes = %d, want exactly 1", sink.flushes)
	}
	if n != 2 {
		t.Fatalf("wrote %d records, want the 2 completed before cancellation", n)
	}
	if sink.records[0].Ticker != "KXBTCD-25NOV1417-T100000" ||
		sink.records[1].Ticker != "KXBTCD-25NOV1417-T101000" {
		t.Errorf("flushed tickers = [%s, %s], want the first two in rank order",
			sink.records[0].Ticker, sink.records[1].Ticker)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, seen := range f.resolveSeen {
		if seen == "KXBTCD-25NOV1417-T103000" {
			t.Error("market after the cancellation point must never be requested")
		}
	}
}

func TestRun_ZeroRecordsStillFlushes(t *testing.T) {
	f := &fakeAPI{} // discovery finds nothing
	server := httptest.NewServer(f.handler(t))
	defer server.Close()

	sink := &fakeSink{}
	n, err := newTestPipeline(server.URL).Run(context.Background(), "KXBTCD", time.Time{}, time.Time{}, sink)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 0 {
		t.Errorf("wrote %d records, want 0", n)
	}
	if sink.flushes != 1 {
		t.Errorf("flushes = %d, want 1 (empty flush is still a flush)", sink.flushes)
	}
}

func TestRun_EventsProcessedInLexicographicOrder(t *testing.T) {
	f := &fakeAPI{
		markets: []api.APIMarket{
			settledMarket("KXBTCD-25NOV1418-T100000", 10),
			settledMarket("KXBTCD-25NOV1417-T100000", 10),
		},
	}
	server := httptest.NewServer(f.handler(t))
	defer server.Close()

	sink := &fakeSink{}
	if _, err := newTestPipeline(server.URL).Run(context.Background(), "KXBTCD", time.Time{}, time.Time{}, sink); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if sink.records[0].EventTicker != "KXBTCD-25NOV1417" ||
		sink.records[1].EventTicker != "KXBTCD-25NOV1418" {
		t.Errorf("event order = [%s, %s], want lexicographic",
			sink.records[0].EventTicker, sink.records[1].EventTicker)
	}
}

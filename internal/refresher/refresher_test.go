package refresher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chrisdamba/foodrollup/internal/models"
	"github.com/chrisdamba/foodrollup/internal/rollup"
)

var testNow = time.Date(2024, time.May, 15, 14, 30, 0, 0, time.UTC)

type fakeSource struct {
	orders  []models.Order
	err     error
	calls   int32
	limit   int
	started chan struct{}
	release chan struct{}
}

func (f *fakeSource) LoadOrders(ctx context.Context, limit int) ([]models.Order, error) {
	atomic.AddInt32(&f.calls, 1)
	f.limit = limit
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.orders, f.err
}

type recordingDestination struct {
	mu       sync.Mutex
	topics   []string
	messages [][]byte
	notify   chan struct{}
}

func (r *recordingDestination) WriteMessage(topic string, msg []byte) error {
	r.mu.Lock()
	r.topics = append(r.topics, topic)
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
	if r.notify != nil {
		select {
		case r.notify <- struct{}{}:
		default:
		}
	}
	return nil
}

func (r *recordingDestination) Close() error { return nil }

func (r *recordingDestination) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func sampleOrders() []models.Order {
	created := "2024-05-14T12:00:00Z"
	return []models.Order{
		{ID: "1", CreatedAt: created, Status: models.OrderStatusDelivered, Total: 10, RestaurantID: "r1", CustomerID: "c1"},
		{ID: "2", CreatedAt: created, Status: models.OrderStatusDelivered, Total: 20, RestaurantID: "r2", CustomerID: "c2"},
		{ID: "3", CreatedAt: created, Status: models.OrderStatusCancelled, Total: 5, RestaurantID: "r1", CustomerID: "c2"},
	}
}

func testConfig() *models.Config {
	return &models.Config{
		Now:       testNow,
		Period:    "week",
		Alignment: "rolling",
		Timezone:  "UTC",
		TopN:      3,
		Scope:     models.ScopeConfig{Kind: "platform"},
		ScopedReports: []models.ScopeConfig{
			{Kind: "restaurant", ID: "r1"},
			{Kind: "customer", ID: "c2"},
		},
		Source: models.SourceConfig{Limit: 100},
		Output: models.OutputConfig{Topic: "rollup_reports"},
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Europe/London"
	cfg.DurationFallback = 30 * time.Minute

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Period != rollup.PeriodWeek || opts.Alignment != rollup.AlignRolling {
		t.Fatalf("expected week/rolling, got %s/%s", opts.Period, opts.Alignment)
	}
	if opts.Location.String() != "Europe/London" {
		t.Fatalf("expected Europe/London, got %s", opts.Location)
	}
	if opts.TopN != 3 || opts.DurationFallback != 30*time.Minute || !opts.Now.Equal(testNow) {
		t.Fatalf("expected config values to carry over, got %+v", opts)
	}

	cases := []struct {
		name   string
		mutate func(*models.Config)
	}{
		{name: "bad period", mutate: func(c *models.Config) { c.Period = "fortnight" }},
		{name: "bad alignment", mutate: func(c *models.Config) { c.Alignment = "lunar" }},
		{name: "bad timezone", mutate: func(c *models.Config) { c.Timezone = "Mars/Olympus" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(cfg)
			if _, err := OptionsFromConfig(cfg); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	source := &fakeSource{orders: sampleOrders()}
	dest := &recordingDestination{}
	r := New(source, dest, testConfig(), nil)

	reports, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 3 || dest.count() != 3 {
		t.Fatalf("expected 3 reports published, got %d built and %d published", len(reports), dest.count())
	}
	if source.limit != 100 {
		t.Fatalf("expected the configured limit to reach the source, got %d", source.limit)
	}

	want := []string{"platform", "restaurant:r1", "customer:c2"}
	for i, report := range reports {
		if report.Scope.String() != want[i] {
			t.Fatalf("report %d: expected scope %s, got %s", i, want[i], report.Scope.String())
		}
		if !report.GeneratedAt.Equal(testNow) {
			t.Fatalf("expected pinned clock, got %v", report.GeneratedAt)
		}
	}
	if reports[0].Selected.Orders != 3 || reports[1].Selected.Orders != 2 || reports[2].Selected.Orders != 2 {
		t.Fatalf("expected 3/2/2 orders, got %d/%d/%d", reports[0].Selected.Orders, reports[1].Selected.Orders, reports[2].Selected.Orders)
	}
	for _, topic := range dest.topics {
		if topic != "rollup_reports" {
			t.Fatalf("expected rollup_reports topic, got %s", topic)
		}
	}
}

func TestRefreshUsesWallClockWhenUnpinned(t *testing.T) {
	cfg := testConfig()
	cfg.Now = time.Time{}
	r := New(&fakeSource{orders: sampleOrders()}, &recordingDestination{}, cfg, nil)
	r.now = func() time.Time { return testNow.Add(time.Hour) }

	reports, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reports[0].GeneratedAt.Equal(testNow.Add(time.Hour)) {
		t.Fatalf("expected injected clock, got %v", reports[0].GeneratedAt)
	}
}

func TestRefreshErrors(t *testing.T) {
	boom := errors.New("source down")
	dest := &recordingDestination{}
	r := New(&fakeSource{err: boom}, dest, testConfig(), nil)
	if _, err := r.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}

	cfg := testConfig()
	cfg.ScopedReports = []models.ScopeConfig{{Kind: "galaxy", ID: "x"}}
	r = New(&fakeSource{orders: sampleOrders()}, dest, cfg, nil)
	if _, err := r.Refresh(context.Background()); !errors.Is(err, rollup.ErrInvalidScope) {
		t.Fatalf("expected ErrInvalidScope, got %v", err)
	}
	if dest.count() != 0 {
		t.Fatalf("expected nothing published on failure, got %d", dest.count())
	}
}

func TestRefreshSharesInFlightCall(t *testing.T) {
	source := &fakeSource{
		orders:  sampleOrders(),
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	r := New(source, &recordingDestination{}, testConfig(), nil)

	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, results[0] = r.Refresh(context.Background())
	}()
	<-source.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, results[1] = r.Refresh(context.Background())
	}()
	time.Sleep(100 * time.Millisecond)
	close(source.release)
	wg.Wait()

	for i, err := range results {
		if err != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, err)
		}
	}
	if calls := atomic.LoadInt32(&source.calls); calls != 1 {
		t.Fatalf("expected one load for concurrent refreshes, got %d", calls)
	}
}

func TestRun(t *testing.T) {
	dest := &recordingDestination{notify: make(chan struct{}, 1)}
	r := New(&fakeSource{orders: sampleOrders()}, dest, testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, time.Hour) }()

	select {
	case <-dest.notify:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected an immediate refresh")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected Run to return after cancel")
	}

	if err := r.Run(context.Background(), 0); err == nil {
		t.Fatalf("expected an error for a zero interval")
	}
}

package backfill

import (
	"context"
	"errors"
	"testing"
	"time"

	"options-collector/internal/models"
)

type fakeProvider struct {
	byDate    map[string][]models.HistoricalOption
	failDates map[string]bool
	requested []time.Time
}

func (f *fakeProvider) GetOptionsForDate(ctx context.Context, underlying string, date time.Time) ([]models.HistoricalOption, error) {
	f.requested = append(f.requested, date)
	key := date.Format("2006-01-02")
	if f.failDates[key] {
		return nil, errors.New("provider outage")
	}
	return f.byDate[key], nil
}

type fakeStore struct {
	analytics []*models.OptionRecord
	greeks    []*models.GreeksRecord
	ivPoints  []*models.IVPoint
	insertErr error
}

func (f *fakeStore) SaveAnalytics(ctx context.Context, rec *models.OptionRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	rec.ID = uint(len(f.analytics) + 1)
	f.analytics = append(f.analytics, rec)
	return nil
}

func (f *fakeStore) SaveGreeks(ctx context.Context, rec *models.GreeksRecord) error {
	f.greeks = append(f.greeks, rec)
	return nil
}

func (f *fakeStore) SaveIVPoint(ctx context.Context, p *models.IVPoint) error {
	f.ivPoints = append(f.ivPoints, p)
	return nil
}

func (f *fakeStore) AnalyticsExistsOnDay(ctx context.Context, symbol string, strike float64, expiration time.Time, optionType string, day time.Time) (bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	for _, rec := range f.analytics {
		if rec.Symbol == symbol && rec.StrikePrice == strike && rec.ExpirationDate.Equal(expiration) &&
			rec.OptionType == optionType && !rec.CreatedAt.Before(dayStart) && rec.CreatedAt.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func fptr(v float64) *float64 { return &v }

func histOption(strike float64, ts *time.Time) models.HistoricalOption {
	return models.HistoricalOption{
		Contract: models.OptionContract{
			Symbol:           "SPY240621C00450000",
			UnderlyingSymbol: "SPY",
			OptionType:       models.Call,
			StrikePrice:      strike,
			ExpirationDate:   time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
		},
		LastPrice:       fptr(12.5),
		UnderlyingPrice: fptr(455),
		Timestamp:       ts,
	}
}

func newTestBackfill(provider *fakeProvider, store *fakeStore) *Backfill {
	b := New(provider, store, "SPY", 0.05)
	b.pause = 0
	b.sleep = func(time.Duration) {}
	return b
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestBackfillStoresAndIsIdempotent(t *testing.T) {
	provider := &fakeProvider{byDate: map[string][]models.HistoricalOption{
		"2024-03-04": {histOption(450, nil), histOption(460, nil)},
		"2024-03-05": {histOption(450, nil)},
	}}
	store := &fakeStore{}
	b := newTestBackfill(provider, store)

	total, err := b.Run(context.Background(), day("2024-03-04"), day("2024-03-06"), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}

	// A second identical run finds every record in the dedup window and
	// stores nothing new.
	total, err = b.Run(context.Background(), day("2024-03-04"), day("2024-03-06"), 1)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if total != 0 {
		t.Errorf("second run stored %d records, want 0", total)
	}
	if len(store.analytics) != 3 {
		t.Errorf("analytics rows = %d, want 3", len(store.analytics))
	}
}

func TestBackfillEmptyDateSkips(t *testing.T) {
	provider := &fakeProvider{}
	b := newTestBackfill(provider, &fakeStore{})

	total, err := b.Run(context.Background(), day("2024-03-04"), day("2024-03-04"), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestBackfillFailedDateContinues(t *testing.T) {
	provider := &fakeProvider{
		byDate:    map[string][]models.HistoricalOption{"2024-03-05": {histOption(450, nil)}},
		failDates: map[string]bool{"2024-03-04": true},
	}
	b := newTestBackfill(provider, &fakeStore{})

	total, err := b.Run(context.Background(), day("2024-03-04"), day("2024-03-05"), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1 (failed date skipped, next processed)", total)
	}
	if len(provider.requested) != 2 {
		t.Errorf("dates requested = %d, want 2", len(provider.requested))
	}
}

func TestBackfillClampsToAvailabilityFloor(t *testing.T) {
	provider := &fakeProvider{}
	b := newTestBackfill(provider, &fakeStore{})

	if _, err := b.Run(context.Background(), day("2024-01-15"), day("2024-02-02"), 1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(provider.requested) == 0 {
		t.Fatal("no dates requested")
	}
	if provider.requested[0].Before(EarliestData) {
		t.Errorf("first requested date %v precedes the availability floor", provider.requested[0])
	}
}

func TestBackfillObservationTimestamp(t *testing.T) {
	barTime := time.Date(2024, 3, 4, 21, 0, 0, 0, time.UTC)
	provider := &fakeProvider{byDate: map[string][]models.HistoricalOption{
		"2024-03-04": {histOption(450, &barTime)},
		"2024-03-05": {histOption(460, nil)},
	}}
	store := &fakeStore{}
	b := newTestBackfill(provider, store)

	if _, err := b.Run(context.Background(), day("2024-03-04"), day("2024-03-05"), 1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.analytics) != 2 {
		t.Fatalf("analytics rows = %d, want 2", len(store.analytics))
	}
	if !store.analytics[0].CreatedAt.Equal(barTime) {
		t.Errorf("created_at = %v, want bar timestamp %v", store.analytics[0].CreatedAt, barTime)
	}
	if !store.analytics[1].CreatedAt.Equal(day("2024-03-05")) {
		t.Errorf("created_at = %v, want target date", store.analytics[1].CreatedAt)
	}
}

func TestBackfillComputesGreeksFromLastPrice(t *testing.T) {
	provider := &fakeProvider{byDate: map[string][]models.HistoricalOption{
		"2024-03-04": {histOption(450, nil)},
	}}
	store := &fakeStore{}
	b := newTestBackfill(provider, store)

	if _, err := b.Run(context.Background(), day("2024-03-04"), day("2024-03-04"), 1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.greeks) != 1 {
		t.Errorf("greeks rows = %d, want 1", len(store.greeks))
	}
}

func TestBackfillRateLimitsBetweenDates(t *testing.T) {
	provider := &fakeProvider{failDates: map[string]bool{"2024-03-05": true}}
	b := New(provider, &fakeStore{}, "SPY", 0.05)
	b.pause = time.Millisecond

	sleeps := 0
	b.sleep = func(time.Duration) { sleeps++ }

	if _, err := b.Run(context.Background(), day("2024-03-04"), day("2024-03-06"), 1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sleeps != 3 {
		t.Errorf("sleeps = %d, want one per date whatever the outcome", sleeps)
	}
}

func TestBackfillStepsByConfiguredDays(t *testing.T) {
	provider := &fakeProvider{}
	b := newTestBackfill(provider, &fakeStore{})

	if _, err := b.Run(context.Background(), day("2024-03-04"), day("2024-03-18"), 7); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(provider.requested) != 3 {
		t.Errorf("dates requested = %d, want 3 (weekly step)", len(provider.requested))
	}
}

func TestBackfillStopsAtCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newTestBackfill(&fakeProvider{}, &fakeStore{})
	if _, err := b.Run(ctx, day("2024-03-04"), day("2024-03-06"), 1); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

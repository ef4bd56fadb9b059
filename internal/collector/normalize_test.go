package collector

import (
	"math"
	"testing"
	"time"

	"options-collector/internal/models"
)

func fptr(v float64) *float64 { return &v }

func testContract() models.OptionContract {
	return models.OptionContract{
		Symbol:           "SPY240621C00450000",
		UnderlyingSymbol: "SPY",
		OptionType:       models.Call,
		StrikePrice:      450,
		ExpirationDate:   time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
	}
}

func TestNormalizeTimeToMaturity(t *testing.T) {
	asOf := time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC) // 92 days to expiry

	rec := Normalize(testContract(), models.QuoteSnapshot{}, nil, asOf)

	if rec.TimeToMaturity == nil {
		t.Fatal("time to maturity not set")
	}
	want := 92.0 / 365.0
	if math.Abs(*rec.TimeToMaturity-want) > 1e-9 {
		t.Errorf("ttm = %v, want %v", *rec.TimeToMaturity, want)
	}
	if rec.CreatedAt != asOf {
		t.Errorf("created_at = %v, want %v", rec.CreatedAt, asOf)
	}
	if rec.Symbol != "SPY" || rec.OptionType != models.Call || rec.StrikePrice != 450 {
		t.Errorf("contract fields not carried over: %+v", rec)
	}
}

func TestRepresentativePrice(t *testing.T) {
	cases := []struct {
		name  string
		quote models.QuoteSnapshot
		want  *float64
	}{
		{"mid of bid and ask", models.QuoteSnapshot{BidPrice: fptr(1.0), AskPrice: fptr(2.0), LastPrice: fptr(9.9)}, fptr(1.5)},
		{"last when one side missing", models.QuoteSnapshot{BidPrice: fptr(1.0), LastPrice: fptr(1.2)}, fptr(1.2)},
		{"last when unquoted", models.QuoteSnapshot{LastPrice: fptr(3.4)}, fptr(3.4)},
		{"absent when nothing quoted", models.QuoteSnapshot{}, nil},
		{"bid alone is never used", models.QuoteSnapshot{BidPrice: fptr(1.0)}, nil},
	}

	asOf := time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := Normalize(testContract(), tc.quote, nil, asOf)
			got := RepresentativePrice(rec)
			switch {
			case tc.want == nil && got != nil:
				t.Errorf("got %v, want absent", *got)
			case tc.want != nil && got == nil:
				t.Errorf("got absent, want %v", *tc.want)
			case tc.want != nil && *got != *tc.want:
				t.Errorf("got %v, want %v", *got, *tc.want)
			}
		})
	}
}

func TestNormalizeCarriesUnderlyingPrice(t *testing.T) {
	asOf := time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)
	rec := Normalize(testContract(), models.QuoteSnapshot{}, fptr(451.25), asOf)
	if rec.UnderlyingPrice == nil || *rec.UnderlyingPrice != 451.25 {
		t.Errorf("underlying price = %v, want 451.25", rec.UnderlyingPrice)
	}
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ficcboard/backend/internal/models"
	"github.com/ficcboard/backend/internal/repositories"
)

// Fixed display grids. A tenor with no observation for the date is skipped;
// the grids cap what can appear, they never invent rows.
var (
	usTreasuryOrder = []string{"US 2Y", "US 5Y", "US 10Y", "US 30Y"}
	swapTenorOrder  = []string{"1Y", "2Y", "3Y", "5Y", "10Y"}
	creditTenors    = []string{"3M", "6M", "1Y", "2Y", "3Y", "5Y", "10Y", "20Y"}

	// Cash instrument paired against each IRS tenor for the bond-swap spread.
	spreadPairs = []struct {
		Name    string
		CashKey string
		IRSKey  string
	}{
		{"MSB1Y-IRS1Y", "CD 91D", "1Y"},
		{"MSB2Y-IRS2Y", "MSB 2Y", "2Y"},
		{"KTB3Y-IRS3Y", "KTB 3Y", "3Y"},
		{"KTB5Y-IRS5Y", "KTB 5Y", "5Y"},
		{"KTB10Y-IRS10Y", "KTB 10Y", "10Y"},
	}

	creditSectorOrder = []string{
		"KTB",
		"NHB",
		"Agency AAA",
		"Agency AA+",
		"Bank AAA",
		"Bank AA+",
		"Card AA+",
		"Card AA0",
		"Corp AAA",
		"Corp AA+",
		"Corp AA0",
		"Corp AA-",
	}
)

type marketService struct {
	repo repositories.MarketRepository
}

// NewMarketService creates a new market reference service
func NewMarketService(repo repositories.MarketRepository) MarketService {
	return &marketService{repo: repo}
}

func (s *marketService) GetDailyData(ctx context.Context, date models.ReportingDate) (*models.MarketDailyData, error) {
	if date.IsZero() {
		latest, err := s.repo.LatestMarketDate(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve latest market date: %w", err)
		}
		if latest.IsZero() {
			return nil, nil
		}
		date = latest
	}

	var (
		macro    []*models.MacroIndexRow
		domestic []*models.DomesticRateRow
		curve    []*models.YieldCurveRow
		futures  []*models.KTBFuturesRow
		lending  []*models.BondLendingRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		macro, err = s.repo.GetMacroIndices(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		domestic, err = s.repo.GetDomesticRates(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		curve, err = s.repo.GetYieldCurve(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		futures, err = s.repo.GetKTBFutures(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		lending, err = s.repo.GetBondLending(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load market data: %w", err)
	}

	irsRows := ratesByType(domestic, "IRS")
	crsRows := ratesByType(domestic, "CRS")
	cashRows := ratesByType(domestic, "CASH")

	data := &models.MarketDailyData{
		Date:          date.Display(),
		DayOfWeek:     dayOfWeek(date),
		Stocks:        reshapeStocks(macro),
		USTreasury:    reshapeUSTreasury(macro),
		IRS:           reshapeSwapRates(irsRows),
		CRS:           reshapeSwapRates(crsRows),
		Bonds:         reshapeBonds(cashRows),
		Spreads:       reshapeSpreads(cashRows, irsRows),
		CreditSpreads: reshapeCreditCurves(curve),
		KTBFutures:    reshapeFutures(futures),
		BondLending:   reshapeLending(lending),
	}
	return data, nil
}

func (s *marketService) AvailableDates(ctx context.Context) ([]string, error) {
	dates, err := s.repo.AvailableDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load available dates: %w", err)
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Display())
	}
	return out, nil
}

func (s *marketService) GetTimeSeries(ctx context.Context, table, ticker string, days int) ([]*models.TimeSeriesPoint, error) {
	if days <= 0 {
		days = 30
	}
	return s.repo.GetTimeSeries(ctx, table, ticker, days)
}

func dayOfWeek(date models.ReportingDate) string {
	t, err := time.Parse("20060102", string(date))
	if err != nil {
		return ""
	}
	return t.Weekday().String()[:3]
}

func ratesByType(rows []*models.DomesticRateRow, rateType string) []*models.DomesticRateRow {
	out := make([]*models.DomesticRateRow, 0, len(rows))
	for _, r := range rows {
		if r.RateType == rateType {
			out = append(out, r)
		}
	}
	return out
}

func reshapeStocks(rows []*models.MacroIndexRow) []*models.StockIndex {
	out := []*models.StockIndex{}
	for _, r := range rows {
		if r.AssetClass != "EQUITY" && r.AssetClass != "FX" {
			continue
		}
		out = append(out, &models.StockIndex{
			Name:          r.Ticker,
			Level:         r.CloseValue,
			Change:        r.ChangeVal,
			ChangePercent: r.ChangePct,
		})
	}
	return out
}

func reshapeUSTreasury(rows []*models.MacroIndexRow) []*models.TenorRate {
	out := []*models.TenorRate{}
	for _, name := range usTreasuryOrder {
		for _, r := range rows {
			if r.AssetClass != "US_BOND" || r.Ticker != name {
				continue
			}
			out = append(out, &models.TenorRate{
				Tenor:  strings.TrimPrefix(name, "US "),
				Rate:   r.CloseValue,
				Change: r.ChangeVal,
			})
			break
		}
	}
	return out
}

func reshapeSwapRates(rows []*models.DomesticRateRow) []*models.TenorRate {
	out := []*models.TenorRate{}
	for _, tenor := range swapTenorOrder {
		for _, r := range rows {
			if r.Maturity != tenor {
				continue
			}
			out = append(out, &models.TenorRate{
				Tenor:  tenor,
				Rate:   r.YieldVal,
				Change: r.ChangeBp,
			})
			break
		}
	}
	return out
}

func reshapeBonds(rows []*models.DomesticRateRow) []*models.BondYield {
	out := make([]*models.BondYield, 0, len(rows))
	for _, r := range rows {
		name := r.Maturity
		if name == "" {
			name = r.TickerName
		}
		out = append(out, &models.BondYield{
			Name:   name,
			Level:  r.YieldVal,
			Change: r.ChangeBp,
		})
	}
	return out
}

// reshapeSpreads pairs each IRS tenor with its cash instrument and reports the
// bond-swap spread in basis points. A pair with either leg missing or zero
// shows a zero spread rather than dropping the row.
func reshapeSpreads(cashRows, irsRows []*models.DomesticRateRow) []*models.BondSpread {
	findRate := func(rows []*models.DomesticRateRow, maturity string) decimal.Decimal {
		for _, r := range rows {
			if r.Maturity == maturity {
				return r.YieldVal
			}
		}
		return decimal.Zero
	}

	out := make([]*models.BondSpread, 0, len(spreadPairs))
	for _, p := range spreadPairs {
		irsVal := findRate(irsRows, p.IRSKey)
		cashVal := findRate(cashRows, p.CashKey)
		spread := decimal.Zero
		if !irsVal.IsZero() && !cashVal.IsZero() {
			spread = cashVal.Sub(irsVal).Mul(decimal.NewFromInt(100))
		}
		out = append(out, &models.BondSpread{
			Name:   p.Name,
			IRS:    irsVal,
			Spread: spread,
		})
	}
	return out
}

func reshapeCreditCurves(rows []*models.YieldCurveRow) []*models.CreditCurve {
	groups := map[string]map[string]decimal.Decimal{}
	for _, r := range rows {
		key := r.Sector
		if rating := strings.TrimSpace(r.CreditRating); rating != "" {
			key = r.Sector + " " + rating
		}
		if groups[key] == nil {
			groups[key] = map[string]decimal.Decimal{}
		}
		groups[key][r.Tenor] = r.YieldRate
	}

	out := []*models.CreditCurve{}
	for _, name := range creditSectorOrder {
		tenorMap, ok := groups[name]
		if !ok {
			continue
		}
		points := make(map[string]decimal.Decimal, len(creditTenors))
		for _, tenor := range creditTenors {
			points[tenor] = tenorMap[tenor]
		}
		out = append(out, &models.CreditCurve{Name: name, Points: points})
	}
	return out
}

func reshapeFutures(rows []*models.KTBFuturesRow) []*models.KTBFuture {
	out := make([]*models.KTBFuture, 0, len(rows))
	for _, r := range rows {
		out = append(out, &models.KTBFuture{
			Ticker:       r.Ticker,
			Price:        r.ClosePrice,
			Volume:       r.Volume,
			NetForeign:   r.NetForeign,
			NetFinInvest: r.NetFinInvest,
			NetBank:      r.NetBank,
		})
	}
	return out
}

func reshapeLending(rows []*models.BondLendingRow) []*models.BondLending {
	out := make([]*models.BondLending, 0, len(rows))
	for _, r := range rows {
		out = append(out, &models.BondLending{
			Ticker:    r.BondTicker,
			BorrowAmt: r.BorrowAmt,
			RepayAmt:  r.RepayAmt,
			NetChange: r.NetChange,
			Balance:   r.Balance,
		})
	}
	return out
}

package services

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/ficcboard/backend/internal/errors"
	"github.com/ficcboard/backend/internal/models"
	"github.com/ficcboard/backend/internal/repositories"
)

// StrucprdConfig makes the defaults the original buried in query text
// explicit so tests can assert on them deterministically.
type StrucprdConfig struct {
	// FundCode is the designated asset-holding fund every summary and
	// holdings listing is scoped to.
	FundCode string
	// AccrualModule is the valuation-module tag the latest-rate lookup is
	// pinned to.
	AccrualModule string
	// FallbackUSDKRW is applied when no FX observation exists.
	FallbackUSDKRW decimal.Decimal
	// PageSize is the fixed page size of the generic listing.
	PageSize int
}

// DefaultStrucprdConfig reads the config from environment variables with the
// production defaults.
func DefaultStrucprdConfig() StrucprdConfig {
	cfg := StrucprdConfig{
		FundCode:       getEnv("HOLDINGS_FUND_CD", "41200"),
		AccrualModule:  getEnv("ACCRUAL_MDL", "EOD"),
		FallbackUSDKRW: decimal.NewFromInt(1450),
		PageSize:       15,
	}
	if v := os.Getenv("FALLBACK_USDKRW"); v != "" {
		if rate, err := decimal.NewFromString(v); err == nil && rate.IsPositive() {
			cfg.FallbackUSDKRW = rate
		}
	}
	if v := os.Getenv("STRUCPRD_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type strucprdService struct {
	repo   repositories.StrucprdRepository
	cfg    StrucprdConfig
	logger *zap.Logger
}

// NewStrucprdService creates a new structured-product service
func NewStrucprdService(repo repositories.StrucprdRepository, cfg StrucprdConfig, logger *zap.Logger) StrucprdService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &strucprdService{repo: repo, cfg: cfg, logger: logger}
}

func (s *strucprdService) GetHoldingsSnapshot(ctx context.Context) (*models.HoldingsSnapshot, error) {
	var (
		summary  *models.StrucprdSummary
		rates    map[string]*models.AccrualRates
		products []*models.Strucprd
		fxRate   decimal.Decimal
		fxFound  bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.repo.GetSummary(gctx, s.cfg.FundCode)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = s.repo.GetLatestAccrualRates(gctx, s.cfg.AccrualModule)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.repo.ListFiltered(gctx, &models.StrucprdFilter{
			CallFilter: models.CallFilterAlive,
			FundCode:   s.cfg.FundCode,
		})
		return err
	})
	g.Go(func() error {
		var err error
		fxRate, fxFound, err = s.repo.GetLatestUSDKRW(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		// The summary boundary deliberately degrades to "no data" so the
		// page can show a setup message instead of crashing. Every other
		// service boundary propagates failures.
		s.logger.Warn("holdings snapshot query failed, returning empty snapshot",
			zap.String("fund_cd", s.cfg.FundCode),
			zap.Error(err))
		return nil, nil
	}

	rate := fxRate
	if !fxFound {
		rate = s.cfg.FallbackUSDKRW
	}

	// The single rate resolved above is the only one used anywhere in this
	// snapshot: summary conversion and combined carry weights alike.
	return &models.HoldingsSnapshot{
		Summary:             summary,
		UsdKrwRate:          rate,
		UsdKrwRateFallback:  !fxFound,
		UsdAssetNotionalKRW: summary.UsdAssetNotional.Mul(rate),
		Carry:               computeCarry(products, rates, rate),
		AccrualRates:        rates,
	}, nil
}

// computeCarry derives the notional-weighted average carry of the alive
// asset-side products. A product missing either leg's rate is excluded from
// numerator and denominator both; it never counts as zero carry. The combined
// average weights USD notionals converted at usdKrw.
func computeCarry(products []*models.Strucprd, rates map[string]*models.AccrualRates, usdKrw decimal.Decimal) *models.CarryData {
	var (
		krwWeighted, krwNotional decimal.Decimal
		usdWeighted, usdNotional decimal.Decimal
	)

	for _, p := range products {
		if p.CallStatus() != models.CallAlive {
			continue
		}
		if p.AsstLblt == nil || *p.AsstLblt != models.SideAsset {
			continue
		}
		r, ok := rates[p.ObjCd]
		if !ok || r.Coupon == nil || r.Funding == nil {
			continue
		}
		carry := r.Coupon.Sub(*r.Funding)
		curr := ""
		if p.Curr != nil {
			curr = *p.Curr
		}
		switch curr {
		case "KRW":
			krwWeighted = krwWeighted.Add(carry.Mul(p.Notn))
			krwNotional = krwNotional.Add(p.Notn)
		case "USD":
			usdWeighted = usdWeighted.Add(carry.Mul(p.Notn))
			usdNotional = usdNotional.Add(p.Notn)
		}
	}

	data := &models.CarryData{
		KrwNotional: krwNotional,
		UsdNotional: usdNotional,
	}
	if !krwNotional.IsZero() {
		avg := krwWeighted.Div(krwNotional)
		data.KrwAvgCarry = &avg
	}
	if !usdNotional.IsZero() {
		avg := usdWeighted.Div(usdNotional)
		data.UsdAvgCarry = &avg
	}

	// Combined: convert USD legs into KRW terms with the snapshot rate so
	// the weights share one currency.
	totalWeighted := krwWeighted.Add(usdWeighted.Mul(usdKrw))
	totalNotional := krwNotional.Add(usdNotional.Mul(usdKrw))
	if !totalNotional.IsZero() {
		avg := totalWeighted.Div(totalNotional)
		data.TotalAvgCarry = &avg
	}
	return data
}

func (s *strucprdService) ListProducts(ctx context.Context, query string, page int, callFilter models.CallFilter) (*models.StrucprdPage, error) {
	if page < 1 {
		page = 1
	}
	if callFilter == "" {
		callFilter = models.CallFilterAlive
	}
	if !callFilter.Valid() {
		return nil, &apperrors.ErrValidation{Field: "call", Message: "must be N, Y or ALL"}
	}

	filter := &models.StrucprdFilter{
		Query:      query,
		CallFilter: callFilter,
		Limit:      s.cfg.PageSize,
		Offset:     (page - 1) * s.cfg.PageSize,
	}

	var (
		rows  []*models.Strucprd
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.ListFiltered(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.repo.CountFiltered(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &models.StrucprdPage{
		Rows:       rows,
		Page:       page,
		TotalPages: (count + s.cfg.PageSize - 1) / s.cfg.PageSize,
	}, nil
}

func (s *strucprdService) ListHoldings(ctx context.Context, query string, callFilter models.CallFilter) ([]*models.Strucprd, error) {
	if callFilter == "" {
		callFilter = models.CallFilterAlive
	}
	if !callFilter.Valid() {
		return nil, &apperrors.ErrValidation{Field: "call", Message: "must be N, Y or ALL"}
	}

	rows, err := s.repo.ListFiltered(ctx, &models.StrucprdFilter{
		Query:      query,
		CallFilter: callFilter,
		FundCode:   s.cfg.FundCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return rows, nil
}

package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ficcboard/backend/internal/models"
	"github.com/ficcboard/backend/internal/repositories"
)

type reportingService struct {
	repo repositories.ReportingRepository
}

// NewReportingService creates a new reporting service
func NewReportingService(repo repositories.ReportingRepository) ReportingService {
	return &reportingService{repo: repo}
}

func (s *reportingService) GetDeskSnapshot(ctx context.Context) (*models.DeskSnapshot, error) {
	date, err := s.repo.LatestReportingDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reporting date: %w", err)
	}
	if date.IsZero() {
		return nil, nil
	}
	return s.GetDeskSnapshotAt(ctx, date)
}

func (s *reportingService) GetDeskSnapshotAt(ctx context.Context, date models.ReportingDate) (*models.DeskSnapshot, error) {
	var (
		kpi         *models.KPI
		attribution []*models.AttributionRow
	)

	// KPI and attribution touch disjoint tables; fan out and settle both
	// before folding. A failure in either fails the whole snapshot.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		kpi, err = s.repo.GetKPI(gctx, date)
		return err
	})
	g.Go(func() error {
		var err error
		attribution, err = s.repo.GetAttribution(gctx, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build desk snapshot for %s: %w", date, err)
	}

	// Liabilities keep the ledger's sign convention; the total is a plain sum.
	return &models.DeskSnapshot{
		ReportingDate: date.Display(),
		TotalBalance:  kpi.AssetTotal.Add(kpi.LiabilityTotal),
		AssetBalance:  kpi.AssetTotal,
		LiabilityBal:  kpi.LiabilityTotal,
		DailyPnl:      kpi.DailyPnl,
		MonthlyPnl:    kpi.MonthlyPnl,
		AccmltPnl:     kpi.AccmltPnl,
		Attribution:   attribution,
	}, nil
}

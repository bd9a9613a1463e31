package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ficcboard/backend/internal/models"
	"github.com/ficcboard/backend/internal/repositories"
	"github.com/ficcboard/backend/internal/services"
)

const testFundCode = "41200"

func seedStrucprdData(t *testing.T, tdb *testDB) {
	t.Helper()

	// Holdings fund: 2 alive KRW assets, 1 alive USD asset (call_yn NULL),
	// 1 called product, 1 liability-side row. Plus one row in another fund.
	tdb.exec(t, `INSERT INTO strucprd
		(obj_cd, fnd_cd, fnd_nm, cntr_nm, asst_lblt, curr, notn, call_yn, type1, type2) VALUES
		('SP001', '41200', 'Holdings Fund', 'Alpha Bank',  'ASSET',     'KRW', 10000, 'N',  'Callable', 'Spread'),
		('SP002', '41200', 'Holdings Fund', 'Beta Sec',    'ASSET',     'KRW', 20000, NULL, 'Callable', 'Spread'),
		('SP003', '41200', 'Holdings Fund', 'Alpha Bank',  'ASSET',     'USD', 1000000, NULL, 'Quanto', ''),
		('SP004', '41200', 'Holdings Fund', 'Gamma Corp',  'ASSET',     'KRW', 5000,  'Y',  'Callable', ''),
		('SP005', '41200', 'Holdings Fund', 'Alpha Bank',  'LIABILITY', 'KRW', 7000,  'N',  'Range', ''),
		('SP006', '41900', 'Other Fund',    'Delta Bank',  'ASSET',     'KRW', 3000,  'N',  'Callable', '')`)
}

func TestStrucprdSummary(t *testing.T) {
	tdb := setupTestDB(t)
	defer tdb.cleanup(t)
	seedStrucprdData(t, tdb)

	repo := repositories.NewStrucprdRepository(tdb.database)
	ctx := context.Background()

	summary, err := repo.GetSummary(ctx, testFundCode)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}

	t.Run("Counts Scope To Alive Asset Holdings", func(t *testing.T) {
		if summary.TotalCount != 3 {
			t.Errorf("expected 3 alive asset products, got %d", summary.TotalCount)
		}
		if summary.KrwCount != 2 || summary.UsdCount != 1 {
			t.Errorf("expected 2 KRW / 1 USD, got %d / %d", summary.KrwCount, summary.UsdCount)
		}
		if !summary.KrwAssetNotional.Equal(decimal.NewFromInt(30000)) {
			t.Errorf("expected KRW notional 30000, got %s", summary.KrwAssetNotional)
		}
		if !summary.UsdAssetNotional.Equal(decimal.NewFromInt(1000000)) {
			t.Errorf("expected USD notional 1000000, got %s", summary.UsdAssetNotional)
		}
	})

	t.Run("Lifecycle Split Counts Called Separately", func(t *testing.T) {
		if summary.AliveCount != 3 {
			t.Errorf("expected 3 alive, got %d", summary.AliveCount)
		}
		if summary.CalledCount != 1 {
			t.Errorf("expected 1 called, got %d", summary.CalledCount)
		}
	})

	t.Run("Distributions Ranked By Notional", func(t *testing.T) {
		if len(summary.TypeDistribution) != 2 {
			t.Fatalf("expected 2 type buckets, got %d", len(summary.TypeDistribution))
		}
		// USD 1000000 > KRW 30000, so Quanto ranks first.
		if summary.TypeDistribution[0].Label != "Quanto" {
			t.Errorf("expected Quanto first, got %s", summary.TypeDistribution[0].Label)
		}
		if summary.TypeDistribution[1].Label != "Callable / Spread" {
			t.Errorf("expected combined type label, got %s", summary.TypeDistribution[1].Label)
		}
		if summary.TypeDistribution[1].Count != 2 {
			t.Errorf("expected 2 products in combined bucket, got %d", summary.TypeDistribution[1].Count)
		}

		if len(summary.CntrDistribution) != 2 {
			t.Fatalf("expected 2 counterparty buckets, got %d", len(summary.CntrDistribution))
		}
		if summary.CntrDistribution[0].Label != "Alpha Bank" {
			t.Errorf("expected Alpha Bank first, got %s", summary.CntrDistribution[0].Label)
		}
	})
}

func TestStrucprdSummaryEmptyInventory(t *testing.T) {
	tdb := setupTestDB(t)
	defer tdb.cleanup(t)

	repo := repositories.NewStrucprdRepository(tdb.database)

	summary, err := repo.GetSummary(context.Background(), testFundCode)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	// Empty inventory yields a zero-valued summary, never an error or nulls.
	if summary.TotalCount != 0 || summary.AliveCount != 0 {
		t.Errorf("expected zero counts, got total=%d alive=%d", summary.TotalCount, summary.AliveCount)
	}
	if !summary.KrwAssetNotional.IsZero() || !summary.UsdAssetNotional.IsZero() {
		t.Errorf("expected zero notionals, got %s / %s",
			summary.KrwAssetNotional, summary.UsdAssetNotional)
	}
}

func TestStrucprdListFiltered(t *testing.T) {
	tdb := setupTestDB(t)
	defer tdb.cleanup(t)
	seedStrucprdData(t, tdb)

	repo := repositories.NewStrucprdRepository(tdb.database)
	ctx := context.Background()

	t.Run("Default Filter Hides Called", func(t *testing.T) {
		rows, err := repo.ListFiltered(ctx, &models.StrucprdFilter{CallFilter: models.CallFilterAlive})
		if err != nil {
			t.Fatalf("ListFiltered failed: %v", err)
		}
		// All alive rows across funds and sides: SP001-003, SP005, SP006.
		if len(rows) != 5 {
			t.Fatalf("expected 5 alive rows, got %d", len(rows))
		}
		for _, p := range rows {
			if p.CallStatus() != models.CallAlive {
				t.Errorf("called product %s leaked through alive filter", p.ObjCd)
			}
		}
	})

	t.Run("Called Filter", func(t *testing.T) {
		rows, err := repo.ListFiltered(ctx, &models.StrucprdFilter{CallFilter: models.CallFilterCalled})
		if err != nil {
			t.Fatalf("ListFiltered failed: %v", err)
		}
		if len(rows) != 1 || rows[0].ObjCd != "SP004" {
			t.Fatalf("expected only SP004, got %d rows", len(rows))
		}
	})

	t.Run("ALL Includes Both States", func(t *testing.T) {
		count, err := repo.CountFiltered(ctx, &models.StrucprdFilter{CallFilter: models.CallFilterAll})
		if err != nil {
			t.Fatalf("CountFiltered failed: %v", err)
		}
		if count != 6 {
			t.Errorf("expected 6 rows under ALL, got %d", count)
		}
	})

	t.Run("Text Search Is Case Insensitive", func(t *testing.T) {
		rows, err := repo.ListFiltered(ctx, &models.StrucprdFilter{
			Query:      "alpha",
			CallFilter: models.CallFilterAll,
		})
		if err != nil {
			t.Fatalf("ListFiltered failed: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected 3 Alpha Bank rows, got %d", len(rows))
		}
	})

	t.Run("Fund Scope", func(t *testing.T) {
		rows, err := repo.ListFiltered(ctx, &models.StrucprdFilter{
			CallFilter: models.CallFilterAll,
			FundCode:   "41900",
		})
		if err != nil {
			t.Fatalf("ListFiltered failed: %v", err)
		}
		if len(rows) != 1 || rows[0].ObjCd != "SP006" {
			t.Fatalf("expected only SP006, got %d rows", len(rows))
		}
	})

	t.Run("Pagination Partitions Without Overlap", func(t *testing.T) {
		seen := map[string]bool{}
		for offset := 0; offset < 6; offset += 2 {
			rows, err := repo.ListFiltered(ctx, &models.StrucprdFilter{
				CallFilter: models.CallFilterAll,
				Limit:      2,
				Offset:     offset,
			})
			if err != nil {
				t.Fatalf("ListFiltered failed at offset %d: %v", offset, err)
			}
			for _, p := range rows {
				if seen[p.ObjCd] {
					t.Errorf("product %s appeared on two pages", p.ObjCd)
				}
				seen[p.ObjCd] = true
			}
		}
		if len(seen) != 6 {
			t.Errorf("expected all 6 products across pages, got %d", len(seen))
		}
	})
}

func TestAccrualRatesLatestPerLeg(t *testing.T) {
	tdb := setupTestDB(t)
	defer tdb.cleanup(t)

	tdb.exec(t, `INSERT INTO accint_rate (obj_cd, leg_type, std_dt, mdl, rate) VALUES
		('SP001', 'coupon',  '20260312', 'EOD', 4.10),
		('SP001', 'coupon',  '20260316', 'EOD', 4.25),
		('SP001', 'funding', '20260316', 'EOD', 3.00),
		('SP002', 'coupon',  '20260316', 'EOD', 5.00),
		('SP001', 'coupon',  '20260316', 'INTRADAY', 9.99)`)

	repo := repositories.NewStrucprdRepository(tdb.database)

	rates, err := repo.GetLatestAccrualRates(context.Background(), "EOD")
	if err != nil {
		t.Fatalf("GetLatestAccrualRates failed: %v", err)
	}

	sp1 := rates["SP001"]
	if sp1 == nil || sp1.Coupon == nil || sp1.Funding == nil {
		t.Fatalf("expected both legs for SP001, got %+v", sp1)
	}
	// Latest observation wins; the other module's row is ignored.
	if !sp1.Coupon.Equal(decimal.RequireFromString("4.25")) {
		t.Errorf("expected latest coupon 4.25, got %s", sp1.Coupon)
	}

	sp2 := rates["SP002"]
	if sp2 == nil || sp2.Coupon == nil {
		t.Fatalf("expected coupon leg for SP002")
	}
	if sp2.Funding != nil {
		t.Errorf("expected missing funding leg for SP002, got %s", sp2.Funding)
	}
}

func TestHoldingsSnapshotEndToEnd(t *testing.T) {
	tdb := setupTestDB(t)
	defer tdb.cleanup(t)
	seedStrucprdData(t, tdb)

	tdb.exec(t, `INSERT INTO accint_rate (obj_cd, leg_type, std_dt, mdl, rate) VALUES
		('SP001', 'coupon',  '20260316', 'EOD', 4.00),
		('SP001', 'funding', '20260316', 'EOD', 3.00)`)

	repo := repositories.NewStrucprdRepository(tdb.database)
	cfg := services.StrucprdConfig{
		FundCode:       testFundCode,
		AccrualModule:  "EOD",
		FallbackUSDKRW: decimal.NewFromInt(1450),
		PageSize:       15,
	}
	svc := services.NewStrucprdService(repo, cfg, zap.NewNop())
	ctx := context.Background()

	t.Run("Fallback Rate When No FX Observation", func(t *testing.T) {
		snapshot, err := svc.GetHoldingsSnapshot(ctx)
		if err != nil {
			t.Fatalf("GetHoldingsSnapshot failed: %v", err)
		}
		if snapshot == nil {
			t.Fatal("expected a snapshot")
		}
		if !snapshot.UsdKrwRateFallback {
			t.Error("expected fallback flag with no FX rows")
		}
		if !snapshot.UsdAssetNotionalKRW.Equal(decimal.NewFromInt(1450000000)) {
			t.Errorf("expected 1450000000, got %s", snapshot.UsdAssetNotionalKRW)
		}
	})

	t.Run("Observed Rate Applied Uniformly", func(t *testing.T) {
		tdb.exec(t, `INSERT INTO tb_macro_index (base_date, asset_class, ticker, close_value) VALUES
			('20260316', 'FX', 'USD/KRW', 1390.5)`)

		snapshot, err := svc.GetHoldingsSnapshot(ctx)
		if err != nil {
			t.Fatalf("GetHoldingsSnapshot failed: %v", err)
		}
		if snapshot.UsdKrwRateFallback {
			t.Error("expected observed rate, not fallback")
		}
		if !snapshot.UsdKrwRate.Equal(decimal.RequireFromString("1390.5")) {
			t.Errorf("expected rate 1390.5, got %s", snapshot.UsdKrwRate)
		}
		if !snapshot.UsdAssetNotionalKRW.Equal(snapshot.Summary.UsdAssetNotional.Mul(snapshot.UsdKrwRate)) {
			t.Error("USD notional must be converted at the snapshot rate")
		}
	})

	t.Run("Carry Covers Only Products With Both Legs", func(t *testing.T) {
		snapshot, err := svc.GetHoldingsSnapshot(ctx)
		if err != nil {
			t.Fatalf("GetHoldingsSnapshot failed: %v", err)
		}
		if snapshot.Carry == nil {
			t.Fatal("expected carry data")
		}
		// Only SP001 has both legs: carry 1.0 on 10000 notional.
		if snapshot.Carry.KrwAvgCarry == nil {
			t.Fatal("expected KRW carry")
		}
		if !snapshot.Carry.KrwAvgCarry.Equal(decimal.NewFromInt(1)) {
			t.Errorf("expected KRW carry 1.0, got %s", snapshot.Carry.KrwAvgCarry)
		}
		if !snapshot.Carry.KrwNotional.Equal(decimal.NewFromInt(10000)) {
			t.Errorf("expected carry notional 10000, got %s", snapshot.Carry.KrwNotional)
		}
		if snapshot.Carry.UsdAvgCarry != nil {
			t.Error("USD product has no rates; USD carry must be nil")
		}
	})
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ficcboard/backend/internal/db"
	"github.com/ficcboard/backend/internal/models"
)

type strucprdRepository struct {
	db *db.DB
}

// NewStrucprdRepository creates a new structured-product repository
func NewStrucprdRepository(database *db.DB) StrucprdRepository {
	return &strucprdRepository{db: database}
}

func (r *strucprdRepository) getSQLDB() (*sql.DB, error) {
	return r.db.GetSQLDB()
}

// holdingsScope is the predicate shared by every summary aggregate: alive
// (call_yn unset counts as alive), asset-side, one fund. $1 = side, $2 = fund.
const holdingsScope = `
	(call_yn IS NULL OR call_yn = 'N')
	AND asst_lblt = $1
	AND fnd_cd = $2`

func (r *strucprdRepository) GetSummary(ctx context.Context, fundCode string) (*models.StrucprdSummary, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	countQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE curr = 'KRW') AS krw_count,
			COUNT(*) FILTER (WHERE curr = 'USD') AS usd_count,
			COALESCE(SUM(notn) FILTER (WHERE curr = 'KRW'), 0) AS krw_total,
			COALESCE(SUM(notn) FILTER (WHERE curr = 'USD'), 0) AS usd_total
		FROM strucprd
		WHERE` + holdingsScope

	summary := &models.StrucprdSummary{}
	err = sqlDB.QueryRowContext(ctx, countQuery, models.SideAsset, fundCode).Scan(
		&summary.TotalCount, &summary.KrwCount, &summary.UsdCount,
		&summary.KrwAssetNotional, &summary.UsdAssetNotional,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get strucprd counts: %w", err)
	}

	// Alive/called split over the same fund and side, without the alive scope.
	lifecycleQuery := `
		SELECT
			COUNT(*) FILTER (WHERE call_yn IS NULL OR call_yn = 'N') AS alive,
			COUNT(*) FILTER (WHERE call_yn = 'Y') AS called
		FROM strucprd
		WHERE asst_lblt = $1 AND fnd_cd = $2`

	err = sqlDB.QueryRowContext(ctx, lifecycleQuery, models.SideAsset, fundCode).Scan(
		&summary.AliveCount, &summary.CalledCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get strucprd lifecycle counts: %w", err)
	}

	typeQuery := `
		SELECT
			CONCAT_WS(' / ',
				NULLIF(type1, ''),
				NULLIF(type2, ''),
				NULLIF(type3, ''),
				NULLIF(type4, '')
			) AS struct_type,
			COUNT(*) AS count,
			COALESCE(SUM(notn) FILTER (WHERE curr = 'KRW'), 0) AS krw_notional,
			COALESCE(SUM(notn) FILTER (WHERE curr = 'USD'), 0) AS usd_notional
		FROM strucprd
		WHERE` + holdingsScope + `
			AND type1 IS NOT NULL AND type1 != ''
		GROUP BY struct_type
		ORDER BY SUM(notn) DESC
		LIMIT 10`

	summary.TypeDistribution, err = r.scanBuckets(ctx, sqlDB, typeQuery, fundCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get type distribution: %w", err)
	}

	cntrQuery := `
		SELECT
			cntr_nm,
			COUNT(*) AS count,
			COALESCE(SUM(notn) FILTER (WHERE curr = 'KRW'), 0) AS krw_notional,
			COALESCE(SUM(notn) FILTER (WHERE curr = 'USD'), 0) AS usd_notional
		FROM strucprd
		WHERE` + holdingsScope + `
			AND cntr_nm IS NOT NULL AND cntr_nm != ''
		GROUP BY cntr_nm
		ORDER BY SUM(notn) DESC
		LIMIT 10`

	summary.CntrDistribution, err = r.scanBuckets(ctx, sqlDB, cntrQuery, fundCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get counterparty distribution: %w", err)
	}

	return summary, nil
}

func (r *strucprdRepository) scanBuckets(ctx context.Context, sqlDB *sql.DB, query, fundCode string) ([]*models.DistributionBucket, error) {
	rows, err := sqlDB.QueryContext(ctx, query, models.SideAsset, fundCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []*models.DistributionBucket
	for rows.Next() {
		b := &models.DistributionBucket{}
		if err := rows.Scan(&b.Label, &b.Count, &b.KrwNotional, &b.UsdNotional); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// filterPredicate builds the WHERE clause and arguments shared by
// ListFiltered and CountFiltered. Both must use the exact same predicate so
// page counts can never drift from the fetched rows.
func filterPredicate(filter *models.StrucprdFilter) (string, []interface{}) {
	callFilter := filter.CallFilter
	if callFilter == "" {
		callFilter = models.CallFilterAlive
	}

	pattern := "%" + filter.Query + "%"
	args := []interface{}{pattern, string(callFilter)}

	where := `
		(
			obj_cd ILIKE $1 OR
			cntr_nm ILIKE $1 OR
			fnd_nm ILIKE $1 OR
			struct_cond ILIKE $1 OR
			type1 ILIKE $1 OR
			type2 ILIKE $1 OR
			type3 ILIKE $1 OR
			type4 ILIKE $1 OR
			tp ILIKE $1 OR
			curr ILIKE $1 OR
			asst_lblt ILIKE $1
		)
		AND (
			$2 = 'ALL'
			OR call_yn = $2
			OR ($2 = 'N' AND call_yn IS NULL)
		)`

	if filter.FundCode != "" {
		args = append(args, filter.FundCode)
		where += fmt.Sprintf(" AND fnd_cd = $%d", len(args))
	}
	return where, args
}

func (r *strucprdRepository) ListFiltered(ctx context.Context, filter *models.StrucprdFilter) ([]*models.Strucprd, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	where, args := filterPredicate(filter)

	query := `
		SELECT
			id, obj_cd, fnd_cd, fnd_nm, cntr_nm, asst_lblt, tp,
			trd_dt, eff_dt, mat_dt, curr, COALESCE(notn, 0), COALESCE(mat_prd, 0),
			call_yn, risk_call_yn, struct_cond, pay_cond, pay_freq, pay_dcf,
			rcv_cond, rcv_freq, rcv_dcf, note, call_dt, trmntn_dt,
			type1, type2, type3, type4, optn_freq, call_notice,
			frst_call_dt, add_optn, upfrnt, created_at, updated_at
		FROM strucprd
		WHERE` + where + `
		ORDER BY id ASC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list strucprd: %w", err)
	}
	defer rows.Close()

	var products []*models.Strucprd
	for rows.Next() {
		p := &models.Strucprd{}
		err := rows.Scan(
			&p.ID, &p.ObjCd, &p.FndCd, &p.FndNm, &p.CntrNm, &p.AsstLblt, &p.Tp,
			&p.TrdDt, &p.EffDt, &p.MatDt, &p.Curr, &p.Notn, &p.MatPrd,
			&p.CallYn, &p.RiskCallYn, &p.StructCond, &p.PayCond, &p.PayFreq, &p.PayDcf,
			&p.RcvCond, &p.RcvFreq, &p.RcvDcf, &p.Note, &p.CallDt, &p.TrmntnDt,
			&p.Type1, &p.Type2, &p.Type3, &p.Type4, &p.OptnFreq, &p.CallNotice,
			&p.FrstCallDt, &p.AddOptn, &p.Upfrnt, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strucprd row: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *strucprdRepository) CountFiltered(ctx context.Context, filter *models.StrucprdFilter) (int, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return 0, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	where, args := filterPredicate(filter)
	query := `SELECT COUNT(*) FROM strucprd WHERE` + where

	var count int
	if err := sqlDB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count strucprd: %w", err)
	}
	return count, nil
}

func (r *strucprdRepository) GetLatestAccrualRates(ctx context.Context, module string) (map[string]*models.AccrualRates, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	// Only the single most recent observation per (obj_cd, leg) matters for
	// display; everything older is dead weight.
	query := `
		SELECT DISTINCT ON (obj_cd, leg_type)
			obj_cd, leg_type, rate
		FROM accint_rate
		WHERE mdl = $1
		ORDER BY obj_cd, leg_type, std_dt DESC`

	rows, err := sqlDB.QueryContext(ctx, query, module)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest accrual rates: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*models.AccrualRates)
	for rows.Next() {
		var objCd, legType string
		var rate decimal.Decimal
		if err := rows.Scan(&objCd, &legType, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan accrual rate: %w", err)
		}
		entry, ok := result[objCd]
		if !ok {
			entry = &models.AccrualRates{}
			result[objCd] = entry
		}
		v := rate
		switch legType {
		case "coupon":
			entry.Coupon = &v
		case "funding":
			entry.Funding = &v
		}
	}
	return result, rows.Err()
}

func (r *strucprdRepository) GetLatestUSDKRW(ctx context.Context) (decimal.Decimal, bool, error) {
	sqlDB, err := r.getSQLDB()
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	query := `
		SELECT close_value
		FROM tb_macro_index
		WHERE asset_class = 'FX' AND ticker = 'USD/KRW'
		ORDER BY base_date DESC
		LIMIT 1`

	var rate decimal.Decimal
	err = sqlDB.QueryRowContext(ctx, query).Scan(&rate)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to get latest USD/KRW rate: %w", err)
	}
	return rate, true, nil
}

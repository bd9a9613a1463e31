package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CallStatus is the normalized lifecycle state of a structured product.
// The wire column call_yn carries three raw values (NULL, "N", "Y"); NULL and
// "N" are the same state and must never diverge downstream, so every consumer
// goes through NormalizeCallFlag and only ever sees the two-valued enum.
type CallStatus string

const (
	CallAlive  CallStatus = "ALIVE"
	CallCalled CallStatus = "CALLED"
)

// NormalizeCallFlag maps the raw call_yn column to the two-valued enum.
func NormalizeCallFlag(raw *string) CallStatus {
	if raw != nil && *raw == "Y" {
		return CallCalled
	}
	return CallAlive
}

// CallFilter is the tri-state listing filter over call status.
type CallFilter string

const (
	// CallFilterAlive matches products whose call_yn is "N" or NULL. This is
	// the default when no filter is supplied, which means called products are
	// hidden unless explicitly requested.
	CallFilterAlive  CallFilter = "N"
	CallFilterCalled CallFilter = "Y"
	CallFilterAll    CallFilter = "ALL"
)

// Valid reports whether the filter is one of the three accepted values.
func (f CallFilter) Valid() bool {
	return f == CallFilterAlive || f == CallFilterCalled || f == CallFilterAll
}

// Strucprd is one structured-product inventory row. Reference fields are
// immutable after load; call_yn/risk_call_yn are the mutable lifecycle flags.
type Strucprd struct {
	ID         int64           `json:"id"`
	ObjCd      string          `json:"obj_cd"`
	FndCd      *string         `json:"fnd_cd"`
	FndNm      *string         `json:"fnd_nm"`
	CntrNm     *string         `json:"cntr_nm"`
	AsstLblt   *string         `json:"asst_lblt"`
	Tp         *string         `json:"tp"`
	TrdDt      *string         `json:"trd_dt"`
	EffDt      *string         `json:"eff_dt"`
	MatDt      *string         `json:"mat_dt"`
	Curr       *string         `json:"curr"`
	Notn       decimal.Decimal `json:"notn"`
	MatPrd     decimal.Decimal `json:"mat_prd"`
	CallYn     *string         `json:"call_yn"`
	RiskCallYn *string         `json:"risk_call_yn"`
	StructCond *string         `json:"struct_cond"`
	PayCond    *string         `json:"pay_cond"`
	PayFreq    *string         `json:"pay_freq"`
	PayDcf     *string         `json:"pay_dcf"`
	RcvCond    *string         `json:"rcv_cond"`
	RcvFreq    *string         `json:"rcv_freq"`
	RcvDcf     *string         `json:"rcv_dcf"`
	Note       *string         `json:"note"`
	CallDt     *string         `json:"call_dt"`
	TrmntnDt   *string         `json:"trmntn_dt"`
	Type1      *string         `json:"type1"`
	Type2      *string         `json:"type2"`
	Type3      *string         `json:"type3"`
	Type4      *string         `json:"type4"`
	OptnFreq   *string         `json:"optn_freq"`
	CallNotice *string         `json:"call_notice"`
	FrstCallDt *string         `json:"frst_call_dt"`
	AddOptn    *string         `json:"add_optn"`
	Upfrnt     *string         `json:"upfrnt"`
	CreatedAt  *time.Time      `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at"`
}

// CallStatus returns the normalized lifecycle state of the product.
func (p *Strucprd) CallStatus() CallStatus {
	return NormalizeCallFlag(p.CallYn)
}

// StructType joins the non-empty taxonomy fields into the combined label used
// for grouping, e.g. "Callable / Spread / Quanto".
func (p *Strucprd) StructType() string {
	out := ""
	for _, v := range []*string{p.Type1, p.Type2, p.Type3, p.Type4} {
		if v == nil || *v == "" {
			continue
		}
		if out != "" {
			out += " / "
		}
		out += *v
	}
	return out
}

// StrucprdFilter carries the listing predicate. The same filter value drives
// both the row fetch and the total count so the two can never diverge.
type StrucprdFilter struct {
	// Query is matched case-insensitively as a substring against the fixed
	// set of text columns. Empty matches everything.
	Query string
	// CallFilter defaults to CallFilterAlive when left empty.
	CallFilter CallFilter
	// FundCode, when non-empty, restricts the listing to one fund.
	FundCode string
	// Limit/Offset are applied only when Limit > 0 (the asset-holding context
	// reads the full filtered set as a single page).
	Limit  int
	Offset int
}

// DistributionBucket is one row of a top-N grouping. Currency stays a
// grouping dimension upstream; the per-currency subtotals here are raw
// (unconverted) notionals.
type DistributionBucket struct {
	Label       string          `json:"label"`
	Count       int             `json:"count"`
	KrwNotional decimal.Decimal `json:"krw_notional"`
	UsdNotional decimal.Decimal `json:"usd_notional"`
}

// StrucprdSummary aggregates the alive, asset-side inventory of the holdings
// fund. All counts and sums are zero-valued, not null, when no rows match.
type StrucprdSummary struct {
	TotalCount       int                   `json:"total_count"`
	KrwCount         int                   `json:"krw_count"`
	UsdCount         int                   `json:"usd_count"`
	AliveCount       int                   `json:"alive_count"`
	CalledCount      int                   `json:"called_count"`
	KrwAssetNotional decimal.Decimal       `json:"krw_asset_notional"`
	UsdAssetNotional decimal.Decimal       `json:"usd_asset_notional"`
	TypeDistribution []*DistributionBucket `json:"type_distribution"`
	CntrDistribution []*DistributionBucket `json:"cntr_distribution"`
}

// AccrualRates holds the most recent observed coupon and funding rates for
// one product. Either leg may independently be absent.
type AccrualRates struct {
	Coupon  *decimal.Decimal `json:"coupon"`
	Funding *decimal.Decimal `json:"funding"`
}

// CarryData is the notional-weighted average carry (coupon minus funding) of
// the alive asset-side holdings. Nil means no product had both legs observed.
// The combined figure weights USD notionals converted at the snapshot's single
// USD/KRW rate.
type CarryData struct {
	KrwAvgCarry   *decimal.Decimal `json:"krw_avg_carry"`
	UsdAvgCarry   *decimal.Decimal `json:"usd_avg_carry"`
	TotalAvgCarry *decimal.Decimal `json:"total_avg_carry"`
	KrwNotional   decimal.Decimal  `json:"krw_notional"`
	UsdNotional   decimal.Decimal  `json:"usd_notional"`
}

// HoldingsSnapshot is the assembled structured-product dashboard. One FX rate
// (UsdKrwRate) is applied to every USD figure in the snapshot.
type HoldingsSnapshot struct {
	Summary             *StrucprdSummary         `json:"summary"`
	UsdKrwRate          decimal.Decimal          `json:"usd_krw_rate"`
	UsdKrwRateFallback  bool                     `json:"usd_krw_rate_fallback"`
	UsdAssetNotionalKRW decimal.Decimal          `json:"usd_asset_notional_krw"`
	Carry               *CarryData               `json:"carry"`
	AccrualRates        map[string]*AccrualRates `json:"accrual_rates"`
}

// StrucprdPage is one page of the generic listing.
type StrucprdPage struct {
	Rows       []*Strucprd `json:"rows"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
}

package models

import (
	"github.com/shopspring/decimal"
)

// ReportingDate is an 8-digit YYYYMMDD date key, the partition key of every
// daily fact table. The zero value means "no data yet".
type ReportingDate string

// IsZero reports whether no reporting date is available.
func (d ReportingDate) IsZero() bool {
	return d == ""
}

// Display converts the wire format YYYYMMDD to YYYY-MM-DD. Malformed keys are
// returned unchanged so a bad row stays visible instead of disappearing.
func (d ReportingDate) Display() string {
	s := string(d)
	if len(s) != 8 {
		return s
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}

// ParseReportingDate accepts YYYYMMDD or YYYY-MM-DD input.
func ParseReportingDate(s string) ReportingDate {
	if len(s) == 10 && s[4] == '-' && s[7] == '-' {
		return ReportingDate(s[0:4] + s[5:7] + s[8:10])
	}
	return ReportingDate(s)
}

// Position side labels as stored in asset_position.asst_lblt.
const (
	SideAsset     = "ASSET"
	SideLiability = "LIABILITY"
)

// KPI holds the top-of-page totals for one reporting date. Sums default to
// zero for dates with no rows, never to null.
type KPI struct {
	AssetTotal     decimal.Decimal `json:"asset_total"`
	LiabilityTotal decimal.Decimal `json:"liability_total"`
	DailyPnl       decimal.Decimal `json:"daily_pnl"`
	MonthlyPnl     decimal.Decimal `json:"monthly_pnl"`
	AccmltPnl      decimal.Decimal `json:"accmlt_pnl"`
}

// AttributionRow is one fund's daily P&L decomposed into its four components.
// DailyPnl is the component sum computed by the database.
type AttributionRow struct {
	FundName     string          `json:"fund_name"`
	DailyPnl     decimal.Decimal `json:"daily_pnl"`
	PricePnl     decimal.Decimal `json:"price_pnl"`
	InterestPnl  decimal.Decimal `json:"interest_pnl"`
	TradingPnl   decimal.Decimal `json:"trading_pnl"`
	FundingPnl   decimal.Decimal `json:"funding_pnl"`
	DisplayOrder int             `json:"display_order"`
}

// DeskSnapshot is the assembled desk dashboard for the latest reporting date.
// TotalBalance is AssetTotal + LiabilityTotal with whatever sign convention
// the ledger carries; the assembler never re-signs.
type DeskSnapshot struct {
	ReportingDate string            `json:"reporting_date"`
	TotalBalance  decimal.Decimal   `json:"total_balance"`
	AssetBalance  decimal.Decimal   `json:"asset_balance"`
	LiabilityBal  decimal.Decimal   `json:"liability_balance"`
	DailyPnl      decimal.Decimal   `json:"daily_pnl"`
	MonthlyPnl    decimal.Decimal   `json:"monthly_pnl"`
	AccmltPnl     decimal.Decimal   `json:"accmlt_pnl"`
	Attribution   []*AttributionRow `json:"attribution"`
}

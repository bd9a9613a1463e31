package models

import (
	"github.com/shopspring/decimal"
)

// Raw reference-table rows. The market service reshapes these into the
// fixed-shape arrays below; handlers never see the raw rows.

type MacroIndexRow struct {
	BaseDate   ReportingDate
	AssetClass string
	Ticker     string
	CloseValue decimal.Decimal
	ChangeVal  decimal.Decimal
	ChangePct  decimal.Decimal
}

type DomesticRateRow struct {
	BaseDate   ReportingDate
	RateType   string
	Maturity   string
	TickerName string
	YieldVal   decimal.Decimal
	ChangeBp   decimal.Decimal
}

type YieldCurveRow struct {
	BaseDate     ReportingDate
	Sector       string
	CreditRating string
	Tenor        string
	YieldRate    decimal.Decimal
}

type KTBFuturesRow struct {
	BaseDate     ReportingDate
	Ticker       string
	ClosePrice   decimal.Decimal
	Volume       decimal.Decimal
	NetForeign   decimal.Decimal
	NetFinInvest decimal.Decimal
	NetBank      decimal.Decimal
}

type BondLendingRow struct {
	BaseDate   ReportingDate
	BondTicker string
	BorrowAmt  decimal.Decimal
	RepayAmt   decimal.Decimal
	NetChange  decimal.Decimal
	Balance    decimal.Decimal
}

// Reshaped view models.

type StockIndex struct {
	Name          string          `json:"name"`
	Level         decimal.Decimal `json:"level"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

type TenorRate struct {
	Tenor  string          `json:"tenor"`
	Rate   decimal.Decimal `json:"rate"`
	Change decimal.Decimal `json:"change"`
}

type BondYield struct {
	Name   string          `json:"name"`
	Level  decimal.Decimal `json:"level"`
	Change decimal.Decimal `json:"change"`
}

// BondSpread is the bond-swap spread in basis points: (cash - IRS) * 100.
type BondSpread struct {
	Name   string          `json:"name"`
	IRS    decimal.Decimal `json:"irs"`
	Spread decimal.Decimal `json:"spread"`
}

// CreditCurve is one sector/rating's yields across the fixed tenor grid.
// A tenor with no observation stays zero (a hole), the grid never shrinks.
type CreditCurve struct {
	Name   string                     `json:"name"`
	Points map[string]decimal.Decimal `json:"points"`
}

type KTBFuture struct {
	Ticker       string          `json:"ticker"`
	Price        decimal.Decimal `json:"price"`
	Volume       decimal.Decimal `json:"volume"`
	NetForeign   decimal.Decimal `json:"net_foreign"`
	NetFinInvest decimal.Decimal `json:"net_fin_invest"`
	NetBank      decimal.Decimal `json:"net_bank"`
}

type BondLending struct {
	Ticker    string          `json:"ticker"`
	BorrowAmt decimal.Decimal `json:"borrow_amt"`
	RepayAmt  decimal.Decimal `json:"repay_amt"`
	NetChange decimal.Decimal `json:"net_change"`
	Balance   decimal.Decimal `json:"balance"`
}

// MarketDailyData is the assembled market page for one date.
type MarketDailyData struct {
	Date          string         `json:"date"`
	DayOfWeek     string         `json:"day_of_week"`
	Stocks        []*StockIndex  `json:"stocks"`
	USTreasury    []*TenorRate   `json:"us_treasury"`
	IRS           []*TenorRate   `json:"irs"`
	CRS           []*TenorRate   `json:"crs"`
	Bonds         []*BondYield   `json:"bonds"`
	Spreads       []*BondSpread  `json:"spreads"`
	CreditSpreads []*CreditCurve `json:"credit_spreads"`
	KTBFutures    []*KTBFuture   `json:"ktb_futures"`
	BondLending   []*BondLending `json:"bond_lending"`
}

// TimeSeriesPoint is one observation of a single indicator.
type TimeSeriesPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expiry thresholds for document status.
const (
	DocumentUrgentDays = 15
	DocumentNearDays   = 60
)

var hundred = decimal.NewFromInt(100)

// Net computes sales - cash - expense. The stored net column is always
// derived from these three fields, never settable on its own.
func Net(sales, cash, expense decimal.Decimal) decimal.Decimal {
	return sales.Sub(cash).Sub(expense)
}

// Commission computes round(sales * rate / 100, 2).
func Commission(sales, rate decimal.Decimal) decimal.Decimal {
	return sales.Mul(rate).Div(hundred).Round(2)
}

// EffectiveRate resolves the commission rate: the explicit rate if given,
// else the employee default, else zero.
func EffectiveRate(explicit, employeeDefault *decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	if employeeDefault != nil {
		return *employeeDefault
	}
	return decimal.Zero
}

// WeightedCommissionRate is the sales-weighted effective rate
// (total_commission / total_sales) * 100, not a mean of rate fields.
func WeightedCommissionRate(totalCommission, totalSales decimal.Decimal) decimal.Decimal {
	if totalSales.IsZero() {
		return decimal.Zero
	}
	return totalCommission.Div(totalSales).Mul(hundred).Round(2)
}

// ExpiryStatus classifies a document by its expiry date relative to today.
func ExpiryStatus(expiry *time.Time, today time.Time) DocumentStatus {
	if expiry == nil {
		return DocumentSafe
	}
	day := dateOnly(today)
	exp := dateOnly(*expiry)
	switch {
	case exp.Before(day):
		return DocumentExpired
	case !exp.After(day.AddDate(0, 0, DocumentUrgentDays)):
		return DocumentUrgent
	case !exp.After(day.AddDate(0, 0, DocumentNearDays)):
		return DocumentNear
	}
	return DocumentSafe
}

// DaysRemaining returns whole days until expiry, nil when no expiry is set.
func DaysRemaining(expiry *time.Time, today time.Time) *int {
	if expiry == nil {
		return nil
	}
	days := int(dateOnly(*expiry).Sub(dateOnly(today)).Hours() / 24)
	return &days
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BalanceSummary aggregates a party's confirmed ledger entries.
// Balance = credits - debits: positive means the party is owed money,
// negative means the party owes. Cancelled entries never contribute.
type BalanceSummary struct {
	Party         Party
	Balance       decimal.Decimal
	TotalDebit    decimal.Decimal
	TotalCredit   decimal.Decimal
	EntryCount    int64
	LastEntryDate *time.Time
}

// Label returns the Arabic bookkeeping label for the balance sign.
func (b BalanceSummary) Label() string {
	switch {
	case b.Balance.IsPositive():
		return "له" // the party is owed
	case b.Balance.IsNegative():
		return "عليه" // the party owes
	}
	return "متوازن"
}

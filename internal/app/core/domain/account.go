package domain

import (
	"github.com/shopspring/decimal"
)

// Account 帳戶快照
// 由 Store 以值 (value) 回傳，呼叫端拿到的永遠是副本，無法繞過 Store 修改餘額
type Account struct {
	ID      string
	Balance decimal.Decimal
}

func NewAccount(id string, balance decimal.Decimal) Account {
	return Account{
		ID:      id,
		Balance: balance,
	}
}

const (
	// MaxAmountScale 金額最多小數位數，與 accounts.balance 的 decimal(38,18) 一致
	MaxAmountScale = 18
	// MaxAmountIntegerDigits 金額整數部分最多位數
	MaxAmountIntegerDigits = 20
)

// ValidateAmount 檢查金額非負且精度在範圍內
// 精度不設限的金額會讓持鎖期間的運算成本無上限
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	exp := amount.Exponent()
	if exp < -MaxAmountScale {
		return ErrAmountPrecision
	}
	// 0e999999 也要擋，運算時一樣會 rescale 到極大的 exponent
	if exp > MaxAmountIntegerDigits {
		return ErrAmountTooLarge
	}
	if !amount.IsZero() && amount.NumDigits()+int(exp) > MaxAmountIntegerDigits {
		return ErrAmountTooLarge
	}
	return nil
}

// Validate 檢查帳戶建立時的基本條件
func (a Account) Validate() error {
	if a.ID == "" {
		return ErrInvalidAccountID
	}
	return ValidateAmount(a.Balance)
}

// CanDebit 餘額是否足以扣款 amount
func (a Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// FormatAmount 保留原始精度輸出金額 (10.000 不會被縮成 10)
func FormatAmount(amount decimal.Decimal) string {
	if exp := amount.Exponent(); exp < 0 {
		return amount.StringFixed(-exp)
	}
	return amount.String()
}

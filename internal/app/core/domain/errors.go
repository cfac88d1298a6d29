package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeAmount 金額不可為負數
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrAmountPrecision 金額小數位數超過 MaxAmountScale
	ErrAmountPrecision = errors.New("amount has too many decimal places")

	// ErrAmountTooLarge 金額整數部分超過 MaxAmountIntegerDigits
	ErrAmountTooLarge = errors.New("amount is too large")

	// ErrInsufficientFunds 帳戶餘額不足以扣款 (Store 層回報)
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientBalance 轉帳時扣款方餘額不足 (Engine 層回報)
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccountID 帳戶已存在
	ErrDuplicateAccountID = errors.New("account already exists")

	// ErrInvalidAccountID 帳戶 ID 不可為空
	ErrInvalidAccountID = errors.New("account id must not be empty")

	// ErrInconsistentState 扣款成功後入帳失敗，代表 Store 或帳戶生命週期有 bug
	ErrInconsistentState = errors.New("ledger is in an inconsistent state")

	// ErrStoreClosed Store 已關閉，不再接受請求
	ErrStoreClosed = errors.New("account store is closed")
)

// AccountNotFoundError 轉帳雙方任一帳戶不存在
// 刻意不區分是哪一方不存在，訊息同時帶出兩個 ID
type AccountNotFoundError struct {
	FromAccountID string
	ToAccountID   string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("Account id %s or %s does not exist", e.FromAccountID, e.ToAccountID)
}

func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// InsufficientBalanceError 扣款方餘額不足
type InsufficientBalanceError struct {
	AccountID string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient balance in your account %s", e.AccountID)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// DuplicateAccountError 建立帳戶時 ID 已被使用
type DuplicateAccountError struct {
	AccountID string
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("Account id %s already exists!", e.AccountID)
}

func (e *DuplicateAccountError) Is(target error) bool {
	return target == ErrDuplicateAccountID
}

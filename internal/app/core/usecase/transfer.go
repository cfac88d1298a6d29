package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/telemetry"
)

const tracerName = "github.com/JoeShih716/go-mem-transfer/usecase"

// TransferUseCase 轉帳引擎
// 本身不持有任何帳戶狀態，所有讀寫都經由 AccountStore 的原子操作
type TransferUseCase struct {
	store    AccountStore
	notifier Notifier
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewTransferUseCase(store AccountStore, notifier Notifier, logger *zap.Logger) *TransferUseCase {
	return &TransferUseCase{
		store:    store,
		notifier: notifier,
		logger:   logger.Named("transfer"),
		tracer:   otel.Tracer(tracerName),
	}
}

// Transfer 執行一筆轉帳
//
// 參數:
//
//	ctx: 上下文 (只在扣款前有效，扣款成功後不再響應取消)
//	req: 轉帳請求
//
// 回傳:
//
//	domain.TransferReceipt: 成功時的回執
//	error: *domain.AccountNotFoundError / *domain.InsufficientBalanceError / 其他內部錯誤
func (u *TransferUseCase) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferReceipt, error) {
	ctx, span := u.tracer.Start(ctx, "usecase.Transfer",
		trace.WithAttributes(
			attribute.String("transfer.from", req.FromAccountID),
			attribute.String("transfer.to", req.ToAccountID),
			attribute.String("transfer.amount", req.Amount.String()),
		),
	)
	defer span.End()

	start := time.Now()
	receipt, err := u.transfer(ctx, req)
	telemetry.TransferDuration.Observe(time.Since(start).Seconds())

	result := transferResult(err)
	telemetry.TransfersTotal.WithLabelValues(result).Inc()
	span.SetAttributes(attribute.String("transfer.result", result))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		return domain.TransferReceipt{}, err
	}
	span.SetStatus(codes.Ok, "")

	// 兩筆異動都已套用，才發通知
	u.notify(ctx, req.FromAccountID, domain.DirectionDebited, req)
	u.notify(ctx, req.ToAccountID, domain.DirectionCredited, req)
	return receipt, nil
}

func (u *TransferUseCase) transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferReceipt, error) {
	if err := req.Validate(); err != nil {
		return domain.TransferReceipt{}, err
	}

	// 1. 確認雙方帳戶存在 (帳戶建立後不會被刪除)
	fromExists, err := u.exists(ctx, req.FromAccountID)
	if err != nil {
		return domain.TransferReceipt{}, err
	}
	toExists, err := u.exists(ctx, req.ToAccountID)
	if err != nil {
		return domain.TransferReceipt{}, err
	}
	if !fromExists || !toExists {
		return domain.TransferReceipt{}, &domain.AccountNotFoundError{
			FromAccountID: req.FromAccountID,
			ToAccountID:   req.ToAccountID,
		}
	}

	// 2. 扣款 (檢查餘額 + 扣除 在 Store 內是單一原子操作)
	if err := u.store.Debit(ctx, req.FromAccountID, req.Amount); err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientFunds):
			return domain.TransferReceipt{}, &domain.InsufficientBalanceError{AccountID: req.FromAccountID}
		case errors.Is(err, domain.ErrAccountNotFound):
			return domain.TransferReceipt{}, &domain.AccountNotFoundError{
				FromAccountID: req.FromAccountID,
				ToAccountID:   req.ToAccountID,
			}
		default:
			return domain.TransferReceipt{}, fmt.Errorf("debit account %s: %w", req.FromAccountID, err)
		}
	}

	// 3. 入帳，已扣款的交易一定要走完
	commitCtx := context.WithoutCancel(ctx)
	if err := u.store.Credit(commitCtx, req.ToAccountID, req.Amount); err != nil {
		return domain.TransferReceipt{}, u.compensate(commitCtx, req, err)
	}

	u.logger.Debug("transfer committed",
		zap.String("from", req.FromAccountID),
		zap.String("to", req.ToAccountID),
		zap.String("amount", domain.FormatAmount(req.Amount)),
	)
	return domain.TransferReceipt{
		ID:            uuid.Must(uuid.NewV7()),
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
	}, nil
}

// exists 帳戶不存在回傳 false, nil；其餘錯誤 (Store 關閉、ctx 取消) 往上拋
func (u *TransferUseCase) exists(ctx context.Context, accountID string) (bool, error) {
	_, err := u.store.Get(ctx, accountID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrAccountNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("get account %s: %w", accountID, err)
}

// compensate 入帳失敗時把款項退回扣款方
// 正常情況不可能走到這裡
func (u *TransferUseCase) compensate(ctx context.Context, req domain.TransferRequest, creditErr error) error {
	logger := u.logger.With(
		zap.String("from", req.FromAccountID),
		zap.String("to", req.ToAccountID),
		zap.String("amount", domain.FormatAmount(req.Amount)),
		zap.Error(creditErr),
	)
	if err := u.store.Credit(ctx, req.FromAccountID, req.Amount); err != nil {
		logger.Error("credit failed after debit and refund failed, funds are lost", zap.NamedError("refund_error", err))
	} else {
		logger.Error("credit failed after debit, debit refunded")
	}
	return fmt.Errorf("%w: credit account %s: %v", domain.ErrInconsistentState, req.ToAccountID, creditErr)
}

func (u *TransferUseCase) notify(ctx context.Context, accountID string, direction domain.Direction, req domain.TransferRequest) {
	account, err := u.store.Get(context.WithoutCancel(ctx), accountID)
	if err != nil {
		u.logger.Warn("failed to snapshot account for notification", zap.String("account", accountID), zap.Error(err))
		account = domain.Account{ID: accountID}
	}
	u.notifier.Notify(ctx, account, domain.TransferMessage(accountID, direction, req.Amount))
}

func transferResult(err error) string {
	switch {
	case err == nil:
		return telemetry.ResultSuccess
	case errors.Is(err, domain.ErrInconsistentState):
		return telemetry.ResultError
	case errors.Is(err, domain.ErrInsufficientBalance):
		return telemetry.ResultInsufficientBalance
	case errors.Is(err, domain.ErrAccountNotFound):
		return telemetry.ResultAccountNotFound
	case errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrAmountPrecision),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidAccountID):
		return telemetry.ResultInvalid
	default:
		return telemetry.ResultError
	}
}

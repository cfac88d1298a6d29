package grpc

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
	pb "github.com/JoeShih716/go-mem-transfer/proto"
)

// errorDomain errdetails.ErrorInfo 的 Domain
const errorDomain = "transfer.v1"

// ErrorInfo reasons
const (
	ReasonInsufficientBalance = "INSUFFICIENT_BALANCE"
	ReasonAccountNotFound     = "ACCOUNT_NOT_FOUND"
	ReasonDuplicateAccount    = "DUPLICATE_ACCOUNT"
)

type GrpcServer struct {
	pb.UnimplementedTransferServiceServer
	transfers *usecase.TransferUseCase
	accounts  *usecase.AccountUseCase
	logger    *zap.Logger
}

func NewGrpcServer(transfers *usecase.TransferUseCase, accounts *usecase.AccountUseCase, logger *zap.Logger) *GrpcServer {
	return &GrpcServer{
		transfers: transfers,
		accounts:  accounts,
		logger:    logger.Named("grpc"),
	}
}

func (s *GrpcServer) Transfer(ctx context.Context, req *pb.TransferRequest) (*pb.TransferResponse, error) {
	// 1. 金額解析
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	// 2. 執行轉帳
	receipt, err := s.transfers.Transfer(ctx, domain.TransferRequest{
		FromAccountID: req.FromAccountId,
		ToAccountID:   req.ToAccountId,
		Amount:        amount,
	})
	if err != nil {
		return nil, s.toStatus(err)
	}

	return &pb.TransferResponse{
		TransferId: receipt.ID.String(),
	}, nil
}

func (s *GrpcServer) CreateAccount(ctx context.Context, req *pb.CreateAccountRequest) (*pb.Account, error) {
	balance, err := parseAmount(req.Balance)
	if err != nil {
		return nil, err
	}

	account := domain.NewAccount(req.AccountId, balance)
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, s.toStatus(err)
	}
	return toAccount(account), nil
}

func (s *GrpcServer) GetAccount(ctx context.Context, req *pb.GetAccountRequest) (*pb.Account, error) {
	account, err := s.accounts.Get(ctx, req.AccountId)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return toAccount(account), nil
}

func toAccount(account domain.Account) *pb.Account {
	return &pb.Account{
		AccountId: account.ID,
		Balance:   domain.FormatAmount(account.Balance),
	}
}

func parseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, status.Error(codes.InvalidArgument, "amount is required")
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid amount %q", value)
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return decimal.Zero, status.Error(codes.InvalidArgument, err.Error())
	}
	return amount, nil
}

// toStatus 將 domain error 轉成 gRPC status
// 業務錯誤額外附上 errdetails.ErrorInfo 讓客戶端不必解析訊息字串
func (s *GrpcServer) toStatus(err error) error {
	var (
		notFound     *domain.AccountNotFoundError
		insufficient *domain.InsufficientBalanceError
		duplicate    *domain.DuplicateAccountError
	)
	switch {
	case errors.Is(err, domain.ErrInconsistentState):
		s.logger.Error("transfer left ledger inconsistent", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	case errors.As(err, &insufficient):
		return withInfo(codes.FailedPrecondition, err, ReasonInsufficientBalance, map[string]string{
			"account_id": insufficient.AccountID,
		})
	case errors.As(err, &notFound):
		return withInfo(codes.NotFound, err, ReasonAccountNotFound, map[string]string{
			"from_account_id": notFound.FromAccountID,
			"to_account_id":   notFound.ToAccountID,
		})
	case errors.As(err, &duplicate):
		return withInfo(codes.AlreadyExists, err, ReasonDuplicateAccount, map[string]string{
			"account_id": duplicate.AccountID,
		})
	case errors.Is(err, domain.ErrAccountNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrAmountPrecision),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidAccountID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

func withInfo(code codes.Code, err error, reason string, metadata map[string]string) error {
	st := status.New(code, err.Error())
	detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   errorDomain,
		Metadata: metadata,
	})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}

var _ pb.TransferServiceServer = (*GrpcServer)(nil)

package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-mem-transfer/internal/telemetry"
	pb "github.com/JoeShih716/go-mem-transfer/proto"
)

// UnaryServerInterceptor 記錄每個 RPC 的 metrics 與 debug log
func UnaryServerInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		telemetry.GRPCRequestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
		logger.Debug("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}

// NewServer 建立 grpc.Server 並註冊 TransferService
func NewServer(srv *GrpcServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(srv.logger)),
	}, opts...)
	s := grpc.NewServer(opts...)
	pb.RegisterTransferServiceServer(s, srv)
	return s
}

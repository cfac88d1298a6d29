package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc/reflection"

	grpc_adapter "github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/in/grpc"
	http_adapter "github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/in/http"
	memory_adapter "github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/out/mysql"
	notify_adapter "github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/out/notify"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-transfer/internal/config"
	"github.com/JoeShih716/go-mem-transfer/internal/telemetry"
	"github.com/JoeShih716/go-mem-transfer/pkg/logger"
	"github.com/JoeShih716/go-mem-transfer/pkg/mysql"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		// logger 還沒建立
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// 2. Tracing
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Environment, cfg.Tracing.Endpoint, log)
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}

	// 3. 帳戶儲存
	var (
		store      usecase.AccountStore
		closeStore = func() error { return nil }
	)
	switch cfg.Store.Kind {
	case config.StoreActor:
		actorStore := memory_adapter.NewActorStore(cfg.Store.QueueSize)
		actorStore.Start()
		store = actorStore
		closeStore = actorStore.Close
	default:
		memory_adapter.EnableLockDiagnostics(cfg.Store.DebugLocks)
		store = memory_adapter.NewMutexStore()
	}
	log.Info("account store ready", zap.String("kind", cfg.Store.Kind))

	accountUseCase := usecase.NewAccountUseCase(store, log)

	// 4. 載入初始帳戶
	if err := seed(ctx, cfg, accountUseCase, log); err != nil {
		log.Fatal("failed to seed accounts", zap.Error(err))
	}

	// 5. 通知
	var sender notify_adapter.Sender
	var natsConn *nats.Conn
	switch cfg.Notifier.Kind {
	case config.NotifierNATS:
		natsConn, err = notify_adapter.DialNATS(cfg.Notifier.NATS.URL, log)
		if err != nil {
			log.Fatal("failed to connect to nats", zap.Error(err))
		}
		sender = notify_adapter.NewNATSSender(natsConn, cfg.Notifier.NATS.Subject)
	default:
		sender = notify_adapter.NewLogSender(log)
	}
	dispatcher := notify_adapter.NewDispatcher(sender, cfg.Notifier.QueueSize, cfg.Notifier.Workers, log)

	transferUseCase := usecase.NewTransferUseCase(store, dispatcher, log)

	// 6. HTTP
	gin.SetMode(gin.ReleaseMode)
	router, err := http_adapter.NewRouter(http_adapter.NewHandler(transferUseCase, accountUseCase, log))
	if err != nil {
		log.Fatal("failed to build http router", zap.Error(err))
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("starting http server", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	// 7. gRPC
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", cfg.GRPC.Addr), zap.Error(err))
	}
	grpcServer := grpc_adapter.NewServer(grpc_adapter.NewGrpcServer(transferUseCase, accountUseCase, log))
	// 只能 list 服務名稱：TransferService 是手寫描述 + JSON codec，沒有 file descriptor 可供 describe
	reflection.Register(grpcServer)
	go func() {
		log.Info("starting grpc server", zap.String("addr", cfg.GRPC.Addr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("grpc server failed", zap.Error(err))
		}
	}()

	// 8. 獨立的 metrics port (選用)
	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("starting metrics server", zap.String("addr", cfg.Metrics.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 先停止接收請求，再清空通知佇列，最後關閉 store
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("metrics shutdown", zap.Error(err))
		}
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn("notification queue not fully drained", zap.Error(err))
	}
	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			log.Warn("nats drain", zap.Error(err))
		}
	}
	if err := closeStore(); err != nil {
		log.Error("close account store", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// seed 依設定來源載入初始帳戶，MySQL 只在啟動時讀取一次
func seed(ctx context.Context, cfg config.Config, accounts *usecase.AccountUseCase, log *zap.Logger) error {
	var loader usecase.AccountLoader
	switch cfg.Seed.Source {
	case config.SeedFromMySQL:
		dbClient, err := mysql.NewClient(cfg.MySQL, log)
		if err != nil {
			return err
		}
		defer dbClient.Close()
		log.Info("connected to mysql", zap.String("host", cfg.MySQL.Host))
		loader = mysql_adapter.NewAccountLoader(dbClient)
	default:
		loader = config.NewSeedLoader(cfg.Seed)
	}

	n, err := accounts.Seed(ctx, loader)
	if err != nil {
		return err
	}
	log.Info("loaded accounts", zap.Int("count", n), zap.String("source", cfg.Seed.Source))
	return nil
}

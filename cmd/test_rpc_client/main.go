package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcpool "github.com/JoeShih716/go-mem-transfer/pkg/grpc"
	pb "github.com/JoeShih716/go-mem-transfer/proto"
)

// requestIDInterceptor 每個請求帶上 x-request-id，方便在 server log 追蹤
func requestIDInterceptor(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", uuid.NewString())
	return invoker(ctx, method, req, reply, cc, opts...)
}

func main() {
	addr := flag.String("addr", "localhost:50051", "grpc server address")
	total := flag.Int("total", 100000, "total transfers")
	concurrency := flag.Int("concurrency", 500, "concurrent in-flight transfers")
	amount := flag.String("amount", "0.010", "amount per transfer")
	from := flag.String("from", "1", "first account")
	to := flag.String("to", "2", "second account")
	flag.Parse()

	pool := grpcpool.NewPool(
		grpcpool.WithInterceptor(requestIDInterceptor),
		grpcpool.WithContentSubtype(pb.CodecName),
	)
	defer pool.Close()

	conn, err := pool.GetConnection(*addr)
	if err != nil {
		log.Fatalf("did not connect: %v", err)
	}
	c := pb.NewTransferServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	before := balances(ctx, c, *from, *to)

	var (
		succeeded    atomic.Int64
		insufficient atomic.Int64
		failed       atomic.Int64
	)

	var wg sync.WaitGroup
	wg.Add(*total)
	sem := make(chan struct{}, *concurrency)
	startTime := time.Now()

	for i := 0; i < *total; i++ {
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			// 雙向轉帳，兩個帳戶的總額應維持不變
			src, dst := *from, *to
			if idx%2 == 1 {
				src, dst = dst, src
			}
			_, err := c.Transfer(ctx, &pb.TransferRequest{
				FromAccountId: src,
				ToAccountId:   dst,
				Amount:        *amount,
			})
			switch status.Code(err) {
			case codes.OK:
				succeeded.Add(1)
			case codes.FailedPrecondition:
				insufficient.Add(1)
			default:
				if failed.Add(1) == 1 {
					log.Printf("Transfer %d failed: %v", idx, err)
				}
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(startTime)

	after := balances(ctx, c, *from, *to)

	fmt.Printf("Completed %d requests in %v\n", *total, elapsed)
	fmt.Printf("TPS: %.2f\n", float64(*total)/elapsed.Seconds())
	fmt.Printf("succeeded=%d insufficient=%d failed=%d\n", succeeded.Load(), insufficient.Load(), failed.Load())
	fmt.Printf("balances before=%v after=%v\n", before, after)
}

func balances(ctx context.Context, c pb.TransferServiceClient, ids ...string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		account, err := c.GetAccount(ctx, &pb.GetAccountRequest{AccountId: id})
		if err != nil {
			log.Fatalf("get account %s: %v", id, err)
		}
		out[id] = account.Balance
	}
	return out
}

package node

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func dialNode(t *testing.T) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server, _ := Serve(lis, Limits{MaxSamples: 5000}, nil)
	t.Cleanup(server.Stop)

	conn, err := grpc.Dial("bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	client := NewClient(conn)
	client.Timeout = 5 * time.Second
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNodeServerRank(t *testing.T) {
	client := dialNode(t)
	ctx := context.Background()

	require.NoError(t, client.HealthCheck(ctx))

	res, err := client.Rank(ctx, Request{ID: "grpc", Method: "sample", Samples: ptr(3000), Seed: 9, Links: threePages})
	require.NoError(t, err)
	require.Equal(t, "grpc", res.ID)
	require.Equal(t, "sample", res.Method)
	require.Equal(t, 3000, res.Steps)
	require.InDelta(t, 1.0, res.Ranks["1.html"]+res.Ranks["2.html"]+res.Ranks["3.html"], 1e-6)
}

func TestNodeServerErrorCodes(t *testing.T) {
	client := dialNode(t)
	ctx := context.Background()

	_, err := client.Rank(ctx, Request{Links: map[string][]string{"a": {"b"}}})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Rank(ctx, Request{Damping: ptr(0.0), Links: threePages})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Rank(ctx, Request{Method: "sample", Samples: ptr(5001), Links: threePages})
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Rank(ctx, Request{Tolerance: ptr(1e-15), MaxSweeps: ptr(1), Links: threePages})
	require.Equal(t, codes.Aborted, status.Code(err))
}

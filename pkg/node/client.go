package node

import (
	"context"
	"time"

	"golang.org/x/xerrors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote Ranker service. Every call is bounded by Timeout.
type Client struct {
	Timeout time.Duration
	conn    *grpc.ClientConn
}

// NodeCall creates a client for the node at url. It has to be closed.
func NodeCall(url string) (*Client, error) {
	conn, err := grpc.Dial(
		url,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{Timeout: 30 * time.Second, conn: conn}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Rank sends req and waits for its ranks.
func (c *Client) Rank(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	in, err := req.Struct()
	if err != nil {
		return nil, xerrors.Errorf("encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err = c.conn.Invoke(ctx, rankMethod, in, out); err != nil {
		return nil, err
	}
	return ResponseFromStruct(out)
}

func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	return c.conn.Invoke(ctx, healthCheckMethod, &emptypb.Empty{}, &emptypb.Empty{})
}

package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
)

// Client bundles the RPC and WebSocket connections to a RENEC node.
type Client struct {
	RpcClient *rpc.Client
	WsClient  *ws.Client

	logger *zap.Logger
}

// NewClient connects to the given endpoints. The WebSocket connection is
// optional; pass an empty wsEndpoint to skip it.
func NewClient(ctx context.Context, endpoint, wsEndpoint string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		RpcClient: rpc.New(endpoint),
		logger:    logger,
	}
	if wsEndpoint != "" {
		wsClient, err := ws.Connect(ctx, wsEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to establish WebSocket connection: %w", err)
		}
		c.WsClient = wsClient
	}
	return c, nil
}

// Close terminates all client connections.
func (c *Client) Close() error {
	if c.WsClient != nil {
		c.WsClient.Close()
	}
	return nil
}

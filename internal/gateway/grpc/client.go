package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/gateway"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Client is the network EncryptionProvider used by the server process.
type Client struct {
	conn    *grpc.ClientConn
	token   string
	timeout time.Duration
}

var _ gateway.EncryptionProvider = (*Client)(nil)

// NewClient prepares a connection to the gateway at target. The connection
// is established lazily on the first call.
func NewClient(target, serviceToken string, timeout time.Duration, opts ...grpc.DialOption) (*Client, error) {
	c := &Client{token: serviceToken, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
		grpc.WithUnaryInterceptor(c.serviceTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	return c, nil
}

func withServiceToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.GatewayTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) serviceTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withServiceToken(ctx, c.token), method, req, reply, cc, opts...)
}

func (c *Client) Encrypt(ctx context.Context, plaintext []byte) (*gateway.EncryptedPayload, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out := new(EncryptResponse)
	if err := c.conn.Invoke(ctx, EncryptMethod, &EncryptRequest{Plaintext: plaintext}, out); err != nil {
		return nil, mapError(err)
	}

	return &gateway.EncryptedPayload{Ciphertext: out.Ciphertext, IV: out.IV, Tag: out.Tag}, nil
}

func (c *Client) Decrypt(ctx context.Context, payload *gateway.EncryptedPayload) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	in := &DecryptRequest{Ciphertext: payload.Ciphertext, IV: payload.IV, Tag: payload.Tag}
	out := new(DecryptResponse)
	if err := c.conn.Invoke(ctx, DecryptMethod, in, out); err != nil {
		return nil, mapError(err)
	}

	return out.Plaintext, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// mapError turns gateway statuses back into the error taxonomy.
func mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}

	switch st.Code() {
	case codes.InvalidArgument:
		return common.NewValidationError("content", st.Message())
	case codes.DataLoss:
		return common.ErrIntegrity
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("%w: gateway %s: %s", common.ErrServiceUnavailable, st.Code(), st.Message())
	}
}

package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/gateway"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

type Server struct {
	address  string
	provider gateway.EncryptionProvider
	token    []byte
	logger   logging.Logger
}

func NewServer(address string, provider gateway.EncryptionProvider, serviceToken string, l logging.Logger) *Server {
	return &Server{
		address:  address,
		provider: provider,
		token:    []byte(serviceToken),
		logger:   l.With("module", "gateway_server"),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.serviceTokenInterceptor))
	srv.RegisterService(&serviceDesc, s)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gateway server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gateway server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) Encrypt(ctx context.Context, req *EncryptRequest) (*EncryptResponse, error) {
	p, err := s.provider.Encrypt(ctx, req.Plaintext)
	common.WipeByteArray(req.Plaintext)
	if err != nil {
		return nil, s.toStatus(ctx, "encrypt", err)
	}

	return &EncryptResponse{Ciphertext: p.Ciphertext, IV: p.IV, Tag: p.Tag}, nil
}

func (s *Server) Decrypt(ctx context.Context, req *DecryptRequest) (*DecryptResponse, error) {
	plaintext, err := s.provider.Decrypt(ctx, &gateway.EncryptedPayload{
		Ciphertext: req.Ciphertext,
		IV:         req.IV,
		Tag:        req.Tag,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "decrypt", err)
	}

	return &DecryptResponse{Plaintext: plaintext}, nil
}

func (s *Server) toStatus(ctx context.Context, op string, err error) error {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Message)
	case errors.Is(err, common.ErrIntegrity):
		s.logger.Warn(ctx, "payload failed authentication", "op", op)
		return status.Error(codes.DataLoss, common.ErrIntegrity.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error(ctx, "gateway operation failed", "op", op, "error", err)
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

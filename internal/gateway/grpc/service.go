// Package grpc exposes the encryption gateway over gRPC and provides the
// matching client. Messages are JSON encoded through a registered codec,
// so no generated stubs are needed.
package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName   = "securevault.gateway.EncryptionGateway"
	EncryptMethod = "/" + ServiceName + "/Encrypt"
	DecryptMethod = "/" + ServiceName + "/Decrypt"
)

type EncryptRequest struct {
	Plaintext []byte `json:"plaintext"`
}

type EncryptResponse struct {
	Ciphertext []byte `json:"ciphertext"`
	IV         []byte `json:"iv"`
	Tag        []byte `json:"tag"`
}

type DecryptRequest struct {
	Ciphertext []byte `json:"ciphertext"`
	IV         []byte `json:"iv"`
	Tag        []byte `json:"tag"`
}

type DecryptResponse struct {
	Plaintext []byte `json:"plaintext"`
}

// EncryptionGatewayServer is implemented by *Server.
type EncryptionGatewayServer interface {
	Encrypt(ctx context.Context, req *EncryptRequest) (*EncryptResponse, error)
	Decrypt(ctx context.Context, req *DecryptRequest) (*DecryptResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EncryptionGatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Encrypt", Handler: encryptHandler},
		{MethodName: "Decrypt", Handler: decryptHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "securevault/gateway.json",
}

func encryptHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(EncryptRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EncryptionGatewayServer).Encrypt(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EncryptMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EncryptionGatewayServer).Encrypt(ctx, req.(*EncryptRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func decryptHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DecryptRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EncryptionGatewayServer).Decrypt(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DecryptMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EncryptionGatewayServer).Decrypt(ctx, req.(*DecryptRequest))
	}
	return interceptor(ctx, in, info, handler)
}

package common

// GatewayTokenHeaderName is the gRPC metadata key carrying the shared
// service token on calls to the encryption gateway.
const GatewayTokenHeaderName = "gateway_token"

// BearerScheme is the HTTP Authorization scheme for access tokens.
const BearerScheme = "bearer"

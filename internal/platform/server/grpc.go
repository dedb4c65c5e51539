package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

// RegistrationFunc registers a grpc service with the server.
type RegistrationFunc func(*grpc.Server)

// GRPCOptions selects the optional parts of the gRPC server.
type GRPCOptions struct {
	Reflection bool
	// Telemetry attaches the otel stats handler. Spans and metrics go to the global providers.
	Telemetry bool
}

// NewGRPCServer creates a gRPC server and registers the given services on it.
func NewGRPCServer(opts GRPCOptions, register ...RegistrationFunc) *grpc.Server {
	var serverOpts []grpc.ServerOption
	if opts.Telemetry {
		serverOpts = append(serverOpts, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}
	grpcServer := grpc.NewServer(serverOpts...)

	if opts.Reflection {
		reflection.Register(grpcServer)
	}
	for _, regFunc := range register {
		regFunc(grpcServer)
	}
	return grpcServer
}

// Package proto holds the gRPC contract of the short link service. Requests
// and responses are protobuf well-known types, so only service stubs are
// generated.
package proto

//go:generate protoc --go-grpc_out=. --go-grpc_opt=paths=source_relative shortlinks.proto

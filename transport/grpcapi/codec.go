package grpcapi

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// messageCodec marshals the plain request/response structs in this package
// as JSON rather than wire-format protobuf. No generated protoc-gen-go
// output backs these messages (see DESIGN.md for why), so rather than
// hand-maintain fragile, unverifiable descriptor-reflection code, the
// service is wired through grpc-go's pluggable encoding.Codec extension
// point instead. It is registered under the library's default codec name
// so Throttle works as a normal unary RPC without special client options.
type messageCodec struct{}

func (messageCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (messageCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (messageCodec) Name() string { return "proto" }

func init() {
	// Registering under "proto" replaces grpc-go's process-wide default
	// codec for every connection, not just this package's; acceptable here
	// since this binary never speaks wire-format protobuf (see DESIGN.md).
	encoding.RegisterCodec(messageCodec{})
}

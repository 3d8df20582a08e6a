package server

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the gRPC service exposing the adjustment engine.
const ServiceName = "babycare.cry.v1.CryContext"

// AdjustMethod is the full gRPC method name of Adjust.
const AdjustMethod = "/" + ServiceName + "/Adjust"

// #region service-desc
// CryContextServer is implemented by Server. Messages are google.protobuf.Struct.
type CryContextServer interface {
	Adjust(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the CryContext service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CryContextServer)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "Adjust",
		Handler:    adjustHandler,
	}},
	Metadata: "babycare/cry/v1/cry_context.proto",
}

func adjustHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CryContextServer).Adjust(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AdjustMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CryContextServer).Adjust(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Register attaches srv to a gRPC server.
func Register(s *grpc.Server, srv CryContextServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// #endregion service-desc

// #region struct-mapping
// toStruct maps any JSON-encodable value onto a Struct through protojson.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("map message: %w", err)
	}
	return out, nil
}

// fromStruct decodes a Struct into v through protojson.
func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("map message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}

// #endregion struct-mapping

// #region client
// Client calls a remote CryContext service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient binds a client to a connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Adjust sends one request and decodes the response.
func (c *Client) Adjust(ctx context.Context, req Request) (Response, error) {
	in, err := toStruct(req)
	if err != nil {
		return Response{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AdjustMethod, in, out); err != nil {
		return Response{}, fmt.Errorf("adjust rpc: %w", err)
	}
	var resp Response
	if err := fromStruct(out, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// #endregion client

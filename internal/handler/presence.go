package handler

import (
	"context"
	"fmt"

	"tagarena/internal/game"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	PresenceServiceName = "tagarena.Presence"

	listPlayersMethod = "/" + PresenceServiceName + "/ListPlayers"
	getPlayerMethod   = "/" + PresenceServiceName + "/GetPlayer"
)

// PresenceServer is a read-only view of the player store. Messages are
// protobuf well-known types carrying the same JSON shape the websocket uses.
type PresenceServer interface {
	ListPlayers(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetPlayer(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

var PresenceServiceDesc = grpc.ServiceDesc{
	ServiceName: PresenceServiceName,
	HandlerType: (*PresenceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListPlayers", Handler: listPlayersHandler},
		{MethodName: "GetPlayer", Handler: getPlayerHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "presence",
}

func listPlayersHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PresenceServer).ListPlayers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listPlayersMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PresenceServer).ListPlayers(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getPlayerHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PresenceServer).GetPlayer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getPlayerMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PresenceServer).GetPlayer(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type PresenceService struct {
	store *game.Store
}

func NewPresenceService(store *game.Store) *PresenceService {
	return &PresenceService{store: store}
}

func (s *PresenceService) ListPlayers(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	out := &structpb.ListValue{}
	for _, p := range s.store.All() {
		st, err := playerStruct(p)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode player %s: %v", p.ID, err)
		}
		out.Values = append(out.Values, structpb.NewStructValue(st))
	}
	return out, nil
}

func (s *PresenceService) GetPlayer(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	p, ok := s.store.Get(req.GetValue())
	if !ok {
		return nil, status.Errorf(codes.NotFound, "player %q not connected", req.GetValue())
	}
	st, err := playerStruct(p)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode player %s: %v", p.ID, err)
	}
	return st, nil
}

func playerStruct(p game.Player) (*structpb.Struct, error) {
	b, err := jsoniter.Marshal(p)
	if err != nil {
		return nil, err
	}
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("to struct: %w", err)
	}
	return st, nil
}

// NewGRPCServer registers the presence and standard health services.
func NewGRPCServer(store *game.Store) *grpc.Server {
	s := grpc.NewServer()
	s.RegisterService(&PresenceServiceDesc, NewPresenceService(store))

	hs := health.NewServer()
	hs.SetServingStatus(PresenceServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}

// PresenceClient calls a remote PresenceServer.
type PresenceClient struct {
	cc grpc.ClientConnInterface
}

func NewPresenceClient(cc grpc.ClientConnInterface) *PresenceClient {
	return &PresenceClient{cc: cc}
}

func (c *PresenceClient) ListPlayers(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listPlayersMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PresenceClient) GetPlayer(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getPlayerMethod, wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "user-service/internal/domain/user"
	"user-service/internal/usecase/user"
	pkgerrors "user-service/pkg/errors"
	"user-service/pkg/logger"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "user.v1.UserService"

// Full method names, usable with grpc.ClientConn.Invoke.
const (
	ListUsersMethod  = "/" + ServiceName + "/ListUsers"
	GetUserMethod    = "/" + ServiceName + "/GetUser"
	CreateUserMethod = "/" + ServiceName + "/CreateUser"
)

// UserServiceHandler is the server API of user.v1.UserService. Users travel as
// google.protobuf.Struct values with id, name and email fields.
type UserServiceHandler interface {
	ListUsers(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetUser(context.Context, *wrapperspb.Int64Value) (*structpb.Value, error)
	CreateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UserServiceServer implements the gRPC user service
type UserServiceServer struct {
	uc  user.Usecase
	log *zap.Logger
}

var _ UserServiceHandler = (*UserServiceServer)(nil)

// NewUserServiceServer creates a new gRPC user service server
func NewUserServiceServer(uc user.Usecase, log *zap.Logger) *UserServiceServer {
	return &UserServiceServer{uc: uc, log: log}
}

// Register adds the user service to s.
func Register(s grpc.ServiceRegistrar, srv UserServiceHandler) {
	s.RegisterService(&ServiceDesc, srv)
}

// ListUsers handles gRPC ListUsers request
func (s *UserServiceServer) ListUsers(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	users, err := s.uc.GetAllUsers(ctx)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("gRPC ListUsers failed", zap.Error(err))
		return nil, err
	}

	values := make([]*structpb.Value, 0, len(users))
	for i := range users {
		values = append(values, structpb.NewStructValue(toStruct(&users[i])))
	}
	return &structpb.ListValue{Values: values}, nil
}

// GetUser handles gRPC GetUser request. An absent user is a null value.
func (s *UserServiceServer) GetUser(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Value, error) {
	u, err := s.uc.GetUserByID(ctx, req.GetValue())
	if err != nil {
		logger.WithContext(ctx, s.log).Error("gRPC GetUser failed", zap.Int64("id", req.GetValue()), zap.Error(err))
		return nil, err
	}
	if u == nil {
		return structpb.NewNullValue(), nil
	}
	return structpb.NewStructValue(toStruct(u)), nil
}

// CreateUser handles gRPC CreateUser request
func (s *UserServiceServer) CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := stringField(req, "name")
	if err != nil {
		return nil, err
	}
	email, err := stringField(req, "email")
	if err != nil {
		return nil, err
	}

	u, err := s.uc.CreateUser(ctx, user.CreateUserRequest{Name: name, Email: email})
	if err != nil {
		logger.WithContext(ctx, s.log).Error("gRPC CreateUser failed", zap.Error(err))
		return nil, err
	}
	return toStruct(u), nil
}

func toStruct(u *domain.User) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":    structpb.NewNumberValue(float64(u.ID)),
		"name":  structpb.NewStringValue(u.Name),
		"email": structpb.NewStringValue(u.Email),
	}}
}

// stringField reads an optional string field. Missing and null are "".
func stringField(s *structpb.Struct, key string) (string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue, nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", pkgerrors.NewValidationError(key, "must be a string")
	}
}

func listUsersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserServiceHandler).ListUsers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListUsersMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UserServiceHandler).ListUsers(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserServiceHandler).GetUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetUserMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UserServiceHandler).GetUser(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func createUserHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UserServiceHandler).CreateUser(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CreateUserMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UserServiceHandler).CreateUser(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for user.v1.UserService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceHandler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListUsers", Handler: listUsersHandler},
		{MethodName: "GetUser", Handler: getUserHandler},
		{MethodName: "CreateUser", Handler: createUserHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "user/v1/user.proto",
}

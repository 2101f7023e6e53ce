package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

const AuthServiceName = "settleup.v1.AuthService"

const (
	AuthServiceRegisterProcedure = "/settleup.v1.AuthService/Register"
	AuthServiceLoginProcedure    = "/settleup.v1.AuthService/Login"

	AuthServiceGetCurrentMemberProcedure = "/settleup.v1.AuthService/GetCurrentMember"
)

// AuthServiceHandler is implemented by the account service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentMember(context.Context, *connect.Request[api.GetCurrentMemberRequest]) (*connect.Response[api.GetCurrentMemberResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceGetCurrentMemberProcedure, connect.NewUnaryHandler(AuthServiceGetCurrentMemberProcedure, svc.GetCurrentMember, opts...))
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient calls AuthService over HTTP.
type AuthServiceClient struct {
	register *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login    *connect.Client[api.LoginRequest, api.LoginResponse]
	current  *connect.Client[api.GetCurrentMemberRequest, api.GetCurrentMemberResponse]
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		register: newClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:    newClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		current:  newClient[api.GetCurrentMemberRequest, api.GetCurrentMemberResponse](httpClient, baseURL, AuthServiceGetCurrentMemberProcedure, opts),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentMember(ctx context.Context, req *connect.Request[api.GetCurrentMemberRequest]) (*connect.Response[api.GetCurrentMemberResponse], error) {
	return c.current.CallUnary(ctx, req)
}

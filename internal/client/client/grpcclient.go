package client

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	pb "github.com/dmitrijs2005/credkeeper/internal/api/credentialv1"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      pb.CredentialServiceClient

	mu          sync.Mutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewCredentialClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewCredentialServiceClient(conn)
	return nil
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Verify checks a secret and, on success, keeps the returned access token
// for later calls.
func (s *GRPCClient) Verify(ctx context.Context, credentialType, nameOrEmail, secret string) (*pb.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &pb.VerifyRequest{CredentialType: credentialType, NameOrEmail: nameOrEmail, Secret: secret}

	var trailer metadata.MD
	resp, err := s.client.Verify(ctx, req, grpc.Trailer(&trailer))
	if err != nil {
		return nil, s.mapError(err, trailer)
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.mu.Unlock()

	return resp.User, nil
}

func (s *GRPCClient) ChangePassword(ctx context.Context, userID string, oldPassword *string, newPassword string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &pb.ChangePasswordRequest{UserID: userID, OldPassword: oldPassword, NewPassword: newPassword}

	var trailer metadata.MD
	if _, err := s.client.ChangePassword(ctx, req, grpc.Trailer(&trailer)); err != nil {
		return s.mapError(err, trailer)
	}
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err, nil)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.ResourceExhausted:
		return &LockedError{RetryAfter: retryAfter(st, trailer)}
	case codes.Aborted:
		return ErrBusy
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// retryAfter prefers the RetryInfo detail and falls back to the trailer.
func retryAfter(st *status.Status, trailer metadata.MD) time.Duration {
	for _, d := range st.Details() {
		if ri, ok := d.(*errdetails.RetryInfo); ok && ri.GetRetryDelay() != nil {
			return ri.GetRetryDelay().AsDuration()
		}
	}
	if v := trailer.Get(common.RetryAfterHeaderName); len(v) > 0 {
		if secs, err := strconv.ParseInt(v[0], 10, 64); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

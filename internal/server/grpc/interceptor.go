package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/credkeeper/internal/api/credentialv1"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

const requestIDHeaderName = "x-request-id"

// protectedMethods require a valid access token.
var protectedMethods = map[string]struct{}{
	pb.CredentialService_ChangePassword_FullMethodName: {},
}

func userIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if _, ok := protectedMethods[info.FullMethod]; ok {

		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, userIDKey, userID)

	}

	return handler(ctx, req)
}

// requestLogInterceptor tags each call with a request id, echoed back in
// the response header, and logs its outcome.
func (s *GRPCServer) requestLogInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	requestID := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(requestIDHeaderName); len(values) > 0 {
			if _, err := uuid.Parse(values[0]); err == nil {
				requestID = values[0]
			}
		}
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeaderName, requestID))

	start := s.now()
	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "rpc",
		"request_id", requestID,
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", s.now().Sub(start),
	)

	return resp, err
}

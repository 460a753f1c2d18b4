package grpc

import (
	"context"
	"errors"
	"strconv"
	"time"

	pb "github.com/dmitrijs2005/credkeeper/internal/api/credentialv1"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/services"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

const authFailedMessage = "authentication failed"

func (s *GRPCServer) Verify(ctx context.Context, req *pb.VerifyRequest) (*pb.VerifyResponse, error) {

	credType := models.CredentialType(req.CredentialType)
	if credType == "" {
		credType = models.CredentialPassword
	}

	cred, err := s.credentials.Verify(ctx, credType, req.NameOrEmail, req.Secret)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	token, err := s.credentials.IssueAccessToken(cred.ID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.VerifyResponse{
		User: &pb.User{
			ID:          cred.ID,
			LoginName:   cred.LoginName,
			Email:       cred.Email,
			Active:      cred.Active,
			APIToken:    cred.APIToken,
			LastLoginAt: cred.LastLoginAt,
		},
		AccessToken: token,
	}, nil

}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *pb.ChangePasswordRequest) (*pb.ChangePasswordResponse, error) {

	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	if userID != req.UserID {
		return nil, status.Error(codes.PermissionDenied, "token does not belong to user")
	}

	if err := s.credentials.ChangePassword(ctx, req.UserID, req.OldPassword, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.ChangePasswordResponse{}, nil

}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {

	return &pb.PingResponse{Status: "OK"}, nil

}

// toStatus maps service errors onto gRPC statuses. Unknown users, inactive
// users and wrong secrets share one message.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var verr *services.ValidationError
	var locked *services.LockedError

	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.As(err, &locked):
		return lockedStatus(ctx, locked.RemainingSeconds())
	case errors.Is(err, common.ErrNotFoundOrInactive), errors.Is(err, common.ErrMismatch):
		return status.Error(codes.Unauthenticated, authFailedMessage)
	case errors.Is(err, common.ErrAttemptInProgress):
		return status.Error(codes.Aborted, common.ErrAttemptInProgress.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func lockedStatus(ctx context.Context, seconds int64) error {
	_ = grpc.SetTrailer(ctx, metadata.Pairs(common.RetryAfterHeaderName, strconv.FormatInt(seconds, 10)))

	st := status.New(codes.ResourceExhausted, common.ErrLocked.Error())
	detailed, err := st.WithDetails(&errdetails.RetryInfo{
		RetryDelay: durationpb.New(time.Duration(seconds) * time.Second),
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

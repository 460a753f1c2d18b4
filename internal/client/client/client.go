package client

import (
	"context"

	pb "github.com/dmitrijs2005/credkeeper/internal/api/credentialv1"
)

type Client interface {
	Close() error
	Verify(ctx context.Context, credentialType, nameOrEmail, secret string) (*pb.User, error)
	ChangePassword(ctx context.Context, userID string, oldPassword *string, newPassword string) error
	Ping(ctx context.Context) error
}

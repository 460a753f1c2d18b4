package credentialv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/mem"
)

func TestJSONCodecRegistered(t *testing.T) {
	c := encoding.GetCodecV2(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
	assert.IsType(t, jsonCodec{}, c)
}

func TestChangePasswordRequest_OmitsMissingOldPassword(t *testing.T) {
	c := encoding.GetCodecV2(CodecName)
	require.NotNil(t, c)

	b, err := c.Marshal(&ChangePasswordRequest{UserID: "u1", NewPassword: "n"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u1","new_password":"n"}`, string(b.Materialize()))

	var got ChangePasswordRequest
	in := mem.BufferSlice{mem.SliceBuffer(`{"user_id":"u1","old_password":"","new_password":"n"}`)}
	require.NoError(t, c.Unmarshal(in, &got))
	require.NotNil(t, got.OldPassword, "explicit empty old password is not the bootstrap form")
	assert.Equal(t, "", *got.OldPassword)
}

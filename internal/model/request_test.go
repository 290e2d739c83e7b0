package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignUpRequestValidate(t *testing.T) {
	t.Parallel()

	valid := SignUpRequest{Username: "alice", Email: "alice@x.com", Password: "pw123"}
	require.NoError(t, valid.Validate())

	cases := map[string]SignUpRequest{
		"missing username":  {Email: "alice@x.com", Password: "pw123"},
		"long username":     {Username: strings.Repeat("a", MaxUsernameLength+1), Email: "alice@x.com", Password: "pw123"},
		"missing email":     {Username: "alice", Password: "pw123"},
		"long email":        {Username: "alice", Email: strings.Repeat("e", MaxEmailLength+1), Password: "pw123"},
		"missing password":  {Username: "alice", Email: "alice@x.com"},
		"password too long": {Username: "alice", Email: "alice@x.com", Password: strings.Repeat("p", MaxPasswordLength+1)},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, req.Validate(), ErrInvalidInput)
		})
	}
}

func TestRequestLimitsCountCharacters(t *testing.T) {
	t.Parallel()

	username := strings.Repeat("ж", MaxUsernameLength)
	email := strings.Repeat("é", MaxEmailLength-len("@x.io")) + "@x.io"
	require.Greater(t, len(username), MaxUsernameLength)

	require.NoError(t, SignUpRequest{Username: username, Email: email, Password: "pw123"}.Validate())
	require.NoError(t, UpdateUserRequest{Email: &email}.Validate())

	tooLong := username + "ж"
	require.ErrorIs(t, SignUpRequest{Username: tooLong, Email: email, Password: "pw123"}.Validate(), ErrInvalidInput)

	// Passwords stay byte-limited: bcrypt only reads 72 bytes.
	password := strings.Repeat("ж", MaxPasswordLength/2+1)
	require.ErrorIs(t, SignUpRequest{Username: "alice", Email: "alice@x.com", Password: password}.Validate(), ErrInvalidInput)
}

func TestUpdateUserRequestValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, UpdateUserRequest{}.Validate(), ErrInvalidInput)

	empty := ""
	require.ErrorIs(t, UpdateUserRequest{Email: &empty}.Validate(), ErrInvalidInput)

	admin := true
	require.NoError(t, UpdateUserRequest{IsAdmin: &admin}.Validate())
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Inshorts/internal/api"
	"Inshorts/internal/models"
)

type fakeAPI struct {
	user        *models.User
	loginErr    error
	registerErr error
	logoutErr   error
	probeErr    error

	probes, logins, registers, logouts int
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (*models.AuthResponse, error) {
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.user = &models.User{Username: username, Roles: []string{"ROLE_USER"}}
	return &models.AuthResponse{Status: "success", Message: "Login successful"}, nil
}

func (f *fakeAPI) Register(_ context.Context, username, _, _ string) (*models.AuthResponse, error) {
	f.registers++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.AuthResponse{Status: "success", Username: username}, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.logouts++
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.user = nil
	return nil
}

func (f *fakeAPI) CurrentUser(context.Context) (*models.AuthResponse, error) {
	f.probes++
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	if f.user == nil {
		return nil, &api.Error{Kind: api.KindAuthentication, Status: http.StatusUnauthorized, Msg: "Not authenticated"}
	}
	return &models.AuthResponse{Status: "success", User: f.user}, nil
}

func TestProbeRunsOnce(t *testing.T) {
	f := &fakeAPI{user: &models.User{Username: "ana", Roles: []string{models.RoleAdmin}}}
	s := NewSession(f, nil)
	assert.True(t, s.Loading())
	assert.Nil(t, s.Principal())

	s.Probe(context.Background())
	s.Probe(context.Background())

	assert.Equal(t, 1, f.probes)
	assert.False(t, s.Loading())
	require.NotNil(t, s.Principal())
	assert.True(t, s.Principal().IsAdmin())
}

func TestProbeWithoutSessionIsNotAnError(t *testing.T) {
	f := &fakeAPI{}
	s := NewSession(f, nil)
	s.Probe(context.Background())

	assert.Nil(t, s.Principal())
	assert.False(t, s.Loading())
	assert.Empty(t, s.Err())

	f.probeErr = &api.Error{Kind: api.KindTransport, Msg: "error sending request"}
	s = NewSession(f, nil)
	s.Probe(context.Background())
	assert.Nil(t, s.Principal())
	assert.False(t, s.Loading())
}

func TestLogin(t *testing.T) {
	f := &fakeAPI{}
	s := NewSession(f, nil)

	require.NoError(t, s.Login(context.Background(), "ana", "pw"))
	require.NotNil(t, s.Principal())
	assert.Equal(t, "ana", s.Principal().Username)
	assert.False(t, s.Loading())
	assert.True(t, s.Snapshot().Probed)
}

func TestLoginRejected(t *testing.T) {
	f := &fakeAPI{loginErr: &api.Error{Kind: api.KindAuthentication, Status: http.StatusUnauthorized, Msg: "Invalid credentials"}}
	s := NewSession(f, nil)

	err := s.Login(context.Background(), "ana", "bad")
	require.Error(t, err)

	var authErr *Error
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, OpLogin, authErr.Op)
	assert.Equal(t, "Invalid credentials", authErr.Msg)
	assert.Equal(t, "Invalid credentials", s.Err())
	assert.Equal(t, api.KindAuthentication, api.KindOf(err))
	assert.Nil(t, s.Principal())
}

func TestLoginTransportFailureUsesGenericMessage(t *testing.T) {
	f := &fakeAPI{loginErr: &api.Error{Kind: api.KindTransport, Msg: "error sending request"}}
	s := NewSession(f, nil)

	err := s.Login(context.Background(), "ana", "pw")
	assert.Equal(t, "Failed to login", Message(err, "x"))
}

func TestRegisterChainsIntoLogin(t *testing.T) {
	f := &fakeAPI{}
	s := NewSession(f, nil)

	require.NoError(t, s.Register(context.Background(), "bob", "bob@example.com", "pw"))
	assert.Equal(t, 1, f.registers)
	assert.Equal(t, 1, f.logins)
	require.NotNil(t, s.Principal())
	assert.Equal(t, "bob", s.Principal().Username)
}

func TestRegisterFailureSkipsLogin(t *testing.T) {
	f := &fakeAPI{registerErr: &api.Error{Kind: api.KindValidation, Status: http.StatusBadRequest, Msg: "Username is already taken"}}
	s := NewSession(f, nil)

	err := s.Register(context.Background(), "bob", "bob@example.com", "pw")
	require.Error(t, err)
	assert.Equal(t, "Username is already taken", Message(err, ""))
	assert.Zero(t, f.logins)
	assert.Nil(t, s.Principal())
}

func TestLogoutClearsPrincipalEvenOnFailure(t *testing.T) {
	f := &fakeAPI{user: &models.User{Username: "ana"}}
	s := NewSession(f, nil)
	s.Probe(context.Background())
	require.NotNil(t, s.Principal())

	f.logoutErr = &api.Error{Kind: api.KindTransport, Msg: "error sending request"}
	err := s.Logout(context.Background())

	require.Error(t, err)
	assert.Nil(t, s.Principal())
	assert.Equal(t, "Failed to logout", s.Err())
	assert.False(t, s.Loading())
}

func TestLogoutSuccess(t *testing.T) {
	f := &fakeAPI{}
	s := NewSession(f, nil)
	require.NoError(t, s.Login(context.Background(), "ana", "pw"))

	require.NoError(t, s.Logout(context.Background()))
	assert.Nil(t, s.Principal())
	assert.Empty(t, s.Err())
}

func TestSnapshotRoundTrip(t *testing.T) {
	f := &fakeAPI{}
	s := NewSession(f, nil)
	require.NoError(t, s.Login(context.Background(), "ana", "pw"))

	restored := Restore(f, nil, s.Snapshot())
	assert.False(t, restored.Loading())
	assert.Equal(t, s.Principal(), restored.Principal())

	restored.Probe(context.Background())
	assert.Equal(t, 1, f.probes, "restored session is already probed")
}

func TestRevalidateDropsExpiredPrincipal(t *testing.T) {
	ana := &models.User{Username: "ana", Roles: []string{models.RoleAdmin}}
	f := &fakeAPI{}
	s := Restore(f, nil, Snapshot{Principal: ana, Probed: true})

	s.Revalidate(context.Background())
	assert.Nil(t, s.Principal())
	assert.True(t, s.Snapshot().Probed)
	assert.Equal(t, 1, f.probes)

	s.Revalidate(context.Background())
	assert.Equal(t, 1, f.probes)
}

func TestRevalidateKeepsPrincipalOnOutage(t *testing.T) {
	ana := &models.User{Username: "ana"}
	f := &fakeAPI{probeErr: &api.Error{Kind: api.KindTransport}}
	s := Restore(f, nil, Snapshot{Principal: ana, Probed: true})

	s.Revalidate(context.Background())
	assert.Equal(t, ana, s.Principal())
}

func TestRevalidateSkipsConfirmedPrincipal(t *testing.T) {
	f := &fakeAPI{user: &models.User{Username: "ana"}}
	s := NewSession(f, nil)
	s.Probe(context.Background())
	s.Revalidate(context.Background())
	assert.Equal(t, 1, f.probes)
}

func TestInvalidateForcesNewProbe(t *testing.T) {
	f := &fakeAPI{}
	s := Restore(f, nil, Snapshot{Principal: &models.User{Username: "ana"}, Probed: true})

	s.Invalidate()
	snap := s.Snapshot()
	assert.Nil(t, snap.Principal)
	assert.False(t, snap.Probed)

	next := Restore(f, nil, snap)
	assert.True(t, next.Loading())
	next.Probe(context.Background())
	assert.Equal(t, 1, f.probes)
	assert.Nil(t, next.Principal())
}

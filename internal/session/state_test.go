package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"quizmaster/internal/apiclient"
	"quizmaster/internal/quiz"
)

type fakeAuthAPI struct {
	registerErr error
	loginErr    error
	meErr       error
	logoutErr   error
	identity    quiz.Identity

	registered []string
	calls      []string
}

func (f *fakeAuthAPI) Register(_ context.Context, name, email, _ string) error {
	f.calls = append(f.calls, "register")
	f.registered = append(f.registered, name+"<"+email+">")
	return f.registerErr
}

func (f *fakeAuthAPI) Login(context.Context, string, string) error {
	f.calls = append(f.calls, "login")
	return f.loginErr
}

func (f *fakeAuthAPI) Me(context.Context) (quiz.Identity, error) {
	f.calls = append(f.calls, "me")
	if f.meErr != nil {
		return quiz.Identity{}, f.meErr
	}
	return f.identity, nil
}

func (f *fakeAuthAPI) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	return f.logoutErr
}

func loggedInState(t *testing.T, api *fakeAuthAPI, logger *zap.Logger) *State {
	t.Helper()
	state := New(api, logger)
	_, err := state.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	return state
}

func TestLoginStoresIdentity(t *testing.T) {
	api := &fakeAuthAPI{identity: quiz.Identity{ID: "u1", Name: "Ada", Role: quiz.RoleAdmin}}
	state := New(api, nil)

	identity, err := state.Login(context.Background(), " ada@example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ada", identity.Name)
	assert.Equal(t, []string{"login", "me"}, api.calls)

	stored, ok := state.Identity()
	require.True(t, ok)
	assert.Equal(t, identity, stored)
	assert.True(t, state.IsAdmin())
}

func TestLoginFailureLeavesIdentityUnset(t *testing.T) {
	api := &fakeAuthAPI{loginErr: &apiclient.RequestError{Status: 401, Body: `{"detail":"Incorrect email or password"}`}}
	state := New(api, nil)

	_, err := state.Login(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, 401, apiclient.StatusCode(err))
	assert.False(t, state.LoggedIn())
	assert.Equal(t, []string{"login"}, api.calls)
}

func TestLoginFailsWhenIdentityFetchFails(t *testing.T) {
	api := &fakeAuthAPI{meErr: &apiclient.RequestError{Status: 500, Body: "boom"}}
	state := New(api, nil)

	_, err := state.Login(context.Background(), "ada@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, 500, apiclient.StatusCode(err))

	_, ok := state.Identity()
	assert.False(t, ok)
	assert.Equal(t, []string{"login", "me"}, api.calls)
}

func TestFailedReloginClearsPreviousIdentity(t *testing.T) {
	api := &fakeAuthAPI{identity: quiz.Identity{ID: "u1", Name: "Ada", Role: quiz.RoleUser}}
	state := loggedInState(t, api, nil)

	api.meErr = errors.New("lost")
	_, err := state.Login(context.Background(), "grace@example.com", "secret")
	require.Error(t, err)
	assert.False(t, state.LoggedIn())
}

func TestLoginValidatesInput(t *testing.T) {
	api := &fakeAuthAPI{}
	state := New(api, nil)

	_, err := state.Login(context.Background(), " ", "secret")
	var validationErr *quiz.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, api.calls)
}

func TestLogoutClearsIdentityEvenOnTransportFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	api := &fakeAuthAPI{identity: quiz.Identity{ID: "u1", Name: "Ada", Role: quiz.RoleUser}}
	state := loggedInState(t, api, zap.New(core))

	api.logoutErr = &apiclient.TransportError{Message: "quiz service unavailable: dial tcp", Err: errors.New("dial tcp")}
	state.Logout(context.Background())

	_, ok := state.Identity()
	assert.False(t, ok)
	assert.False(t, state.IsAdmin())
	assert.Equal(t, 1, logs.FilterMessage("remote logout failed").Len())
}

func TestLogoutClearsIdentityOnSuccess(t *testing.T) {
	api := &fakeAuthAPI{identity: quiz.Identity{ID: "u1", Name: "Ada", Role: quiz.RoleUser}}
	state := loggedInState(t, api, nil)

	state.Logout(context.Background())
	assert.False(t, state.LoggedIn())
	assert.Equal(t, "logout", api.calls[len(api.calls)-1])
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	api := &fakeAuthAPI{}
	state := New(api, nil)

	require.NoError(t, state.Register(context.Background(), "Ada", "ada@example.com", "secret"))
	assert.Equal(t, []string{"Ada<ada@example.com>"}, api.registered)
	assert.False(t, state.LoggedIn())
}

func TestRegisterPropagatesServiceError(t *testing.T) {
	api := &fakeAuthAPI{registerErr: &apiclient.RequestError{Status: 400, Body: `{"detail":"Email already registered"}`}}
	state := New(api, nil)

	err := state.Register(context.Background(), "Ada", "ada@example.com", "secret")
	var requestErr *apiclient.RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, "Email already registered", requestErr.Detail())
}

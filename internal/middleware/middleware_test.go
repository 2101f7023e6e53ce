package middleware

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/models"
)

type ping struct{}

func callWithHeader(t *testing.T, interceptor connect.UnaryInterceptorFunc, header string) (string, error) {
	t.Helper()
	var seen string
	next := func(ctx context.Context, _ connect.AnyRequest) (connect.AnyResponse, error) {
		seen = GetMemberID(ctx)
		return connect.NewResponse(&ping{}), nil
	}
	req := connect.NewRequest(&ping{})
	if header != "" {
		req.Header().Set("Authorization", header)
	}
	_, err := interceptor(next)(context.Background(), req)
	return seen, err
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	token, err := jwtManager.Generate(&models.Member{ID: "m1", Email: "m1@example.com"})
	require.NoError(t, err)

	interceptor := RequireAuth(jwtManager)

	memberID, err := callWithHeader(t, interceptor, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "m1", memberID)

	for _, header := range []string{"", "Bearer", "Basic " + token, "Bearer not-a-token"} {
		_, err := callWithHeader(t, interceptor, header)
		require.Error(t, err, "header %q", header)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	token, err := jwtManager.Generate(&models.Member{ID: "m1"})
	require.NoError(t, err)

	interceptor := OptionalAuth(jwtManager)

	memberID, err := callWithHeader(t, interceptor, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "m1", memberID)

	memberID, err = callWithHeader(t, interceptor, "Bearer garbage")
	require.NoError(t, err)
	assert.Empty(t, memberID)
}

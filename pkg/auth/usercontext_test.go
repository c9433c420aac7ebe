package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovanda/go-service-kit/internal/testutil"
	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

func TestNewUserContext_JWT(t *testing.T) {
	t.Parallel()

	userID := uuid.NewString()
	cs := make(ClaimSet)
	cs.Set(ClaimUserID, userID)
	cs.Set(ClaimUserLogin, "alice")
	cs.Set(ClaimDisplayName, "Alice Liddell")
	cs.Set(ClaimAuthType, "Jwt")
	cs.Set(ClaimJTI, "abc")
	cs.Set(ClaimExp, "1767225600")
	cs.Add(ClaimRole, "Admin")
	cs.Add(ClaimPermissions, "orders.read")

	uc := NewUserContext(cs)

	assert.Equal(t, "alice", uc.Login)
	assert.Equal(t, "Alice Liddell", uc.DisplayName)
	assert.Equal(t, []string{"Admin"}, uc.Roles)
	assert.Equal(t, []string{"orders.read"}, uc.Permissions)
	assert.True(t, uc.IsJWTAuthenticated)
	assert.False(t, uc.IsAPIKeyAuthenticated)
	assert.False(t, uc.IsSystemCall)

	assert.Equal(t, MethodJWT, uc.Auth.Type)
	assert.Equal(t, "abc", uc.Auth.ID)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), uc.Auth.ExpireAt)

	id, err := uc.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, id.String())
}

func TestNewUserContext_AuthIDPrecedence(t *testing.T) {
	t.Parallel()

	apiKeyID := uuid.NewString()

	tests := []struct {
		name   string
		claims map[string]string
		want   string
	}{
		{
			name:   "jti wins",
			claims: map[string]string{ClaimJTI: "jti-1", ClaimAPIKeyID: apiKeyID, ClaimAuthID: "auth-1"},
			want:   "jti-1",
		},
		{
			name:   "api key id second",
			claims: map[string]string{ClaimAPIKeyID: apiKeyID, ClaimAuthID: "auth-1"},
			want:   apiKeyID,
		},
		{
			name:   "auth id third",
			claims: map[string]string{ClaimAuthID: "auth-1"},
			want:   "auth-1",
		},
		{
			name:   "none yields empty",
			claims: map[string]string{},
			want:   "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cs := make(ClaimSet)
			for name, value := range tt.claims {
				cs.Set(name, value)
			}
			assert.Equal(t, tt.want, NewUserContext(cs).Auth.ID)
		})
	}
}

func TestNewUserContext_ExpireAtPrecedence(t *testing.T) {
	t.Parallel()

	cs := make(ClaimSet)
	cs.Set(ClaimExp, "1767225600")
	cs.Set(ClaimAuthExp, "1767229200")
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), NewUserContext(cs).Auth.ExpireAt)

	cs = make(ClaimSet)
	cs.Set(ClaimAuthExp, "1767229200")
	assert.Equal(t, time.Unix(1767229200, 0).UTC(), NewUserContext(cs).Auth.ExpireAt)

	// Unparsable exp falls through to auth_exp.
	cs = make(ClaimSet)
	cs.Set(ClaimExp, "not-a-number")
	cs.Set(ClaimAuthExp, "1767229200")
	assert.Equal(t, time.Unix(1767229200, 0).UTC(), NewUserContext(cs).Auth.ExpireAt)

	assert.Equal(t, NeverExpires, NewUserContext(make(ClaimSet)).Auth.ExpireAt)
}

func TestUserContext_SystemCall(t *testing.T) {
	t.Parallel()

	uc := NewUserContext(systemClaimSet())

	assert.True(t, uc.IsSystemCall)
	assert.False(t, uc.IsJWTAuthenticated)
	assert.False(t, uc.IsAPIKeyAuthenticated)

	_, err := uc.UserID()
	testutil.RequireErrorCode(t, err, kiterr.CodeInternal)

	_, err = uc.PartnerID()
	testutil.RequireErrorCode(t, err, kiterr.CodeInternal)
}

func TestUserContext_UserIDErrors(t *testing.T) {
	t.Parallel()

	// Missing claim.
	uc := NewUserContext(make(ClaimSet))
	_, err := uc.UserID()
	testutil.RequireErrorCode(t, err, kiterr.CodeUnauthorized)

	// Malformed claim.
	cs := make(ClaimSet)
	cs.Set(ClaimUserID, "not-a-uuid")
	_, err = NewUserContext(cs).UserID()
	testutil.RequireErrorCode(t, err, kiterr.CodeUnauthorized)

	// Nil sentinel.
	cs = make(ClaimSet)
	cs.Set(ClaimUserID, uuid.Nil.String())
	_, err = NewUserContext(cs).UserID()
	testutil.RequireErrorCode(t, err, kiterr.CodeInternal)
}

func TestUserContext_PartnerID(t *testing.T) {
	t.Parallel()

	// Absent partner claim is not an error.
	cs := make(ClaimSet)
	cs.Set(ClaimUserID, uuid.NewString())
	id, err := NewUserContext(cs).PartnerID()
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	// Malformed partner claim.
	cs.Set(ClaimPartnerID, "not-a-uuid")
	_, err = NewUserContext(cs).PartnerID()
	testutil.RequireErrorCode(t, err, kiterr.CodeUnauthorized)

	// Valid partner claim.
	partnerID := uuid.New()
	cs.Set(ClaimPartnerID, partnerID.String())
	id, err = NewUserContext(cs).PartnerID()
	require.NoError(t, err)
	assert.Equal(t, partnerID, id)
}

func TestUserContext_APIKeyID(t *testing.T) {
	t.Parallel()

	uc := NewUserContext(make(ClaimSet))
	_, ok := uc.APIKeyID()
	assert.False(t, ok)

	cs := make(ClaimSet)
	cs.Set(ClaimAPIKeyID, "not-a-uuid")
	_, ok = NewUserContext(cs).APIKeyID()
	assert.False(t, ok)

	keyID := uuid.New()
	cs.Set(ClaimAPIKeyID, keyID.String())
	got, ok := NewUserContext(cs).APIKeyID()
	assert.True(t, ok)
	assert.Equal(t, keyID, got)
}

func TestUserContext_HasRole(t *testing.T) {
	t.Parallel()

	cs := make(ClaimSet)
	cs.Add(ClaimRole, "Admin")
	uc := NewUserContext(cs)

	assert.True(t, uc.HasRole("Admin"))
	assert.False(t, uc.HasRole("admin"))
	assert.False(t, uc.HasRole("User"))
}

func TestUserContext_ReadsAreStable(t *testing.T) {
	t.Parallel()

	cs := make(ClaimSet)
	cs.Set(ClaimUserID, uuid.NewString())
	uc := NewUserContext(cs)

	first, err1 := uc.UserID()
	second, err2 := uc.UserID()
	assert.Equal(t, first, second)
	assert.Equal(t, err1, err2)

	// Mutating the claim set after construction changes nothing.
	cs.Set(ClaimUserID, uuid.NewString())
	third, _ := uc.UserID()
	assert.Equal(t, first, third)
}

func TestContextPlumbing(t *testing.T) {
	t.Parallel()

	uc := NewUserContext(make(ClaimSet))
	ctx := ContextWithUser(context.Background(), uc)

	got, ok := UserFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, uc, got)

	assert.Same(t, uc, MustUserFromContext(ctx))

	_, ok = UserFromContext(context.Background())
	assert.False(t, ok)

	assert.Panics(t, func() {
		MustUserFromContext(context.Background())
	})
}

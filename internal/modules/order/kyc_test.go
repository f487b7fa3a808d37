package order

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carebridge/internal/modules/user"
	"carebridge/internal/types"
)

// The profile cache may hold a stale is_verified flag for up to its TTL.
// Gated transitions must read the store, while listing keeps using the cache.
func TestKYCReadsStoreBehindWarmCache(t *testing.T) {
	ctx := context.Background()
	nurse := user.User{ID: "n1", Role: user.RolePartner, Profession: "Nurse", IsVerified: true}
	profiles := user.NewMemoryStore(nurse)
	rdb, mock := redismock.NewClientMock()
	cached := user.NewCachedStore(profiles, rdb, 5*time.Minute)
	svc := NewService(NewMemoryStore(), cached, profiles, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	create := func() *Order {
		o, err := svc.Create(ctx, CreateCommand{
			PatientID:       "patient-1",
			PatientName:     "Ravi",
			PatientContact:  "+91 90000 00000",
			ServiceCategory: "Nursing",
		})
		require.NoError(t, err)
		return o
	}
	first, second := create(), create()

	_, err := svc.Accept(ctx, AcceptCommand{OrderID: first.ID, PartnerID: "n1"})
	require.NoError(t, err)

	verified, err := json.Marshal(&nurse)
	require.NoError(t, err)
	mock.ExpectGet("user:profile:n1").SetVal(string(verified))

	revoked := nurse
	revoked.IsVerified = false
	profiles.Put(revoked)

	_, err = svc.Accept(ctx, AcceptCommand{OrderID: second.ID, PartnerID: "n1"})
	assert.ErrorIs(t, err, ErrKYCRequired)
	_, err = svc.Decline(ctx, DeclineCommand{OrderID: first.ID, PartnerID: "n1"})
	assert.ErrorIs(t, err, ErrKYCRequired)

	// Routing is served from the cached profile.
	visible, err := svc.ListForPartner(ctx, "n1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []types.ID{first.ID, second.ID}, ids(visible))
	assert.NoError(t, mock.ExpectationsWereMet())

	// Approval applies on the next request, without waiting for the TTL.
	profiles.Put(nurse)
	_, err = svc.Accept(ctx, AcceptCommand{OrderID: second.ID, PartnerID: "n1"})
	assert.NoError(t, err)
}

func TestNewServiceDefaultsKYCToUsers(t *testing.T) {
	users := user.NewMemoryStore(user.User{ID: "u1", Role: user.RolePartner, Profession: "Nurse"})
	svc := NewService(NewMemoryStore(), users, nil, nil, nil)
	assert.ErrorIs(t, svc.requireKYC(context.Background(), "u1"), ErrKYCRequired)

	users.Put(user.User{ID: "u1", Role: user.RolePartner, Profession: "Nurse", IsVerified: true})
	assert.NoError(t, svc.requireKYC(context.Background(), "u1"))
}

package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_ListUsersNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	first := env.createUser(t, "a@x.com")
	second := env.createUser(t, "b@x.com")
	env.register(t, first)

	users, err := env.svc.Admin.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, second, users[0].ID)
	assert.Nil(t, users[0].Registration)
	assert.Equal(t, first, users[1].ID)
	require.NotNil(t, users[1].Registration)
	assert.Equal(t, "NSAT2026-0001", users[1].Registration.RollNo)
}

func TestAdmin_BulkSendSkipsUnregistered(t *testing.T) {
	env := newTestEnv(t)
	one := env.createUser(t, "a@x.com")
	two := env.createUser(t, "b@x.com")
	three := env.createUser(t, "c@x.com")
	env.register(t, one)
	env.register(t, three)

	result, err := env.svc.Admin.BulkSendAdmitCards(context.Background(), []int64{one, two, three, one, 99})
	require.NoError(t, err)
	assert.Equal(t, []int64{one, three}, result.Sent)
	assert.Equal(t, []int64{two, 99}, result.Skipped)
	assert.Empty(t, result.Failed)
	assert.Len(t, env.mailer.docs, 2)
}

func TestAdmin_BulkSendReportsDeliveryFailures(t *testing.T) {
	env := newTestEnv(t)
	one := env.createUser(t, "a@x.com")
	two := env.createUser(t, "b@x.com")
	env.register(t, one)
	env.register(t, two)
	env.mailer.failFor["b@x.com"] = true

	result, err := env.svc.Admin.BulkSendAdmitCards(context.Background(), []int64{one, two})
	require.NoError(t, err)
	assert.Equal(t, []int64{one}, result.Sent)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, []int64{two}, result.Failed)
}

func TestAdmin_SendAdmitCardMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Admin.SendAdmitCard(ctx, 7)
	assert.ErrorIs(t, err, ErrUserNotFound)

	id := env.createUser(t, testEmail)
	_, err = env.svc.Admin.SendAdmitCard(ctx, id)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)

	_, err = env.svc.Admin.AdmitCard(ctx, id)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestAdmin_DeleteUserCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.createUser(t, testEmail)
	env.register(t, id)

	require.NoError(t, env.svc.Admin.DeleteUser(ctx, id))

	_, err := env.svc.Registration.Get(ctx, id)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)

	err = env.svc.Admin.DeleteUser(ctx, id)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdmin_BulkDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	one := env.createUser(t, "a@x.com")
	two := env.createUser(t, "b@x.com")

	result, err := env.svc.Admin.BulkDeleteUsers(ctx, []int64{one, 42, two, one})
	require.NoError(t, err)
	assert.Equal(t, []int64{one, two}, result.Deleted)
	assert.Equal(t, []int64{42}, result.NotFound)

	users, err := env.svc.Admin.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"veganbite/internal/domain"
	"veganbite/internal/events"
	"veganbite/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var moderator = &domain.Admin{ID: 7, Name: "Mod", Role: domain.AdminRoleModerator}

func newModerationFixture() (*mockCustomerRepository, *recordingPublisher, *moderationService) {
	customers := newMockCustomerRepository()
	publisher := &recordingPublisher{}
	svc := NewModerationService(customers, publisher, zap.NewNop()).(*moderationService)
	return customers, publisher, svc
}

// Feature: veganbite, Property 5: Ban and suspend without a reason change nothing
// Validates: Requirements 4.5
func TestProperty_ModerationRequiresReason(t *testing.T) {
	properties := gopter.NewProperties(nil)

	blank := gen.IntRange(0, 6).Map(func(n int) string {
		return strings.Repeat(" \t\n", n)
	})

	properties.Property("blank reasons are rejected before the customer is read", prop.ForAll(
		func(reason string, days int) bool {
			customers, publisher, svc := newModerationFixture()
			ctx := context.Background()
			c := customers.add("target")

			_, banErr := svc.Ban(ctx, moderator, c.ID, reason)
			_, suspendErr := svc.Suspend(ctx, moderator, c.ID, days, reason)

			var banV, suspendV *ValidationError
			if !errors.As(banErr, &banV) || !errors.As(suspendErr, &suspendV) {
				return false
			}
			if _, ok := banV.Fields["reason"]; !ok {
				return false
			}
			if _, ok := suspendV.Fields["reason"]; !ok {
				return false
			}
			return customers.moderateN == 0 &&
				c.Status == domain.CustomerStatusActive &&
				c.StatusReason == nil &&
				len(publisher.types()) == 0
		},
		blank,
		gen.OneConstOf(1, 3, 7, 14, 30),
	))

	properties.TestingRun(t)
}

// Feature: veganbite, Property 7: Ban then unban clears reason and suspension
// Validates: Requirements 4.5
func TestProperty_BanThenUnbanRestoresActive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unban after ban or suspend leaves an active customer with no reason", prop.ForAll(
		func(reason string, suspend bool, days int) bool {
			customers, _, svc := newModerationFixture()
			ctx := context.Background()
			c := customers.add("target")

			var err error
			if suspend {
				_, err = svc.Suspend(ctx, moderator, c.ID, days, reason)
			} else {
				_, err = svc.Ban(ctx, moderator, c.ID, reason)
			}
			if err != nil {
				return false
			}

			managed, err := svc.Unban(ctx, moderator, c.ID)
			if err != nil {
				return false
			}
			return managed.Status == domain.CustomerStatusActive &&
				managed.StatusReason == nil &&
				managed.SuspendedUntil == nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.Bool(),
		gen.OneConstOf(1, 3, 7, 14, 30),
	))

	properties.TestingRun(t)
}

func TestSuspend_InvalidDuration(t *testing.T) {
	customers, _, svc := newModerationFixture()
	c := customers.add("target")

	_, err := svc.Suspend(context.Background(), moderator, c.ID, 5, "late payments")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "duration")
	assert.NotContains(t, verr.Fields, "reason")
	assert.Zero(t, customers.moderateN)
}

func TestSuspend_SetsUntil(t *testing.T) {
	customers, publisher, svc := newModerationFixture()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	c := customers.add("target")

	managed, err := svc.Suspend(context.Background(), moderator, c.ID, 7, "  off-topic spam  ")
	require.NoError(t, err)
	assert.Equal(t, domain.CustomerStatusSuspended, managed.Status)
	require.NotNil(t, managed.SuspendedUntil)
	assert.Equal(t, now.Add(7*24*time.Hour), *managed.SuspendedUntil)
	require.NotNil(t, managed.StatusReason)
	assert.Equal(t, "off-topic spam", *managed.StatusReason)
	assert.Equal(t, []string{events.CustomerStatusChanged}, publisher.types())
}

func TestModeration_Transitions(t *testing.T) {
	customers, _, svc := newModerationFixture()
	ctx := context.Background()
	now := time.Now()
	svc.now = func() time.Time { return now }
	c := customers.add("target")

	_, err := svc.Ban(ctx, moderator, c.ID, "abuse")
	require.NoError(t, err)

	_, err = svc.Ban(ctx, moderator, c.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Suspend(ctx, moderator, c.ID, 3, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Unban(ctx, moderator, c.ID)
	require.NoError(t, err)
	_, err = svc.Unban(ctx, moderator, c.ID)
	require.NoError(t, err, "unban is idempotent")

	_, err = svc.Suspend(ctx, moderator, c.ID, 1, "cool off")
	require.NoError(t, err)
	svc.now = func() time.Time { return now.Add(48 * time.Hour) }
	managed, err := svc.Ban(ctx, moderator, c.ID, "expired suspension counts as active")
	require.NoError(t, err)
	assert.Equal(t, domain.CustomerStatusBanned, managed.Status)
	assert.Nil(t, managed.SuspendedUntil)
}

func TestModeration_UnknownCustomerAndRoles(t *testing.T) {
	_, _, svc := newModerationFixture()
	ctx := context.Background()

	_, err := svc.Ban(ctx, moderator, 404, "nobody")
	assert.ErrorIs(t, err, repository.ErrCustomerNotFound)

	_, err = svc.Unban(ctx, nil, 1)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetCustomer(ctx, 404)
	assert.True(t, IsNotFound(err))
}

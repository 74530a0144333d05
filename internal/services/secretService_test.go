package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnset/internal/models"
)

// fakeSecretStore is an in-memory SecretRepository with the same
// overwrite-on-put semantics as the mongo-backed one.
type fakeSecretStore struct {
	mu       sync.Mutex
	entries  map[string]models.PendingSecret
	getCalls int
}

func newFakeSecretStore() *fakeSecretStore {
	return &fakeSecretStore{entries: make(map[string]models.PendingSecret)}
}

func storeKey(email, purpose string) string { return email + "|" + purpose }

func (f *fakeSecretStore) Put(ctx context.Context, email, purpose, secret string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.entries[storeKey(email, purpose)] = models.PendingSecret{
		Email:     email,
		Purpose:   purpose,
		Secret:    secret,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	return nil
}

func (f *fakeSecretStore) Get(ctx context.Context, email, purpose string) (*models.PendingSecret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	ps, ok := f.entries[storeKey(email, purpose)]
	if !ok {
		return nil, nil
	}
	return &ps, nil
}

func (f *fakeSecretStore) Delete(ctx context.Context, email, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, storeKey(email, purpose))
	return nil
}

func (f *fakeSecretStore) DeleteExpired(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, ps := range f.entries {
		if time.Now().After(ps.ExpiresAt) {
			delete(f.entries, k)
		}
	}
	return nil
}

func (f *fakeSecretStore) has(email, purpose string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[storeKey(email, purpose)]
	return ok
}

func (f *fakeSecretStore) secret(email, purpose string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[storeKey(email, purpose)].Secret
}

func (f *fakeSecretStore) expire(email, purpose string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ps := f.entries[storeKey(email, purpose)]
	ps.ExpiresAt = at
	f.entries[storeKey(email, purpose)] = ps
}

func TestIssueRegistrationOTP(t *testing.T) {
	store := newFakeSecretStore()
	svc := NewSecretService(store)

	code, err := svc.Issue(context.Background(), "a@x.com", models.SecretPurposeRegistration)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, code, store.secret("a@x.com", models.SecretPurposeRegistration))
}

func TestIssueResetToken(t *testing.T) {
	store := newFakeSecretStore()
	svc := NewSecretService(store)

	token, err := svc.Issue(context.Background(), "a@x.com", models.SecretPurposePasswordReset)
	require.NoError(t, err)
	assert.Len(t, token, 64)
}

func TestIssueUnknownPurpose(t *testing.T) {
	svc := NewSecretService(newFakeSecretStore())

	_, err := svc.Issue(context.Background(), "a@x.com", "mystery")
	assert.Error(t, err)
}

func TestVerifyUnknownIdentity(t *testing.T) {
	svc := NewSecretService(newFakeSecretStore())

	err := svc.Verify(context.Background(), "nobody@x.com", models.SecretPurposeRegistration, "123456")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestVerifyMismatch(t *testing.T) {
	store := newFakeSecretStore()
	svc := NewSecretService(store)

	_, err := svc.Issue(context.Background(), "a@x.com", models.SecretPurposeRegistration)
	require.NoError(t, err)

	err = svc.Verify(context.Background(), "a@x.com", models.SecretPurposeRegistration, "000000")
	assert.ErrorIs(t, err, ErrSecretMismatch)

	// A failed guess does not consume the entry.
	assert.True(t, store.has("a@x.com", models.SecretPurposeRegistration))
}

func TestVerifyExpiryBoundary(t *testing.T) {
	store := newFakeSecretStore()

	base := time.Now()
	svc := &secretService{secretRepo: store, now: func() time.Time { return base }}

	code, err := svc.Issue(context.Background(), "a@x.com", models.SecretPurposeRegistration)
	require.NoError(t, err)
	store.expire("a@x.com", models.SecretPurposeRegistration, base)

	// One tick before expiry the code is still good.
	svc.now = func() time.Time { return base.Add(-time.Millisecond) }
	require.NoError(t, svc.Verify(context.Background(), "a@x.com", models.SecretPurposeRegistration, code))

	// One tick after, it fails and the entry is cleaned up.
	svc.now = func() time.Time { return base.Add(time.Millisecond) }
	err = svc.Verify(context.Background(), "a@x.com", models.SecretPurposeRegistration, code)
	assert.ErrorIs(t, err, ErrSecretExpired)
	assert.False(t, store.has("a@x.com", models.SecretPurposeRegistration))

	// And a retry with the same code now reads as unknown.
	err = svc.Verify(context.Background(), "a@x.com", models.SecretPurposeRegistration, code)
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestOverwriteInvalidatesPriorSecret(t *testing.T) {
	store := newFakeSecretStore()
	svc := NewSecretService(store)
	ctx := context.Background()

	token1, err := svc.Issue(ctx, "b@x.com", models.SecretPurposePasswordReset)
	require.NoError(t, err)
	token2, err := svc.Issue(ctx, "b@x.com", models.SecretPurposePasswordReset)
	require.NoError(t, err)
	require.NotEqual(t, token1, token2)

	// The first token is dead even though its own TTL has not passed.
	err = svc.Verify(ctx, "b@x.com", models.SecretPurposePasswordReset, token1)
	assert.ErrorIs(t, err, ErrSecretMismatch)

	assert.NoError(t, svc.Verify(ctx, "b@x.com", models.SecretPurposePasswordReset, token2))
}

func TestConsumeIsSingleUse(t *testing.T) {
	store := newFakeSecretStore()
	svc := NewSecretService(store)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "a@x.com", models.SecretPurposeRegistration)
	require.NoError(t, err)

	require.NoError(t, svc.Verify(ctx, "a@x.com", models.SecretPurposeRegistration, code))
	require.NoError(t, svc.Consume(ctx, "a@x.com", models.SecretPurposeRegistration))

	err = svc.Verify(ctx, "a@x.com", models.SecretPurposeRegistration, code)
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestConsumeAbsentKeyIsIdempotent(t *testing.T) {
	svc := NewSecretService(newFakeSecretStore())

	assert.NoError(t, svc.Consume(context.Background(), "nobody@x.com", models.SecretPurposeRegistration))
}

func TestPurposesAreIndependent(t *testing.T) {
	store := newFakeSecretStore()
	svc := NewSecretService(store)
	ctx := context.Background()

	code, err := svc.Issue(ctx, "a@x.com", models.SecretPurposeRegistration)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, "a@x.com", models.SecretPurposePasswordReset)
	require.NoError(t, err)

	// A registration code is not a reset token.
	err = svc.Verify(ctx, "a@x.com", models.SecretPurposePasswordReset, code)
	assert.ErrorIs(t, err, ErrSecretMismatch)
	assert.NoError(t, svc.Verify(ctx, "a@x.com", models.SecretPurposeRegistration, code))
}

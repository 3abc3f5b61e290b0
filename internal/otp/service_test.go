// internal/otp/service_test.go
package otp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
)

// recordingProvider captures the codes a service hands to the SMS channel.
type recordingProvider struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (p *recordingProvider) SendCode(_ context.Context, _, _, code string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.codes = append(p.codes, code)
	return nil
}

func (p *recordingProvider) lastCode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.codes) == 0 {
		return ""
	}
	return p.codes[len(p.codes)-1]
}

func newTestService(t *testing.T) (*Service, *recordingProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	provider := &recordingProvider{}
	svc := NewService(NewRedisStore(client), provider, ServiceConfig{
		CodeTTL:        5 * time.Minute,
		ResendCooldown: 30 * time.Second,
	}, logger.NewTestLogger(t))
	return svc, provider, mr
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("+91 98765-43210")
	require.NoError(t, err)
	assert.Equal(t, "919876543210", got)

	_, err = NormalizePhone("12345")
	assert.Equal(t, stderrors.ErrCodeOTPPhoneInvalid, stderrors.CodeOf(err))

	_, err = NormalizePhone("1234567890123456")
	assert.Equal(t, stderrors.ErrCodeOTPPhoneInvalid, stderrors.CodeOf(err))
}

func TestSendAndVerify(t *testing.T) {
	svc, provider, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "9876543210"))
	code := provider.lastCode()
	require.Len(t, code, 6)

	require.NoError(t, svc.Verify(ctx, "9876543210", code))

	// The code is consumed on success.
	err := svc.Verify(ctx, "9876543210", code)
	assert.Equal(t, stderrors.ErrCodeOTPCodeExpired, stderrors.CodeOf(err))
}

func TestVerifyMismatchKeepsCode(t *testing.T) {
	svc, provider, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "9876543210"))
	code := provider.lastCode()

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err := svc.Verify(ctx, "9876543210", wrong)
	assert.Equal(t, stderrors.ErrCodeOTPCodeInvalid, stderrors.CodeOf(err))

	// The right code still works afterwards.
	require.NoError(t, svc.Verify(ctx, "9876543210", code))
}

func TestVerifyRejectsMalformedCode(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Verify(context.Background(), "9876543210", "12345")
	assert.Equal(t, stderrors.ErrCodeOTPCodeInvalid, stderrors.CodeOf(err))

	err = svc.Verify(context.Background(), "9876543210", "12345a")
	assert.Equal(t, stderrors.ErrCodeOTPCodeInvalid, stderrors.CodeOf(err))
}

func TestResendCooldown(t *testing.T) {
	svc, _, mr := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "9876543210"))

	err := svc.Send(ctx, "9876543210")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeOTPResendCooldown, stderrors.CodeOf(err))

	mr.FastForward(31 * time.Second)
	require.NoError(t, svc.Send(ctx, "9876543210"))
}

func TestResendReplacesCode(t *testing.T) {
	svc, provider, mr := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "9876543210"))
	first := provider.lastCode()

	mr.FastForward(31 * time.Second)
	require.NoError(t, svc.Send(ctx, "9876543210"))
	second := provider.lastCode()

	if first != second {
		err := svc.Verify(ctx, "9876543210", first)
		assert.Equal(t, stderrors.ErrCodeOTPCodeInvalid, stderrors.CodeOf(err))
	}
	require.NoError(t, svc.Verify(ctx, "9876543210", second))
}

func TestCodeExpires(t *testing.T) {
	svc, provider, mr := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "9876543210"))
	code := provider.lastCode()

	mr.FastForward(6 * time.Minute)

	err := svc.Verify(ctx, "9876543210", code)
	assert.Equal(t, stderrors.ErrCodeOTPCodeExpired, stderrors.CodeOf(err))
}

func TestSendFailClosedByDefault(t *testing.T) {
	svc, provider, _ := newTestService(t)
	provider.err = assert.AnError

	err := svc.Send(context.Background(), "9876543210")
	assert.Equal(t, stderrors.ErrCodeOTPSendFailed, stderrors.CodeOf(err))
}

func TestSendFailOpenWhenEnabled(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	provider := &recordingProvider{err: assert.AnError}
	svc := NewService(NewRedisStore(client), provider, ServiceConfig{
		FailOpen: true,
	}, logger.NewTestLogger(t))

	// Delivery failed but the code is stored, so the flow can continue.
	require.NoError(t, svc.Send(context.Background(), "9876543210"))

	stored, err := NewRedisStore(client).GetCode(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Len(t, stored, 6)
}

func TestFallbackChannel(t *testing.T) {
	svc, provider, _ := newTestService(t)
	provider.err = assert.AnError

	fallback := &recordingProvider{}
	svc.WithFallback(fallback)

	require.NoError(t, svc.Send(context.Background(), "9876543210"))
	assert.Len(t, fallback.lastCode(), 6)
}

func TestStoreFailureSurfaces(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectTTL(resendKeyPrefix + "9876543210").SetErr(assert.AnError)

	svc := NewService(NewRedisStore(client), &recordingProvider{}, ServiceConfig{}, logger.NewTestLogger(t))

	err := svc.Send(context.Background(), "9876543210")
	assert.Equal(t, stderrors.ErrCodeOTPStoreFailed, stderrors.CodeOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSMTP = errors.New("smtp: 421 service not available")

func fallar(cb *CircuitBreaker, veces int) {
	for i := 0; i < veces; i++ {
		_ = cb.Execute(func() error { return errSMTP })
	}
}

func TestCircuitBreaker_AbreTrasFallosConsecutivos(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute})

	fallar(cb, 2)
	assert.Equal(t, CBClosed, cb.State())

	fallar(cb, 1)
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_UnExitoReiniciaLaRacha(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute})

	fallar(cb, 2)
	require.NoError(t, cb.Execute(func() error { return nil }))
	fallar(cb, 2)
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_RechazaSinEjecutarMientrasAbierto(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: time.Minute})

	fallar(cb, 1)
	require.Equal(t, CBOpen, cb.State())

	ejecutado := false
	err := cb.Execute(func() error {
		ejecutado = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, ejecutado)
}

func TestCircuitBreaker_PruebaExitosaCierra(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: 10 * time.Millisecond})

	fallar(cb, 1)
	time.Sleep(15 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_PruebaFallidaReabre(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: 10 * time.Millisecond})

	fallar(cb, 1)
	time.Sleep(15 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	fallar(cb, 1)
	assert.Equal(t, CBOpen, cb.State())
}

package apperr

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("typed errors keep their kind through wrapping", func(t *testing.T) {
		err := fmt.Errorf("context: %w", Conflict("stock insuficiente"))
		assert.Equal(t, KindConflict, KindOf(err))
		assert.Equal(t, "stock insuficiente", Message(err))
	})

	t.Run("untyped errors are upstream failures", func(t *testing.T) {
		err := errors.New("connection refused")
		assert.Equal(t, KindUpstream, KindOf(err))
		assert.Equal(t, "Error en el servidor", Message(err))
	})

	t.Run("upstream hides the cause from the public message", func(t *testing.T) {
		err := Upstream("scylla insert", errors.New("timeout"))
		assert.Equal(t, "Error en el servidor", Message(err))
		assert.Contains(t, err.Error(), "timeout")
		assert.Contains(t, err.Error(), "scylla insert")
	})
}

func TestIsMatchesSentinels(t *testing.T) {
	sentinel := NotFound("Producto no encontrado")

	assert.True(t, errors.Is(NotFound("Producto no encontrado"), sentinel))
	assert.False(t, errors.Is(NotFound("Oferta no encontrada"), sentinel))
	assert.True(t, errors.Is(NotFound("Oferta no encontrada"), &Error{Kind: KindNotFound}))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", sentinel)))
}

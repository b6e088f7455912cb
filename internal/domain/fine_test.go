package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"library-backend/internal/domain"
)

func TestOverdueFineCents(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("On Time Is Free", func(t *testing.T) {
		assert.Equal(t, int32(0), domain.OverdueFineCents(due, due.Add(-time.Hour), 500))
		assert.Equal(t, int32(0), domain.OverdueFineCents(due, due, 500))
	})

	t.Run("Partial Day Rounds Up", func(t *testing.T) {
		assert.Equal(t, int32(500), domain.OverdueFineCents(due, due.Add(time.Minute), 500))
		assert.Equal(t, int32(1000), domain.OverdueFineCents(due, due.Add(25*time.Hour), 500))
	})

	t.Run("Exact Days", func(t *testing.T) {
		assert.Equal(t, int32(1500), domain.OverdueFineCents(due, due.Add(3*24*time.Hour), 500))
	})
}

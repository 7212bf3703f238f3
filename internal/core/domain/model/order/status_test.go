package order_test

import (
	"fmt"
	"testing"

	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	assert.Equal(t, 0, int(order.Unknown))
	assert.Equal(t, 1, int(order.Pending))
	assert.Equal(t, 2, int(order.Processing))
	assert.Equal(t, 3, int(order.Shipped))
	assert.Equal(t, 4, int(order.Completed))
	assert.Equal(t, 5, int(order.Cancelled))
}

func TestStatus_Validate(t *testing.T) {
	for _, status := range []order.Status{order.Pending, order.Processing, order.Shipped, order.Completed, order.Cancelled} {
		t.Run(fmt.Sprintf("should validate %s status", status), func(t *testing.T) {
			require.NoError(t, status.Validate())
		})
	}

	t.Run("should reject Unknown and out of range values", func(t *testing.T) {
		for _, status := range []order.Status{order.Unknown, order.Status(42), order.Status(-1)} {
			err := status.Validate()

			require.Error(t, err)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
			assert.Contains(t, err.Error(), "status is invalid")
		}
	})
}

func TestStatus_String(t *testing.T) {
	t.Run("should name every lifecycle status", func(t *testing.T) {
		names := map[order.Status]string{
			order.Pending:    "Pending",
			order.Processing: "Processing",
			order.Shipped:    "Shipped",
			order.Completed:  "Completed",
			order.Cancelled:  "Cancelled",
		}
		for status, name := range names {
			assert.Equal(t, name, status.String())
		}
	})

	t.Run("should print Unknown for invalid values", func(t *testing.T) {
		assert.Equal(t, "Unknown", order.Unknown.String())
		assert.Equal(t, "Unknown", order.Status(99).String())
	})
}

func TestStatus_IsFinal(t *testing.T) {
	assert.False(t, order.Pending.IsFinal())
	assert.False(t, order.Processing.IsFinal())
	assert.False(t, order.Shipped.IsFinal())
	assert.True(t, order.Completed.IsFinal())
	assert.True(t, order.Cancelled.IsFinal())
}

func TestStatus_Transitions(t *testing.T) {
	type move func(order.Status) (order.Status, error)

	moves := map[string]move{
		"process":  order.Status.Process,
		"ship":     order.Status.Ship,
		"complete": order.Status.Complete,
		"cancel":   order.Status.Cancel,
	}

	allowed := map[order.Status]map[string]order.Status{
		order.Pending:    {"process": order.Processing, "cancel": order.Cancelled},
		order.Processing: {"ship": order.Shipped, "cancel": order.Cancelled},
		order.Shipped:    {"complete": order.Completed},
		order.Completed:  {},
		order.Cancelled:  {},
		order.Unknown:    {},
	}

	for from, targets := range allowed {
		for name, fn := range moves {
			t.Run(fmt.Sprintf("%s from %s", name, from), func(t *testing.T) {
				next, err := fn(from)

				if want, ok := targets[name]; ok {
					require.NoError(t, err)
					assert.Equal(t, want, next)
					return
				}

				require.ErrorIs(t, err, order.ErrTransitionIsNotAllowed)
				assert.Equal(t, order.Unknown, next)
				assert.Contains(t, err.Error(), "cannot "+name)
			})
		}
	}
}

package rbac

import (
	"fmt"
	"time"

	"github.com/priceopt/priceopt/internal/auth"
)

// Action is one discrete operation from the closed permission vocabulary.
type Action string

const (
	ActionProductCreate Action = "product_create"
	ActionProductRead   Action = "product_read"
	ActionProductUpdate Action = "product_update"
	ActionProductDelete Action = "product_delete"
	ActionForecastView  Action = "forecast_view"
	ActionOptimizeView  Action = "optimize_view"
	ActionUserManage    Action = "user_manage"
)

// Actions lists every known action, in vocabulary order.
func Actions() []Action {
	return []Action{
		ActionProductCreate,
		ActionProductRead,
		ActionProductUpdate,
		ActionProductDelete,
		ActionForecastView,
		ActionOptimizeView,
		ActionUserManage,
	}
}

// ParseAction validates a raw action value against the closed set.
func ParseAction(raw string) (Action, error) {
	for _, a := range Actions() {
		if Action(raw) == a {
			return a, nil
		}
	}
	return "", fmt.Errorf("rbac: unknown action %q", raw)
}

// Grant records that a role may perform an action. Absence of a row means
// "not granted".
type Grant struct {
	Role      auth.Role `json:"role"`
	Action    Action    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

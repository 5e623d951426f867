package service

import (
	"context"

	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/pkg/logger"
)

// settingValuer reads the effective value of a setting
type settingValuer interface {
	Value(ctx context.Context, key string) (string, error)
}

// ApprovalGate decides whether a change must go through admin review
type ApprovalGate struct {
	settings settingValuer
}

// NewApprovalGate creates a new ApprovalGate
func NewApprovalGate(settings settingValuer) *ApprovalGate {
	return &ApprovalGate{settings: settings}
}

// IsGatingActive reports whether approval_workflow_enabled is "true".
// A read failure is logged and treated as off.
func (g *ApprovalGate) IsGatingActive(ctx context.Context) bool {
	v, err := g.settings.Value(ctx, SettingApprovalWorkflow)
	if err != nil {
		logger.GetLogger().Error().Err(err).Msg("read approval workflow setting")
		return false
	}
	return v == "true"
}

// RequiresApproval reports whether a change by role must be reviewed
func (g *ApprovalGate) RequiresApproval(ctx context.Context, role domain.Role) bool {
	if role == domain.RoleAdmin {
		return false
	}
	return g.IsGatingActive(ctx)
}

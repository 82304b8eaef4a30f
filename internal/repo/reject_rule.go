package repo

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/liveops-hq/backend/internal/model"
)

type RejectRule struct {
	db *bun.DB
}

func NewRejectRule(db *bun.DB) *RejectRule {
	return &RejectRule{db: db}
}

func (r *RejectRule) GetAllActiveRejectRules(ctx context.Context) ([]*model.RejectRule, error) {
	var rules []*model.RejectRule
	err := r.db.NewSelect().
		Model(&rules).
		Where("rr.active = TRUE").
		Order("rr.rule_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reject rules")
	}
	return rules, nil
}

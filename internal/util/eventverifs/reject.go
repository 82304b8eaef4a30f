// Package eventverifs quarantines ingested event records matching
// studio-configured reject rules, expressed as boolean expressions over the
// record's attributes.
package eventverifs

import (
	"context"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/liveops-hq/backend/internal/repo"
)

// EventFacts is the expression environment one rule evaluates against.
type EventFacts struct {
	GameID    string
	Branch    string
	EventID   string
	ClientID  string
	SessionID string
	Amount    float64
}

// Env is the map form handed to the expression VM, so rules address fields
// as e.g. `eventId == "crash" && branch != "live"`.
func (f EventFacts) Env() map[string]interface{} {
	return map[string]interface{}{
		"gameId":    f.GameID,
		"branch":    f.Branch,
		"eventId":   f.EventID,
		"clientId":  f.ClientID,
		"sessionId": f.SessionID,
		"amount":    f.Amount,
	}
}

type compiledRule struct {
	ruleID  int
	gameID  string
	program *vm.Program
}

type RejectChecker struct {
	rules []compiledRule
}

// NewRejectChecker loads and compiles the active reject rules once at worker
// startup. A rule that fails to compile is skipped with a log line rather
// than blocking ingestion.
func NewRejectChecker(ctx context.Context, rejectRuleRepo *repo.RejectRule) (*RejectChecker, error) {
	rules, err := rejectRuleRepo.GetAllActiveRejectRules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load reject rules")
	}

	checker := &RejectChecker{}
	for _, rule := range rules {
		program, err := expr.Compile(rule.Expr, expr.Env(EventFacts{}.Env()), expr.AsBool())
		if err != nil {
			log.Warn().Err(err).Int("ruleId", rule.RuleID).Msg("failed to compile reject rule, skipping")
			continue
		}
		checker.rules = append(checker.rules, compiledRule{
			ruleID:  rule.RuleID,
			gameID:  rule.GameID,
			program: program,
		})
	}
	return checker, nil
}

// ShouldReject reports whether any rule matches the record, and which one.
func (c *RejectChecker) ShouldReject(facts EventFacts) (bool, int) {
	for _, rule := range c.rules {
		if rule.gameID != "" && rule.gameID != facts.GameID {
			continue
		}
		out, err := expr.Run(rule.program, facts.Env())
		if err != nil {
			log.Warn().Err(err).Int("ruleId", rule.ruleID).Msg("failed to evaluate reject rule")
			continue
		}
		if matched, ok := out.(bool); ok && matched {
			return true, rule.ruleID
		}
	}
	return false, 0
}

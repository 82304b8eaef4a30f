package eventverifs

import (
	"testing"

	"github.com/antonmedv/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, rules map[int]struct {
	gameID string
	source string
}) *RejectChecker {
	t.Helper()
	checker := &RejectChecker{}
	for id, rule := range rules {
		program, err := expr.Compile(rule.source, expr.Env(EventFacts{}.Env()), expr.AsBool())
		require.NoError(t, err)
		checker.rules = append(checker.rules, compiledRule{
			ruleID:  id,
			gameID:  rule.gameID,
			program: program,
		})
	}
	return checker
}

func TestShouldRejectMatchesExpression(t *testing.T) {
	checker := newTestChecker(t, map[int]struct {
		gameID string
		source string
	}{
		1: {source: `eventId == "crash" && branch != "live"`},
	})

	rejected, ruleID := checker.ShouldReject(EventFacts{EventID: "crash", Branch: "staging"})
	assert.True(t, rejected)
	assert.Equal(t, 1, ruleID)

	rejected, _ = checker.ShouldReject(EventFacts{EventID: "crash", Branch: "live"})
	assert.False(t, rejected)

	rejected, _ = checker.ShouldReject(EventFacts{EventID: "session_start", Branch: "staging"})
	assert.False(t, rejected)
}

func TestShouldRejectScopesByGame(t *testing.T) {
	checker := newTestChecker(t, map[int]struct {
		gameID string
		source string
	}{
		7: {gameID: "g1", source: `amount > 10000`},
	})

	rejected, ruleID := checker.ShouldReject(EventFacts{GameID: "g1", Amount: 20000})
	assert.True(t, rejected)
	assert.Equal(t, 7, ruleID)

	// same payload under another game falls outside the rule's scope
	rejected, _ = checker.ShouldReject(EventFacts{GameID: "g2", Amount: 20000})
	assert.False(t, rejected)
}

func TestShouldRejectNoRules(t *testing.T) {
	checker := &RejectChecker{}
	rejected, ruleID := checker.ShouldReject(EventFacts{EventID: "crash"})
	assert.False(t, rejected)
	assert.Zero(t, ruleID)
}

package services

import (
	"context"
	"regexp"
	"strings"

	"app-fin-management/models"
	"app-fin-management/repositories"

	"github.com/sirupsen/logrus"
)

// Reason codes for an unclassified result.
const (
	ReasonNoRuleMatched = "NO_RULE_MATCHED"
	ReasonEmptyRuleSet  = "EMPTY_RULE_SET"
)

// ClassificationResult is the outcome of classifying one description.
type ClassificationResult struct {
	Matched   bool
	RuleID    uint
	AccountID uint
	Account   *models.Account
	Reason    string
}

// compiledRule is one rule with its match value uppercased and, for REGEX
// rules, the pattern compiled once.
type compiledRule struct {
	rule    models.TransactionMappingRule
	value   string
	pattern *regexp.Regexp
}

// RuleSet is an immutable, compiled snapshot of a company's active rules in
// evaluation order. It is pure and re-entrant: batch classification may call
// Classify from many goroutines at once.
type RuleSet struct {
	rules []compiledRule
}

// ClassificationService builds rule snapshots and classifies descriptions.
type ClassificationService struct {
	ruleRepo repositories.RuleRepository
}

func NewClassificationService(ruleRepo repositories.RuleRepository) *ClassificationService {
	return &ClassificationService{ruleRepo: ruleRepo}
}

// LoadRuleSet compiles the company's active rules. A rule whose regex fails
// to compile is marked inactive in the store and dropped from the snapshot
// with a warning; the load itself does not fail.
func (s *ClassificationService) LoadRuleSet(ctx context.Context, companyID uint) (*RuleSet, error) {
	rules, err := s.ruleRepo.ListActive(ctx, companyID)
	if err != nil {
		return nil, err
	}

	set := &RuleSet{rules: make([]compiledRule, 0, len(rules))}
	for _, rule := range rules {
		compiled := compiledRule{rule: rule, value: strings.ToUpper(strings.TrimSpace(rule.MatchValue))}
		if rule.MatchType == models.MatchTypeRegex {
			pattern, err := regexp.Compile("^(?:" + compiled.value + ")$")
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"rule_id": rule.ID,
					"rule":    rule.Name,
					"pattern": rule.MatchValue,
				}).Warn("invalid regex, rule deactivated")
				if derr := s.ruleRepo.Deactivate(ctx, rule.ID); derr != nil {
					logrus.WithError(derr).Warnf("failed to deactivate rule %d", rule.ID)
				}
				continue
			}
			compiled.pattern = pattern
		}
		set.rules = append(set.rules, compiled)
	}
	return set, nil
}

// Classify evaluates the ordered rule set against the description. The first
// matching rule wins; repeated calls with the same inputs always return the
// same account.
func (r *RuleSet) Classify(description string) ClassificationResult {
	if len(r.rules) == 0 {
		return ClassificationResult{Reason: ReasonEmptyRuleSet}
	}

	subject := strings.ToUpper(strings.TrimSpace(description))
	for _, c := range r.rules {
		if c.matches(subject) {
			return ClassificationResult{
				Matched:   true,
				RuleID:    c.rule.ID,
				AccountID: c.rule.AccountID,
				Account:   c.rule.Account,
			}
		}
	}
	return ClassificationResult{Reason: ReasonNoRuleMatched}
}

// Len reports the number of usable rules in the snapshot.
func (r *RuleSet) Len() int {
	return len(r.rules)
}

func (c *compiledRule) matches(subject string) bool {
	switch c.rule.MatchType {
	case models.MatchTypeContains:
		return strings.Contains(subject, c.value)
	case models.MatchTypeStartsWith:
		return strings.HasPrefix(subject, c.value)
	case models.MatchTypeEndsWith:
		return strings.HasSuffix(subject, c.value)
	case models.MatchTypeEquals:
		return subject == c.value
	case models.MatchTypeRegex:
		return c.pattern != nil && c.pattern.MatchString(subject)
	}
	return false
}

package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/mholloway/tally/internal/database/repository"
)

// CategorizerService assigns categories to uncategorized transactions by
// evaluating active rules in priority order and applying the first match.
// It never touches a transaction that already has a category, so it is
// idempotent and re-runnable at any time.
type CategorizerService struct {
	Transactions *repository.TransactionRepo
	Rules        *repository.RuleRepo
}

type CategorizeResult struct {
	Categorized  int
	StillFlagged int
}

// compiledRule pairs a rule with its regex, compiled once per run. A rule
// whose pattern fails to compile never matches; it must not block the rest
// of the run.
type compiledRule struct {
	repository.Rule
	re *regexp.Regexp
}

func (s *CategorizerService) Run(ctx context.Context) (CategorizeResult, error) {
	res := CategorizeResult{}

	active, err := s.Rules.ListActive(ctx)
	if err != nil {
		return res, err
	}
	rules := make([]compiledRule, 0, len(active))
	for _, r := range active {
		cr := compiledRule{Rule: r}
		if r.MatchType == "regex" {
			cr.re, _ = regexp.Compile(r.Pattern)
		}
		rules = append(rules, cr)
	}

	flagged, err := s.Transactions.ListUncategorized(ctx)
	if err != nil {
		return res, err
	}

	for _, t := range flagged {
		matched := false
		for _, r := range rules {
			if !ruleMatches(t.Description, r) {
				continue
			}
			if err := s.Transactions.Categorize(ctx, t.ID, r.CategoryID, r.Vendor); err != nil {
				return res, err
			}
			if err := s.Rules.IncrementHitCount(ctx, r.ID); err != nil {
				return res, err
			}
			res.Categorized++
			matched = true
			break
		}
		if !matched {
			res.StillFlagged++
		}
	}
	return res, nil
}

// ruleMatches applies one rule's pattern under its match type. contains and
// starts_with are case-insensitive; regex runs case-sensitive against the
// raw description.
func ruleMatches(description string, r compiledRule) bool {
	switch r.MatchType {
	case "contains":
		return strings.Contains(strings.ToUpper(description), strings.ToUpper(r.Pattern))
	case "starts_with":
		return strings.HasPrefix(strings.ToUpper(description), strings.ToUpper(r.Pattern))
	case "regex":
		return r.re != nil && r.re.MatchString(description)
	}
	return false
}

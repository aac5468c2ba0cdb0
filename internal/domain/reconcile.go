package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DeleteMarker is the literal suffix the oracle appends to a category name
// to request its deletion (e.g. "TransportDELETE: 0").
const DeleteMarker = "DELETE"

// ParsedCategory is one (name, amount) pair extracted from oracle text.
// Delete is set when the name carried the DELETE suffix; the suffix is
// already stripped from Name.
type ParsedCategory struct {
	Name   string
	Amount decimal.Decimal
	Delete bool
}

// ParseOracleResponse extracts category pairs from free oracle text. Each
// non-empty line is split on its first colon; the amount may carry a leading
// currency sign. Malformed lines are discarded. Returns ErrOracleUnparsable
// when no line parses.
func ParseOracleResponse(text string) ([]ParsedCategory, error) {
	var parsed []ParsedCategory
	for _, line := range strings.Split(text, "\n") {
		name, amountStr, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(amountStr), "$"))
		if err != nil {
			continue
		}
		pc := ParsedCategory{Name: name, Amount: amount}
		if strings.HasSuffix(name, DeleteMarker) {
			pc.Name = strings.TrimSpace(strings.TrimSuffix(name, DeleteMarker))
			pc.Delete = true
		}
		parsed = append(parsed, pc)
	}
	if len(parsed) == 0 {
		return nil, ErrOracleUnparsable
	}
	return parsed, nil
}

// SumParsed totals the amounts of non-delete pairs
func SumParsed(parsed []ParsedCategory) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range parsed {
		if p.Delete {
			continue
		}
		sum = sum.Add(p.Amount)
	}
	return sum
}

// CategoryUpsert is a pending category write. CategoryID nil means create.
type CategoryUpsert struct {
	CategoryID  *int32
	Name        string
	Amount      decimal.Decimal
	Description *string
}

// SavingsUpsert is a pending savings-goal write mirrored from a
// savings-named category. SavingsID nil means create. CategoryName names
// the mirrored category so the store can resolve the back-reference for
// categories created in the same plan.
type SavingsUpsert struct {
	SavingsID    *int32
	GoalName     string
	CategoryName string
	AmountSaved  decimal.Decimal
	Description  *string
	CategoryID   *int32
}

// SavingsDebit decrements a goal's amount_saved when its mirrored category
// is deleted. There is no floor at zero.
type SavingsDebit struct {
	SavingsID int32
	Amount    decimal.Decimal
}

// ReconcilePlan is the full set of writes produced by one reconciliation,
// applied atomically by the store.
type ReconcilePlan struct {
	BudgetID       int32
	Upserts        []CategoryUpsert
	Deletes        []*Category
	SavingsUpserts []SavingsUpsert
	SavingsDebits  []SavingsDebit
}

// PartitionParsed matches parsed pairs against the budget's existing live
// categories: delete pairs resolve to existing rows (unknown names are
// dropped), the rest become updates of matching rows or creations.
// Descriptions are left nil; the caller fills them in before applying.
func PartitionParsed(budgetID int32, existing []*Category, parsed []ParsedCategory) *ReconcilePlan {
	byName := make(map[string]*Category, len(existing))
	for _, cat := range existing {
		byName[cat.Name] = cat
	}

	plan := &ReconcilePlan{BudgetID: budgetID}
	for _, p := range parsed {
		if p.Delete {
			if cat, ok := byName[p.Name]; ok {
				plan.Deletes = append(plan.Deletes, cat)
			}
			continue
		}
		if cat, ok := byName[p.Name]; ok {
			id := cat.ID
			plan.Upserts = append(plan.Upserts, CategoryUpsert{
				CategoryID:  &id,
				Name:        p.Name,
				Amount:      p.Amount,
				Description: cat.Description,
			})
			continue
		}
		plan.Upserts = append(plan.Upserts, CategoryUpsert{
			Name:   p.Name,
			Amount: p.Amount,
		})
	}
	return plan
}

// ReconcileStore applies a whole plan in one transaction
type ReconcileStore interface {
	Apply(plan *ReconcilePlan) error
}

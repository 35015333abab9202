package categories

import "github.com/cleared-dev/hearth/internal/model"

// DefaultChart returns the starter category chart for a new household.
func DefaultChart() []model.Category {
	return []model.Category{
		{ID: "salary", Name: "Salary", Direction: model.DirectionIncome},
		{ID: "other-income", Name: "Other income", Direction: model.DirectionIncome},
		{ID: "housing", Name: "Housing", Direction: model.DirectionExpense},
		{ID: "rent", Name: "Rent", Direction: model.DirectionExpense, ParentID: "housing"},
		{ID: "utilities", Name: "Utilities", Direction: model.DirectionExpense, ParentID: "housing"},
		{ID: "groceries", Name: "Groceries", Direction: model.DirectionExpense},
		{ID: "transport", Name: "Transport", Direction: model.DirectionExpense},
		{ID: "insurance", Name: "Insurance", Direction: model.DirectionExpense},
		{ID: "subscriptions", Name: "Subscriptions", Direction: model.DirectionExpense},
		{ID: "uncategorized", Name: "Uncategorized", Direction: model.DirectionExpense},
		{ID: "savings", Name: "Savings transfer", Direction: model.DirectionTransfer},
	}
}

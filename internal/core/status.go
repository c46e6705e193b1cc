package core

// Window is the half-open date interval [Start, End) during which a budget
// limit applies.
type Window struct {
	Start Date
	End   Date
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start.Time) && d.Before(w.End.Time)
}

// BudgetStatus is the result of evaluating one budget at a reference date.
// It is always computed fresh from stored expenses; nothing here is ever
// persisted or cached.
type BudgetStatus struct {
	BudgetID  int64
	Active    bool   // false when the reference date precedes the budget start
	Window    Window // zero value while inactive
	Limit     Money
	Spent     Money
	Remaining Money // Limit - Spent, negative once overrun
	Overrun   bool  // spent strictly exceeds the limit
}

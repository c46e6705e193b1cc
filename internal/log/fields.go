package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldUserID      = "user_id"
	FieldCategoryID  = "category_id"
	FieldTagID       = "tag_id"
	FieldExpenseID   = "expense_id"
	FieldBudgetID    = "budget_id"
	FieldAmountCents = "amount_cents"
	FieldPeriod      = "period"
	FieldAsOf        = "as_of"
	FieldWindowStart = "window_start"
	FieldWindowEnd   = "window_end"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStorage  = "storage"
	ComponentUser     = "user"
	ComponentExpense  = "expense"
	ComponentTaxonomy = "taxonomy"
	ComponentBudget   = "budget"
	ComponentTrace    = "trace"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpEvaluate = "evaluate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

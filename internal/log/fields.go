package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldAccountID    = "account_id"
	FieldCategoryID   = "category_id"
	FieldExpenseID    = "expense_id"
	FieldPaycheckID   = "paycheck_id"
	FieldIncomeID     = "income_id"
	FieldGoalID       = "goal_id"
	FieldGoalType     = "goal_type"
	FieldName         = "name"
	FieldAmount       = "amount"
	FieldTargetType   = "target_type"
	FieldTargetID     = "target_id"
	FieldTargets      = "targets"
	FieldAllocationID = "allocation_id"
	FieldCategories   = "categories"
	FieldEntityType   = "entity_type"
	FieldEntityID     = "entity_id"
	FieldOldBalance   = "old_balance"
	FieldNewBalance   = "new_balance"
)

// Components defines standard component names
const (
	ComponentApp  = "app"
	ComponentHTTP = "http"
	ComponentAMQP = "amqp"
	ComponentCLI  = "cli"
)

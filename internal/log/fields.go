package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldUsername    = "username"
	FieldError       = "error"
	FieldTransaction = "transaction_id"
	FieldAccount     = "account_id"
	FieldGoal        = "goal_id"
	FieldAmountCents = "amount_cents"
	FieldAuthState   = "auth_state"
)

// Components defines standard component names
const (
	ComponentApp  = "app"
	ComponentAuth = "auth"
)

package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldPeriod    = "period"
	FieldKind      = "kind"
	FieldFormat    = "format"
	FieldPath      = "path"
	FieldCount     = "count"
	FieldTotal     = "total"
	FieldUserID    = "user_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentReport  = "report"
	ComponentRender  = "render"
	ComponentStorage = "storage"
)

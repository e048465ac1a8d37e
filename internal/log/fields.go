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
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldBank       = "bank"
	FieldFilename   = "filename"
	FieldSizeBytes  = "size_bytes"
	FieldTxnCount   = "transaction_count"
	FieldCacheKey   = "cache_key"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentParserAPI = "parser_api"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentTemplate  = "template"
)

// Operations defines standard operation names
const (
	OpParse    = "parse"
	OpUpload   = "upload"
	OpRender   = "render"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Configuration file could not be parsed",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},

	// ============================================
	// Feed Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryFeed,
		Message:  "Unsupported feed source",
		Detail:   "Feeds are read from a local path, file:// URL, s3://bucket/key or '-' for stdin.",
	},
	"E202": {
		Category: CategoryFeed,
		Message:  "Feed could not be read",
	},
	"E203": {
		Category: CategoryFeed,
		Message:  "Snapshot decode failed",
	},

	// ============================================
	// Inspect Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryInspect,
		Message:  "Unknown group",
	},
	"E302": {
		Category: CategoryInspect,
		Message:  "Invalid request body",
	},

	// ============================================
	// CLI Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryCLI,
		Message:  "Invalid command usage",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

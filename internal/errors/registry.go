package errors

import "slices"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No livecoll.json was found in the given directory.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid config JSON",
		Detail:   "The config file is not valid JSON or a field has the wrong type.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Duplicate collection name",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Unknown collection kind",
		Detail:   "Kinds are list, map, mapList, filter, mapMap, join, apply and sorted.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Unknown source collection",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Source kind mismatch",
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Unknown transform",
	},
	"E107": {
		Category: CategoryConfig,
		Message:  "Unknown predicate",
	},
	"E108": {
		Category: CategoryConfig,
		Message:  "Unknown comparator",
	},
	"E109": {
		Category: CategoryConfig,
		Message:  "Unknown applier",
	},
	"E110": {
		Category: CategoryConfig,
		Message:  "Invalid server setting",
	},
	"E111": {
		Category: CategoryConfig,
		Message:  "Invalid log setting",
	},
	"E112": {
		Category: CategoryConfig,
		Message:  "Missing collection field",
	},
	"E113": {
		Category: CategoryConfig,
		Message:  "Config write failed",
	},

	// ============================================
	// Pipeline Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryPipeline,
		Message:  "Unknown collection",
	},
	"E121": {
		Category: CategoryPipeline,
		Message:  "Invalid operation",
	},
	"E122": {
		Category: CategoryPipeline,
		Message:  "Operation not supported by collection",
		Detail:   "Only leaf list and map collections accept mutations; filter collections accept setFilter.",
	},
	"E123": {
		Category: CategoryPipeline,
		Message:  "Index out of range",
	},
	"E124": {
		Category: CategoryPipeline,
		Message:  "Key not found",
	},
	"E125": {
		Category: CategoryPipeline,
		Message:  "Key already present",
	},
	"E126": {
		Category: CategoryPipeline,
		Message:  "Script read failed",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Script file not found",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Server failed",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Output write failed",
	},

	// ============================================
	// Stream Protocol Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
	},
	"E161": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
	},
	"E162": {
		Category: CategoryProtocol,
		Message:  "Unauthorized",
		Detail:   "Operations require a valid bearer token.",
	},
	"E163": {
		Category: CategoryProtocol,
		Message:  "Client queue overflow",
		Detail:   "The client did not read events fast enough and was disconnected.",
	},
	"E164": {
		Category: CategoryProtocol,
		Message:  "Value cannot be encoded",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Package errors provides structured error handling for Ollama4Truth.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors (fatal, surfaced immediately)
//   - 2XX: Data errors (skipped per-source/per-line, build continues)
//   - 3XX: Cache errors (recoverable, trigger recomputation)
//   - 4XX: Retrieval errors (transient, degrade to empty evidence)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryData indicates corpus data errors.
	CategoryData Category = "DATA"
	// CategoryCache indicates embedding-cache errors.
	CategoryCache Category = "CACHE"
	// CategoryRetrieval indicates retrieval-time errors.
	CategoryRetrieval Category = "RETRIEVAL"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid      = "ERR_101_CONFIG_INVALID"
	ErrCodeUnknownMethod      = "ERR_102_UNKNOWN_RETRIEVAL_METHOD"
	ErrCodeUnknownMode        = "ERR_103_UNKNOWN_EVIDENCE_MODE"
	ErrCodeMissingCredentials = "ERR_104_MISSING_SEARCH_CREDENTIALS"

	// Data errors (200-299)
	ErrCodeCorpusSourceMissing = "ERR_201_CORPUS_SOURCE_MISSING"
	ErrCodeCorpusLineInvalid   = "ERR_202_CORPUS_LINE_INVALID"
	ErrCodeCorpusEmpty         = "ERR_203_CORPUS_EMPTY"

	// Cache errors (300-399)
	ErrCodeCacheMismatch = "ERR_301_CACHE_SHAPE_MISMATCH"
	ErrCodeCacheWrite    = "ERR_302_CACHE_WRITE_FAILED"

	// Retrieval errors (400-499)
	ErrCodeWebSearchFailed = "ERR_401_WEB_SEARCH_FAILED"
	ErrCodeEmbeddingFailed = "ERR_402_EMBEDDING_FAILED"
	ErrCodeSearchFailed    = "ERR_403_SEARCH_FAILED"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryData
	case '3':
		return CategoryCache
	case '4':
		return CategoryRetrieval
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryConfig:
		return SeverityFatal
	case CategoryData:
		if code == ErrCodeCorpusEmpty {
			return SeverityFatal
		}
		return SeverityWarning
	case CategoryCache, CategoryRetrieval:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRecoverableCode checks if an error code represents a locally recoverable
// fault (degrade or recompute rather than abort).
func isRecoverableCode(code string) bool {
	switch categoryFromCode(code) {
	case CategoryCache, CategoryRetrieval:
		return true
	case CategoryData:
		return code != ErrCodeCorpusEmpty
	default:
		return false
	}
}

package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *BinderError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *BinderError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Pipeline errors

func ScanFailed(dir string, cause error) *BinderError {
	return Wrap(cause, CategoryScan, SeverityFatal, "directory scan failed").
		WithContext("dir", dir)
}

func RenderFailed(src string, cause error) *BinderError {
	return Wrap(cause, CategoryRender, SeverityFatal, "document render failed").
		WithContext("source", src)
}

func FormatFailed(artifact string, cause error) *BinderError {
	return Wrap(cause, CategoryFormat, SeverityFatal, "page formatting failed").
		WithContext("artifact", artifact)
}

// MergeInputMissing is non-fatal: the merge skips the input with a warning.
func MergeInputMissing(path string) *BinderError {
	return New(CategoryMerge, SeverityWarning, "merge input missing").
		WithContext("path", path)
}

func MergeFailed(cause error) *BinderError {
	return Wrap(cause, CategoryMerge, SeverityFatal, "page stream merge failed")
}

// LinkTargetNotFound is non-fatal: the link is skipped with a warning.
func LinkTargetNotFound(text string, page int) *BinderError {
	return New(CategoryAnnotate, SeverityWarning, "link target text not found").
		WithContext("text", text).
		WithContext("page", page)
}

func AnnotateFailed(operation string, cause error) *BinderError {
	return Wrap(cause, CategoryAnnotate, SeverityFatal, "page annotation failed").
		WithContext("operation", operation)
}

func OutputWriteFailed(path string, cause error) *BinderError {
	return Wrap(cause, CategoryOutput, SeverityFatal, "output write failed").
		WithContext("path", path)
}

package models

// ResultStatus tags which variant of a ResultEntry is populated.
type ResultStatus string

const (
	// ResultSuccess indicates the entry carries a content payload.
	ResultSuccess ResultStatus = "success"
	// ResultError indicates the entry carries an error message.
	ResultError ResultStatus = "error"
)

// Valid returns true if the status is a known value.
func (s ResultStatus) Valid() bool {
	switch s {
	case ResultSuccess, ResultError:
		return true
	default:
		return false
	}
}

// ResultEntry is the outcome of one task invocation.
// Exactly one of Content or Error is meaningful, selected by Status.
type ResultEntry struct {
	// Status selects the populated variant.
	Status ResultStatus `json:"status"`
	// Content is the task output when Status is ResultSuccess.
	Content string `json:"content,omitempty"`
	// Error is the failure message when Status is ResultError.
	Error string `json:"error,omitempty"`
}

// Success builds a success entry.
func Success(content string) ResultEntry {
	return ResultEntry{Status: ResultSuccess, Content: content}
}

// Failure builds a failure entry.
func Failure(message string) ResultEntry {
	return ResultEntry{Status: ResultError, Error: message}
}

// OK reports whether the entry is a success.
func (e ResultEntry) OK() bool {
	return e.Status == ResultSuccess
}

// Valid reports whether exactly one variant is populated.
// A success with empty content is still valid; a failure must carry a message.
func (e ResultEntry) Valid() bool {
	switch e.Status {
	case ResultSuccess:
		return e.Error == ""
	case ResultError:
		return e.Content == "" && e.Error != ""
	default:
		return false
	}
}

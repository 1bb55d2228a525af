package constants

// FileStatus is the canonical outcome of processing one source file.
type FileStatus string

// Stable values (these exact strings appear in run summaries and logs).
const (
	FileStatusOK      FileStatus = "OK"      // extracted at least one record
	FileStatusEmpty   FileStatus = "EMPTY"   // processed cleanly, zero records
	FileStatusFailed  FileStatus = "FAILED"  // extraction or I/O error, file skipped
	FileStatusSkipped FileStatus = "SKIPPED" // duplicate content, not processed
)

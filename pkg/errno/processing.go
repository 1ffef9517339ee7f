package errno

import "fmt"

// ProcessingReason 远端任务的失败原因
type ProcessingReason string

const (
	TaskTimeout   ProcessingReason = "task_timeout"
	TaskNotFound  ProcessingReason = "task_not_found"
	TaskFailed    ProcessingReason = "task_failed"
	TaskCancelled ProcessingReason = "task_cancelled"
)

// ProcessingError means the remote task failed, timed out or was not found.
type ProcessingError struct {
	Reason ProcessingReason
	Err    error
}

func (e *ProcessingError) Error() string {
	switch e.Reason {
	case TaskTimeout:
		return "Action processing timed out"
	case TaskNotFound:
		return "Action task was not found"
	case TaskCancelled:
		return "Action was cancelled by the wallet"
	default:
		if e.Err != nil {
			return fmt.Sprintf("Action processing failed: %v", e.Err)
		}
		return "Action processing failed"
	}
}

func (e *ProcessingError) Unwrap() error { return e.Err }

func (e *ProcessingError) Errno() Errno {
	return Errno{Code: 20500, Message: e.Error()}
}

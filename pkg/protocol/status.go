package protocol

// TaskStatus 远端任务状态。旧协议暴露全部中间态，
// 当前的 submit-and-wait 流程只会落在终态上。
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusValidating TaskStatus = "validating"
	StatusProcessing TaskStatus = "processing"
	StatusSigning    TaskStatus = "signing"
	StatusSubmitting TaskStatus = "submitting"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
	StatusCancelled  TaskStatus = "cancelled"

	// StatusUnknown 协议漂移兜底: 远端给出无法识别的状态时返回它,
	// 而不是默认猜一个
	StatusUnknown TaskStatus = "unknown"
)

var knownStatuses = map[string]TaskStatus{
	"pending":    StatusPending,
	"validating": StatusValidating,
	"processing": StatusProcessing,
	"signing":    StatusSigning,
	"submitting": StatusSubmitting,
	"completed":  StatusCompleted,
	"failed":     StatusFailed,
	"cancelled":  StatusCancelled,
}

// ParseTaskStatus maps a raw status string from the remote service into the
// closed enum. Total: every input maps to exactly one status, unmapped
// strings yield StatusUnknown.
func ParseTaskStatus(raw string) TaskStatus {
	if s, ok := knownStatuses[raw]; ok {
		return s
	}
	return StatusUnknown
}

// Terminal reports whether the task will make no further progress.
func (s TaskStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

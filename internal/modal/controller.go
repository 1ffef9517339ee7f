package modal

import (
	"context"
	"errors"
	"sync"

	"bridge-core/pkg/errno"
)

// Screen 模态框当前画面
type Screen string

const (
	ScreenInput   Screen = "input"
	ScreenLoading Screen = "loading"
	ScreenError   Screen = "error"
	ScreenSuccess Screen = "success"
)

// CloseReason 关闭来源
type CloseReason string

const (
	ReasonCloseButton CloseReason = "close"
	ReasonEscape      CloseReason = "escape"
	ReasonReset       CloseReason = "reset"
)

// CloseError is the structured cancellation signal. The orchestrator detects
// it with errors.As and treats it as a clean disconnect, never by matching
// message text.
type CloseError struct {
	Reason CloseReason
}

func (e *CloseError) Error() string {
	return "modal closed by user (" + string(e.Reason) + ")"
}

// IsClosed reports whether err is a user-close rejection.
func IsClosed(err error) bool {
	var closeErr *CloseError
	return errors.As(err, &closeErr)
}

// wait 单个逻辑等待槽。done 关闭后 code/err 不再变化。
type wait struct {
	done chan struct{}
	code string
	err  error
}

// Controller coordinates the UI screens with the orchestration logic
// awaiting user input. Exactly one outstanding code-wait may exist at a
// time: a second Show while one is pending joins the same wait, so a
// resolution is never lost or duplicated.
type Controller struct {
	mu      sync.Mutex
	screen  Screen
	visible bool
	pending *wait

	loadingMessage string
	successResult  string
	errTitle       string
	errMessage     string
	errHint        string
}

func NewController() *Controller {
	return &Controller{screen: ScreenInput}
}

// Show makes the modal visible and suspends until the user submits a code,
// the modal is closed, or ctx is cancelled. If a wait is already pending
// the caller joins it instead of arming a second one.
func (c *Controller) Show(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.pending == nil {
		c.pending = &wait{done: make(chan struct{})}
		// 错误画面上重新 Show 只恢复可见性, 不重置画面
		if c.screen != ScreenError {
			c.screen = ScreenInput
		}
	}
	c.visible = true
	w := c.pending
	c.mu.Unlock()

	select {
	case <-w.done:
		return w.code, w.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// SubmitCode resolves the pending wait. Without a waiter it is a no-op.
func (c *Controller) SubmitCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return
	}
	w := c.pending
	c.pending = nil
	w.code = code
	close(w.done)
}

// Retry switches back to the input screen without touching the pending
// wait. The same in-flight wait stays armed for the next submission; this
// is the one sanctioned transition that does not complete the suspension.
func (c *Controller) Retry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = ScreenInput
	c.visible = true
	c.errTitle, c.errMessage, c.errHint = "", "", ""
}

// Close rejects the pending wait with a structured CloseError and resets to
// the input screen.
func (c *Controller) Close(reason CloseReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		w := c.pending
		c.pending = nil
		w.err = &CloseError{Reason: reason}
		close(w.done)
	}
	c.screen = ScreenInput
	c.visible = false
	c.loadingMessage, c.successResult = "", ""
	c.errTitle, c.errMessage, c.errHint = "", "", ""
}

// ShowLoading 切换到加载画面, 不影响等待槽
func (c *Controller) ShowLoading(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = ScreenLoading
	c.visible = true
	c.loadingMessage = message
}

// ShowError 切换到错误画面, 不影响等待槽
func (c *Controller) ShowError(err error, title string) {
	d := errno.Normalize(err)
	if title != "" {
		d.Title = title
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = ScreenError
	c.visible = true
	c.errTitle = d.Title
	c.errMessage = d.Message
	c.errHint = d.Hint
}

// ShowSuccess 切换到成功画面, 不影响等待槽
func (c *Controller) ShowSuccess(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = ScreenSuccess
	c.visible = true
	c.successResult = result
}

// State 当前状态快照, 供展示层查询
type State struct {
	Screen         Screen `json:"screen"`
	Visible        bool   `json:"visible"`
	AwaitingCode   bool   `json:"awaiting_code"`
	LoadingMessage string `json:"loading_message,omitempty"`
	SuccessResult  string `json:"success_result,omitempty"`
	ErrorTitle     string `json:"error_title,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	ErrorHint      string `json:"error_hint,omitempty"`
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Screen:         c.screen,
		Visible:        c.visible,
		AwaitingCode:   c.pending != nil,
		LoadingMessage: c.loadingMessage,
		SuccessResult:  c.successResult,
		ErrorTitle:     c.errTitle,
		ErrorMessage:   c.errMessage,
		ErrorHint:      c.errHint,
	}
}

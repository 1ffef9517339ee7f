package handler

import (
	"bridge-core/internal/handler/request"
	"bridge-core/internal/handler/response"
	"bridge-core/internal/modal"
	"bridge-core/pkg/errno"

	"github.com/gin-gonic/gin"
)

// ModalHandler 把模态框的用户事件 (输码/重试/关闭) 暴露为 HTTP 接口,
// 供前端或测试驱动。状态机本身在 modal.Controller 里。
type ModalHandler struct {
	controller *modal.Controller
}

func NewModalHandler(c *modal.Controller) *ModalHandler {
	return &ModalHandler{controller: c}
}

// SubmitCode 用户在输入画面提交 action code
func (h *ModalHandler) SubmitCode(c *gin.Context) {
	var req request.SubmitCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	h.controller.SubmitCode(req.Code)
	response.Success(c, h.controller.State())
}

// Retry 从错误画面回到输入画面, 等待中的连接流程保持不变
func (h *ModalHandler) Retry(c *gin.Context) {
	h.controller.Retry()
	response.Success(c, h.controller.State())
}

// Close 用户关闭模态框
func (h *ModalHandler) Close(c *gin.Context) {
	var req request.CloseModalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	reason := modal.CloseReason(req.Reason)
	switch reason {
	case modal.ReasonCloseButton, modal.ReasonEscape, modal.ReasonReset:
	default:
		reason = modal.ReasonCloseButton
	}

	h.controller.Close(reason)
	response.Success(c, h.controller.State())
}

// State 当前画面快照, 前端轮询用
func (h *ModalHandler) State(c *gin.Context) {
	response.Success(c, h.controller.State())
}

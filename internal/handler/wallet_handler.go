package handler

import (
	"encoding/base64"

	"bridge-core/internal/bridge"
	"bridge-core/internal/handler/request"
	"bridge-core/internal/handler/response"
	"bridge-core/pkg/errno"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	svc *bridge.Service
}

func NewWalletHandler(svc *bridge.Service) *WalletHandler {
	return &WalletHandler{svc: svc}
}

// Connect 发起连接流程。
// 没有有效会话时本请求会阻塞, 直到有人通过 /modal/code 提交
// action code 或通过 /modal/close 取消。
func (h *WalletHandler) Connect(c *gin.Context) {
	var req request.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	res, err := h.svc.Connect(c.Request.Context(), bridge.ConnectOptions{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Metadata:    req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"address":     res.Address,
		"new_session": res.NewSession,
		"cancelled":   res.Cancelled,
	})
}

// Disconnect 清除会话, 重置模态框。总是成功。
func (h *WalletHandler) Disconnect(c *gin.Context) {
	if err := h.svc.Disconnect(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Status 连接状态查询
func (h *WalletHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	connected := h.svc.IsConnected(ctx)

	data := gin.H{"connected": connected}
	if connected {
		data["address"] = h.svc.ConnectedAddress(ctx)
	}
	response.Success(c, data)
}

// Sign 让远端钱包签名一笔交易。请求体里是 RLP 编码交易的 base64,
// 和 Connect 一样会阻塞等待 modal 事件。
func (h *WalletHandler) Sign(c *gin.Context) {
	var req request.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.TransactionBase64)
	if err != nil {
		response.Error(c, errno.ErrBind)
		return
	}
	var tx types.Transaction
	if err := tx.UnmarshalBinary(raw); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	signed, err := h.svc.SignTransaction(c.Request.Context(), &tx)
	if err != nil {
		response.Error(c, err)
		return
	}

	signedRaw, err := signed.MarshalBinary()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"transaction_base64": base64.StdEncoding.EncodeToString(signedRaw),
		"tx_hash":            signed.Hash().Hex(),
	})
}

// Process 无 UI 直连: 调用方已经从别处拿到了 action code
func (h *WalletHandler) Process(c *gin.Context) {
	var req request.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	addr, err := h.svc.ProcessAction(c.Request.Context(), req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"address": addr})
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bridge-core/pkg/crypto_util"
	"bridge-core/pkg/errno"
	"bridge-core/pkg/logger"
	"bridge-core/pkg/protocol"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Client 远端 Action Code 服务的客户端接口
type Client interface {
	// GetAction resolves the metadata behind an action code.
	GetAction(ctx context.Context, code string) (*protocol.Action, error)

	// SubmitAction submits a payload and blocks until the remote task
	// reaches a terminal status or the timeout expires. timeout<=0 means
	// no deadline.
	SubmitAction(ctx context.Context, code string, payload protocol.SubmissionPayload, timeout time.Duration) (*protocol.TaskResult, error)
}

// HTTPClient 基于 HTTP 的默认实现
type HTTPClient struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		// 提交接口是 submit-and-wait, 远端会长时间挂起, 超时交给 ctx 控制
		http:         &http.Client{},
		pollInterval: 500 * time.Millisecond,
	}
}

// actionResponse 远端返回的 Action 元数据
type actionResponse struct {
	Action *struct {
		IntendedFor string                 `json:"intended_for"`
		Metadata    map[string]interface{} `json:"metadata"`
	} `json:"action"`
}

// taskResponse 远端返回的任务状态
type taskResponse struct {
	Status string `json:"status"`
	Result string `json:"result"`
}

// GetAction 解析 Action Code
func (c *HTTPClient) GetAction(ctx context.Context, code string) (*protocol.Action, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errno.ErrEmptyCode
	}

	endpoint := fmt.Sprintf("%s/actions/%s", c.baseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errno.ClassifyNetwork(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errno.ClassifyNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errno.ErrActionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errno.ClassifyNetwork(fmt.Errorf("unexpected status: %s", resp.Status))
	}

	var body actionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errno.ClassifyNetwork(fmt.Errorf("decoding action response: %w", err))
	}
	if body.Action == nil {
		return nil, errno.ErrActionNotFound
	}
	if strings.TrimSpace(body.Action.IntendedFor) == "" {
		return nil, errno.ErrMissingRecipient
	}
	if !common.IsHexAddress(body.Action.IntendedFor) {
		return nil, errno.ErrInvalidRecipient
	}

	logger.Debug("action resolved",
		zap.String("code_digest", crypto_util.CodeDigest(code)),
		zap.String("intended_for", body.Action.IntendedFor))

	return &protocol.Action{
		IntendedFor: common.HexToAddress(body.Action.IntendedFor).Hex(),
		Metadata:    body.Action.Metadata,
	}, nil
}

// SubmitAction 提交并同步等待终态
func (c *HTTPClient) SubmitAction(ctx context.Context, code string, payload protocol.SubmissionPayload, timeout time.Duration) (*protocol.TaskResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errno.ErrEmptyCode
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := c.submitOnce(ctx, code, payload)
	if err != nil {
		return nil, err
	}

	// 远端是 submit-and-wait, 正常情况下直接返回终态。
	// 为了应对旧协议的中间态响应, 非终态时轮询任务直到终态或超时。
	// 无法识别的状态直接报错, 让协议漂移显式暴露而不是猜一个含义。
	for !result.Status.Terminal() {
		if result.Status == protocol.StatusUnknown {
			return nil, &errno.ProcessingError{Reason: errno.TaskFailed, Err: fmt.Errorf("unrecognized task status from relay")}
		}
		select {
		case <-ctx.Done():
			return nil, &errno.ProcessingError{Reason: errno.TaskTimeout, Err: ctx.Err()}
		case <-time.After(c.pollInterval):
		}
		result, err = c.pollTask(ctx, code)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("action submission resolved",
		zap.String("code_digest", crypto_util.CodeDigest(code)),
		zap.String("status", string(result.Status)))

	return result, nil
}

func (c *HTTPClient) submitOnce(ctx context.Context, code string, payload protocol.SubmissionPayload) (*protocol.TaskResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errno.ClassifyNetwork(err)
	}

	endpoint := fmt.Sprintf("%s/actions/%s/submit", c.baseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, errno.ClassifyNetwork(err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doTaskRequest(req)
}

func (c *HTTPClient) pollTask(ctx context.Context, code string) (*protocol.TaskResult, error) {
	endpoint := fmt.Sprintf("%s/actions/%s/task", c.baseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errno.ClassifyNetwork(err)
	}
	return c.doTaskRequest(req)
}

func (c *HTTPClient) doTaskRequest(req *http.Request) (*protocol.TaskResult, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return nil, &errno.ProcessingError{Reason: errno.TaskTimeout, Err: err}
		}
		return nil, errno.ClassifyNetwork(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &errno.ProcessingError{Reason: errno.TaskNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errno.ClassifyNetwork(fmt.Errorf("unexpected status: %s: %s", resp.Status, body))
	}

	var task taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, errno.ClassifyNetwork(fmt.Errorf("decoding task response: %w", err))
	}

	return &protocol.TaskResult{
		Status: protocol.ParseTaskStatus(task.Status),
		Result: task.Result,
	}, nil
}

package errno

import (
	"fmt"
	"strings"
)

// NetworkKind 网络错误的细分类别
type NetworkKind string

const (
	NetworkCORS       NetworkKind = "cors"
	NetworkConnection NetworkKind = "connection"
	NetworkTimeout    NetworkKind = "timeout"
	NetworkAuth       NetworkKind = "auth"
	NetworkNotFound   NetworkKind = "not_found"
	NetworkServer     NetworkKind = "server"
	NetworkGeneric    NetworkKind = "generic"
)

// NetworkError carries a machine-readable sub-code plus a remediation hint.
type NetworkError struct {
	Kind NetworkKind
	Hint string
	Err  error // wrapped cause, may be nil
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("network error (%s)", e.Kind)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Errno maps the network error into the coded space for the HTTP boundary.
func (e *NetworkError) Errno() Errno {
	return Errno{Code: 20200, Message: e.Error()}
}

// classifyRule 按顺序匹配小写错误文本
type classifyRule struct {
	keywords []string
	kind     NetworkKind
	hint     string
}

// 规则顺序即优先级: CORS 指纹必须先于通用 fetch 失败检查
var classifyRules = []classifyRule{
	{
		keywords: []string{"cors", "cross-origin", "preflight", "access-control-allow-origin"},
		kind:     NetworkCORS,
		hint:     "The relay rejected this origin. Check that your site is allow-listed on the action code service.",
	},
	{
		keywords: []string{"failed to fetch", "network is unreachable", "connection refused", "no such host", "connection reset"},
		kind:     NetworkConnection,
		hint:     "Could not reach the action code service. Check your internet connection.",
	},
	{
		keywords: []string{"timeout", "timed out", "deadline exceeded"},
		kind:     NetworkTimeout,
		hint:     "The action code service took too long to respond. Try again.",
	},
	{
		keywords: []string{"400", "bad request", "401", "unauthorized"},
		kind:     NetworkAuth,
		hint:     "The request was rejected. The code may be malformed or your credentials invalid.",
	},
	{
		keywords: []string{"404", "not found"},
		kind:     NetworkNotFound,
		hint:     "The requested action was not found. The code may have expired.",
	},
	{
		keywords: []string{"500", "502", "503", "504", "internal server error", "service unavailable", "bad gateway"},
		kind:     NetworkServer,
		hint:     "The action code service is having trouble. Try again in a moment.",
	},
}

// ClassifyNetwork maps any error to exactly one NetworkError. It is total:
// unmatched errors fall through to the generic classification, and it never
// returns nil for a non-nil input.
func ClassifyNetwork(err error) *NetworkError {
	if err == nil {
		return nil
	}

	// 已经分类过的错误不再二次包装
	if typed, ok := err.(*NetworkError); ok {
		return typed
	}

	text := strings.ToLower(err.Error())
	for _, rule := range classifyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return &NetworkError{Kind: rule.kind, Hint: rule.hint, Err: err}
			}
		}
	}

	return &NetworkError{
		Kind: NetworkGeneric,
		Hint: "Something went wrong talking to the action code service. Check your connection and try again.",
		Err:  err,
	}
}

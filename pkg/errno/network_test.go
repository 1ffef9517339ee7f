package errno

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyNetwork(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want NetworkKind
	}{
		{"CORS preflight", errors.New("Preflight response is not successful"), NetworkCORS},
		{"CORS header", errors.New("No 'Access-Control-Allow-Origin' header is present"), NetworkCORS},
		{"Fetch failure", errors.New("Failed to fetch"), NetworkConnection},
		{"Connection refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), NetworkConnection},
		{"Deadline", errors.New("context deadline exceeded"), NetworkTimeout},
		{"HTTP 400", errors.New("unexpected status: 400 Bad Request"), NetworkAuth},
		{"HTTP 401", errors.New("unexpected status: 401 Unauthorized"), NetworkAuth},
		{"HTTP 404", errors.New("unexpected status: 404 Not Found"), NetworkNotFound},
		{"HTTP 503", errors.New("unexpected status: 503 Service Unavailable"), NetworkServer},
		{"Unknown", errors.New("something exploded"), NetworkGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetwork(tt.err)
			assert.Equal(t, tt.want, got.Kind)
			assert.NotEmpty(t, got.Hint, "every classification carries a remediation hint")
		})
	}
}

func TestClassifyNetworkOrdering(t *testing.T) {
	// CORS 指纹里往往也带着 fetch 字样, CORS 规则必须先命中
	err := errors.New("Failed to fetch: CORS preflight did not succeed")
	got := ClassifyNetwork(err)
	assert.Equal(t, NetworkCORS, got.Kind)
}

func TestClassifyNetworkIdempotent(t *testing.T) {
	first := ClassifyNetwork(errors.New("connection refused"))
	second := ClassifyNetwork(first)
	assert.Same(t, first, second, "already classified errors must not be re-wrapped")
}

func TestClassifyNetworkNil(t *testing.T) {
	assert.Nil(t, ClassifyNetwork(nil))
}

func TestNormalize(t *testing.T) {
	t.Run("network error carries hint", func(t *testing.T) {
		d := Normalize(ClassifyNetwork(errors.New("connection refused")))
		assert.Equal(t, "Connection Problem", d.Title)
		assert.NotEmpty(t, d.Hint)
	})

	t.Run("invalid code class", func(t *testing.T) {
		d := Normalize(ErrActionNotFound)
		assert.Equal(t, "Invalid Code", d.Title)
		assert.Equal(t, ErrActionNotFound.Message, d.Message)
	})

	t.Run("connection class not double wrapped", func(t *testing.T) {
		d := Normalize(ErrIncompleteAction)
		assert.Equal(t, ErrIncompleteAction.Message, d.Message)
	})

	t.Run("processing error", func(t *testing.T) {
		d := Normalize(&ProcessingError{Reason: TaskTimeout})
		assert.Equal(t, "Action Failed", d.Title)
	})

	t.Run("wrapped network error still matches", func(t *testing.T) {
		inner := ClassifyNetwork(errors.New("504 gateway timeout"))
		d := Normalize(fmt.Errorf("submit: %w", inner))
		assert.Equal(t, "Connection Problem", d.Title)
	})
}

func TestDecode(t *testing.T) {
	code, msg := Decode(ErrNoSession)
	assert.Equal(t, 20401, code)
	assert.Equal(t, "No session found", msg)

	code, _ = Decode(errors.New("boom"))
	assert.Equal(t, InternalServerError.Code, code)
}

package modal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func showAsync(c *Controller) (<-chan string, <-chan error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		code, err := c.Show(context.Background())
		codeCh <- code
		errCh <- err
	}()
	return codeCh, errCh
}

func waitForWaiter(t *testing.T, c *Controller) {
	t.Helper()
	deadline := time.After(time.Second)
	for !c.State().AwaitingCode {
		select {
		case <-deadline:
			t.Fatal("等待槽未按时建立")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestShowResolvesOnSubmit(t *testing.T) {
	c := NewController()
	codeCh, errCh := showAsync(c)
	waitForWaiter(t, c)

	state := c.State()
	assert.True(t, state.Visible)
	assert.Equal(t, ScreenInput, state.Screen)

	c.SubmitCode("abc123")
	assert.Equal(t, "abc123", <-codeCh)
	assert.NoError(t, <-errCh)
	assert.False(t, c.State().AwaitingCode)
}

func TestShowRejectsOnClose(t *testing.T) {
	c := NewController()
	_, errCh := showAsync(c)
	waitForWaiter(t, c)

	c.Close(ReasonEscape)
	err := <-errCh

	var closeErr *CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, ReasonEscape, closeErr.Reason)
	assert.True(t, IsClosed(err))

	// 关闭后重置到 input 并隐藏
	state := c.State()
	assert.Equal(t, ScreenInput, state.Screen)
	assert.False(t, state.Visible)
}

func TestDoubleShowSharesOneWait(t *testing.T) {
	c := NewController()
	code1, err1 := showAsync(c)
	waitForWaiter(t, c)
	code2, err2 := showAsync(c)

	// 两个 Show 共用同一个等待, 只有一次提交, 两边都拿到结果
	time.Sleep(10 * time.Millisecond)
	c.SubmitCode("abc123")

	assert.Equal(t, "abc123", <-code1)
	assert.Equal(t, "abc123", <-code2)
	assert.NoError(t, <-err1)
	assert.NoError(t, <-err2)
}

func TestRetryKeepsWaitArmed(t *testing.T) {
	c := NewController()
	codeCh, errCh := showAsync(c)
	waitForWaiter(t, c)

	c.ShowError(errors.New("boom"), "")
	assert.Equal(t, ScreenError, c.State().Screen)

	// Retry 回到输入画面但不结束等待
	c.Retry()
	state := c.State()
	assert.Equal(t, ScreenInput, state.Screen)
	assert.True(t, state.AwaitingCode)

	select {
	case <-codeCh:
		t.Fatal("Retry 不应结束等待")
	case <-time.After(20 * time.Millisecond):
	}

	// 随后的提交仍然由同一个等待接收
	c.SubmitCode("second-try")
	assert.Equal(t, "second-try", <-codeCh)
	assert.NoError(t, <-errCh)
}

func TestScreenTransitionsDoNotTouchWait(t *testing.T) {
	c := NewController()
	codeCh, _ := showAsync(c)
	waitForWaiter(t, c)

	c.ShowLoading("working")
	c.ShowError(errors.New("x"), "Oops")
	c.ShowSuccess("done")

	select {
	case <-codeCh:
		t.Fatal("画面切换不应结束等待")
	case <-time.After(20 * time.Millisecond):
	}
	assert.True(t, c.State().AwaitingCode)
}

func TestShowOnErrorScreenRestoresVisibility(t *testing.T) {
	c := NewController()
	c.ShowError(errors.New("boom"), "Failure")
	c.Close(ReasonCloseButton)
	c.ShowError(errors.New("boom"), "Failure")

	_, _ = showAsync(c)
	waitForWaiter(t, c)

	// 错误画面上 Show 不应重置回 input
	state := c.State()
	assert.Equal(t, ScreenError, state.Screen)
	assert.True(t, state.Visible)
	c.Close(ReasonReset)
}

func TestSubmitWithoutWaiterIsNoop(t *testing.T) {
	c := NewController()
	assert.NotPanics(t, func() {
		c.SubmitCode("abc123")
		c.Close(ReasonCloseButton)
		c.Retry()
	})
}

func TestShowAbortsOnContextCancel(t *testing.T) {
	c := NewController()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Show(ctx)
		errCh <- err
	}()
	waitForWaiter(t, c)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestConcurrentSubmitSingleResolution(t *testing.T) {
	c := NewController()
	codeCh, errCh := showAsync(c)
	waitForWaiter(t, c)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.SubmitCode("only-once")
		}()
	}
	wg.Wait()

	assert.Equal(t, "only-once", <-codeCh)
	assert.NoError(t, <-errCh)
}

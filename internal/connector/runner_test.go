package connector

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("依赖 POSIX shell")
	}
	ctx := context.Background()

	t.Run("CleanExit", func(t *testing.T) {
		r := NewExecRunnerWithIO(nil, nil, nil)
		proc, err := r.Spawn(ctx, "sh", "-c", "exit 0")
		require.NoError(t, err)
		assert.Greater(t, proc.PID(), 0)
		assert.NoError(t, proc.Wait())

		t.Log("✅ 零退出测试通过")
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		r := NewExecRunnerWithIO(nil, nil, nil)
		proc, err := r.Spawn(ctx, "sh", "-c", "exit 3")
		require.NoError(t, err)
		assert.Error(t, proc.Wait())

		t.Log("✅ 非零退出测试通过")
	})

	t.Run("WaitIdempotent", func(t *testing.T) {
		r := NewExecRunnerWithIO(nil, nil, nil)
		proc, err := r.Spawn(ctx, "sh", "-c", "exit 3")
		require.NoError(t, err)

		first := proc.Wait()
		second := proc.Wait()
		require.Error(t, first)
		assert.Equal(t, first, second)

		t.Log("✅ 重复等待测试通过")
	})

	t.Run("StdoutRedirect", func(t *testing.T) {
		var out bytes.Buffer
		r := NewExecRunnerWithIO(nil, &out, nil)
		proc, err := r.Spawn(ctx, "sh", "-c", "echo hello")
		require.NoError(t, err)
		require.NoError(t, proc.Wait())
		assert.Equal(t, "hello", strings.TrimSpace(out.String()))

		t.Log("✅ 标准流重定向测试通过")
	})

	t.Run("CommandNotFound", func(t *testing.T) {
		r := NewExecRunnerWithIO(nil, nil, nil)
		_, err := r.Spawn(ctx, "peersh-no-such-command-1b3f")
		assert.Error(t, err)

		t.Log("✅ 命令缺失测试通过")
	})

	t.Run("ContextCancelKills", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		r := NewExecRunnerWithIO(nil, nil, nil)
		proc, err := r.Spawn(cancelCtx, "sh", "-c", "sleep 10")
		require.NoError(t, err)

		cancel()
		done := make(chan error, 1)
		go func() { done <- proc.Wait() }()
		select {
		case err := <-done:
			assert.Error(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("进程未随 ctx 取消而终止")
		}

		t.Log("✅ 取消终止测试通过")
	})
}

package connector

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/dep2p/go-peersh/pkg/interfaces"
)

// ExecRunner 基于 os/exec 的连接命令执行器
//
// 进程直通调用方的标准输入输出，交互式会话（如 ssh）
// 直接接管终端。ctx 取消时进程被终止。
type ExecRunner struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewExecRunner 创建执行器，标准流继承当前进程
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// NewExecRunnerWithIO 创建标准流重定向的执行器
func NewExecRunnerWithIO(stdin io.Reader, stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{stdin: stdin, stdout: stdout, stderr: stderr}
}

// Spawn 启动外部命令
func (r *ExecRunner) Spawn(ctx context.Context, name string, args ...string) (interfaces.Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

// execProcess 包装 exec.Cmd，让 Wait 可重复调用
type execProcess struct {
	cmd      *exec.Cmd
	waitOnce sync.Once
	waitErr  error
}

// Wait 等待进程退出（结果缓存，可重复调用）
func (p *execProcess) Wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
	})
	return p.waitErr
}

// Kill 强制终止进程
func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// PID 返回进程号
func (p *execProcess) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

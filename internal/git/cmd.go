// Package git provides access to the Git CLI with a Git library-like
// interface.
//
// All shell-to-Git interactions should be done through this package.
package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/exec"
	"strings"

	"go.abhg.dev/teapot/internal/silog"
)

type execer interface {
	Run(*exec.Cmd) error
	Output(*exec.Cmd) ([]byte, error)
	Start(*exec.Cmd) error
	Wait(*exec.Cmd) error
	Kill(*exec.Cmd) error
}

type realExecer struct{}

var _realExec execer = realExecer{}

func (realExecer) Run(cmd *exec.Cmd) error              { return cmd.Run() }
func (realExecer) Output(cmd *exec.Cmd) ([]byte, error) { return cmd.Output() }
func (realExecer) Start(cmd *exec.Cmd) error            { return cmd.Start() }
func (realExecer) Wait(cmd *exec.Cmd) error             { return cmd.Wait() }
func (realExecer) Kill(cmd *exec.Cmd) error             { return cmd.Process.Kill() }

// extraConfig holds ad-hoc "-c" overrides for a single invocation.
type extraConfig struct {
	MergeConflictStyle string
	Editor             string
}

func (c *extraConfig) withArgs(cmd *gitCmd) *gitCmd {
	if c == nil {
		return cmd
	}
	if c.MergeConflictStyle != "" {
		cmd.args = append([]string{"-c", "merge.conflictStyle=" + c.MergeConflictStyle}, cmd.args...)
	}
	if c.Editor != "" {
		cmd.args = append([]string{"-c", "core.editor=" + c.Editor}, cmd.args...)
	}
	return cmd
}

// gitCmd provides a fluent API around exec.Cmd,
// unconditionally capturing stderr into errors unless overridden.
type gitCmd struct {
	ctx  context.Context
	log  *silog.Logger
	exec execer

	name string
	args []string
	dir  string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer // set only if the caller wants stderr elsewhere

	logPrefix string
	env       []string

	// set once the command has been built and started,
	// so that Wait/Kill can refer back to it.
	cmd  *exec.Cmd
	wrap func(error) error
}

func newGitCmd(ctx context.Context, log *silog.Logger, exec execer, args ...string) *gitCmd {
	name := "git"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name += " " + args[0]
	}
	return &gitCmd{
		ctx:  ctx,
		log:  log,
		exec: exec,
		name: name,
		args: args,
	}
}

// Dir sets the working directory for the command.
func (c *gitCmd) Dir(dir string) *gitCmd {
	c.dir = dir
	return c
}

// WithStdin supplies the command's stdin from the given reader.
func (c *gitCmd) WithStdin(r io.Reader) *gitCmd {
	c.stdin = r
	return c
}

// Stdin supplies the command's stdin from the given reader.
func (c *gitCmd) Stdin(r io.Reader) *gitCmd {
	return c.WithStdin(r)
}

// StdinString supplies the command's stdin from a string.
func (c *gitCmd) StdinString(s string) *gitCmd {
	return c.WithStdin(strings.NewReader(s))
}

// WithStdout directs the command's stdout to the given writer,
// instead of whatever Output would have captured.
func (c *gitCmd) WithStdout(w io.Writer) *gitCmd {
	c.stdout = w
	return c
}

// Stdout directs the command's stdout to the given writer,
// instead of whatever Output would have captured.
func (c *gitCmd) Stdout(w io.Writer) *gitCmd {
	return c.WithStdout(w)
}

// WithStderr directs the command's stderr to the given writer
// instead of being captured for error reporting.
func (c *gitCmd) WithStderr(w io.Writer) *gitCmd {
	c.stderr = w
	return c
}

// Stderr directs the command's stderr to the given writer
// instead of being captured for error reporting.
func (c *gitCmd) Stderr(w io.Writer) *gitCmd {
	return c.WithStderr(w)
}

// WithLogPrefix overrides the prefix used when logging this command's
// stderr output.
func (c *gitCmd) WithLogPrefix(prefix string) *gitCmd {
	c.logPrefix = prefix
	return c
}

// WithConfig prepends "-c key=value" overrides to the command.
func (c *gitCmd) WithConfig(cfg extraConfig) *gitCmd {
	return cfg.withArgs(c)
}

// AppendEnv appends environment variables to the command's environment,
// in addition to the current process's environment.
func (c *gitCmd) AppendEnv(env ...string) *gitCmd {
	c.env = append(c.env, env...)
	return c
}

func (c *gitCmd) build() *exec.Cmd {
	cmd := exec.CommandContext(c.ctx, "git", c.args...)
	cmd.Dir = c.dir
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	if c.stdin != nil {
		cmd.Stdin = c.stdin
	}

	if c.stderr != nil {
		cmd.Stderr = c.stderr
		c.wrap = func(err error) error { return err }
	} else {
		prefix := c.logPrefix
		if prefix == "" {
			prefix = c.name
		}
		cmd.Stderr, c.wrap = stderrWriter(prefix, c.log)
	}

	if c.stdout != nil {
		cmd.Stdout = c.stdout
	}

	c.cmd = cmd
	return cmd
}

// Run runs the command, blocking until it completes.
func (c *gitCmd) Run() error {
	cmd := c.build()
	return c.wrap(c.exec.Run(cmd))
}

// Start starts the command, returning immediately.
// Wait or Kill must eventually be called to release its resources.
func (c *gitCmd) Start() error {
	cmd := c.build()
	return c.wrap(c.exec.Start(cmd))
}

// Wait waits for a command started with Start to complete.
func (c *gitCmd) Wait() error {
	return c.wrap(c.exec.Wait(c.cmd))
}

// Kill terminates a command started with Start.
func (c *gitCmd) Kill() error {
	return c.wrap(c.exec.Kill(c.cmd))
}

// StdoutPipe returns a pipe connected to the command's stdout.
// The command is not started; call Start (and eventually Wait) separately.
func (c *gitCmd) StdoutPipe() (io.ReadCloser, error) {
	cmd := c.build()
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	return pipe, nil
}

// StdinPipe returns a pipe connected to the command's stdin.
// The command is not started; call Start (and eventually Wait) separately.
// Closing the returned writer waits for the command to complete.
func (c *gitCmd) StdinPipe() (*cmdStdinWriter, error) {
	cmd := c.build()
	pipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	return &cmdStdinWriter{cmd: c, stdin: pipe}, nil
}

// Output runs the command and returns its stdout.
func (c *gitCmd) Output() ([]byte, error) {
	cmd := c.build()
	out, err := c.exec.Output(cmd)
	return out, c.wrap(err)
}

// OutputChomp runs the command and returns its stdout with the
// trailing newline removed.
func (c *gitCmd) OutputChomp() (string, error) {
	out, err := c.Output()
	out, _ = bytes.CutSuffix(out, []byte{'\n'})
	return string(out), err
}

// OutputString is an alias for OutputChomp, kept for call sites that
// read more naturally expecting a string result.
func (c *gitCmd) OutputString() (string, error) {
	return c.OutputChomp()
}

// ScanLines runs the command and yields its stdout split into lines.
func (c *gitCmd) ScanLines() iter.Seq2[[]byte, error] {
	return c.Scan(bufio.ScanLines)
}

// Scan runs the command and yields its stdout split by the given
// bufio.SplitFunc.
func (c *gitCmd) Scan(split bufio.SplitFunc) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		pipe, err := c.StdoutPipe()
		if err != nil {
			yield(nil, err)
			return
		}
		if err := c.Start(); err != nil {
			yield(nil, err)
			return
		}

		var scanErr error
		scan := bufio.NewScanner(pipe)
		scan.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		scan.Split(split)
		for scan.Scan() {
			if !yield(bytes.Clone(scan.Bytes()), nil) {
				_ = c.Kill()
				return
			}
		}
		scanErr = scan.Err()

		if err := c.Wait(); err != nil {
			yield(nil, err)
			return
		}
		if scanErr != nil {
			yield(nil, scanErr)
		}
	}
}

// cmdStdinWriter is an io.WriteCloser that writes to a command's stdin,
// and upon closure, closes the stdin stream and waits for the command to exit.
type cmdStdinWriter struct {
	cmd   *gitCmd
	stdin io.WriteCloser
}

var _ io.WriteCloser = (*cmdStdinWriter)(nil)

func (w *cmdStdinWriter) Write(p []byte) (n int, err error) {
	return w.stdin.Write(p)
}

func (w *cmdStdinWriter) Close() error {
	err := w.stdin.Close()
	if err != nil {
		return errors.Join(err, w.cmd.Kill())
	}
	return w.cmd.Wait()
}

// stderrWriter returns an io.Writer that records stderr for later use,
// and a wrap function that wraps an error with the recorded stderr
// output, or streams it to the logger at debug level if enabled.
func stderrWriter(cmd string, logger *silog.Logger) (w io.Writer, wrap func(error) error) {
	if logger != nil && logger.Level() <= silog.LevelDebug {
		cmdLog := logger.WithPrefix(cmd)
		lw, flush := silog.Writer(cmdLog, silog.LevelDebug)
		return lw, func(err error) error {
			flush()
			return err
		}
	}

	var buf bytes.Buffer
	return &buf, func(err error) error {
		stderr := bytes.TrimSpace(buf.Bytes())
		if err == nil || len(stderr) == 0 {
			return err
		}
		return errors.Join(err, fmt.Errorf("stderr:\n%s", stderr))
	}
}

package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/loykin/deployr/internal/config"
	"github.com/loykin/deployr/internal/history"
	"github.com/loykin/deployr/internal/mirror"
	"github.com/loykin/deployr/internal/remote"
	"github.com/loykin/deployr/internal/runner"
)

var (
	// ErrNoInterpreter means the venv holds no usable python binary.
	ErrNoInterpreter = errors.New("no interpreter found in venv")
	// ErrWorkdirMismatch means the remote shell did not land in the
	// expected server directory; destructive steps must not proceed.
	ErrWorkdirMismatch = errors.New("remote working directory mismatch")
)

// Deployer dispatches the five deployment actions against one remote
// target. All external effects go through the mirror and the session,
// both backed by the same Runner.
type Deployer struct {
	cfg    config.Config
	mirror mirror.Mirror
	sess   remote.Session
	sink   history.Sink
	out    io.Writer
}

func New(cfg config.Config, r runner.Runner) *Deployer {
	return &Deployer{
		cfg:    cfg,
		mirror: mirror.New(r),
		sess:   remote.NewSession(cfg.RemoteHost, r),
		out:    os.Stdout,
	}
}

// SetOutput redirects status lines (default: stdout).
func (d *Deployer) SetOutput(w io.Writer) {
	if w != nil {
		d.out = w
	}
}

// SetHistorySink enables the audit trail. Sink errors never fail an
// action.
func (d *Deployer) SetHistorySink(s history.Sink) { d.sink = s }

func (d *Deployer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, format+"\n", args...)
}

// run times an action and records it in the history sink.
func (d *Deployer) run(ctx context.Context, action string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if d.sink != nil {
		e := history.Event{
			Action:     action,
			Host:       d.cfg.RemoteHost,
			OccurredAt: start,
			Duration:   time.Since(start),
			OK:         err == nil,
		}
		if err != nil {
			e.Error = err.Error()
		}
		if serr := d.sink.Send(ctx, e); serr != nil {
			d.printf("warning: history sink: %v", serr)
		}
	}
	return err
}

// Pull mirrors the remote tree into the local directory.
func (d *Deployer) Pull(ctx context.Context) error {
	return d.run(ctx, "pull", d.pull)
}

func (d *Deployer) pull(ctx context.Context) error {
	d.printf("Pulling %s:%s -> %s", d.cfg.RemoteHost, d.cfg.ServerDir, d.cfg.LocalDir)
	if err := d.mirror.Pull(ctx, d.cfg.RemoteHost, d.cfg.ServerDir, d.cfg.LocalDir, d.cfg.Excludes); err != nil {
		return err
	}
	d.printf("Pull complete")
	return nil
}

// Push mirrors the local tree onto the remote directory and then, best
// effort, reinstalls declared dependencies inside the venv. The
// dependency step runs regardless of the mirror outcome and can only
// degrade to warnings; the mirror error, if any, is what Push returns.
func (d *Deployer) Push(ctx context.Context) error {
	return d.run(ctx, "push", d.push)
}

func (d *Deployer) push(ctx context.Context) error {
	d.printf("Pushing %s -> %s:%s", d.cfg.LocalDir, d.cfg.RemoteHost, d.cfg.ServerDir)
	mirrorErr := d.mirror.Push(ctx, d.cfg.RemoteHost, d.cfg.LocalDir, d.cfg.ServerDir, d.cfg.Excludes)
	if mirrorErr != nil {
		d.printf("warning: mirror failed: %v", mirrorErr)
	} else {
		d.printf("Push complete")
	}

	d.installDependencies(ctx)
	return mirrorErr
}

func (d *Deployer) installDependencies(ctx context.Context) {
	venv := d.cfg.RemotePath(d.cfg.VenvDir)
	ok, err := d.sess.DirExists(ctx, venv)
	if err != nil {
		d.printf("warning: could not probe %s: %v", venv, err)
		return
	}
	if !ok {
		d.printf("warning: %s not found on %s; create the venv manually", venv, d.cfg.RemoteHost)
		return
	}

	pip := remote.QuotePath(d.cfg.RemotePath(d.cfg.VenvDir, "bin", "pip"))
	reqs := remote.QuotePath(d.cfg.RemotePath(d.cfg.Requirements))
	d.printf("Installing dependencies on %s", d.cfg.RemoteHost)
	if _, err := d.sess.Output(ctx, pip+" install --upgrade pip"); err != nil {
		d.printf("warning: pip upgrade failed: %v", err)
	}
	if _, err := d.sess.Output(ctx, pip+" install -r "+reqs); err != nil {
		d.printf("warning: dependency install failed: %v", err)
		return
	}
	d.printf("Dependencies installed")
}

// Restart stops the process recorded in the PID file (if any), locates
// the venv interpreter, relaunches the entrypoint detached, and records
// the new PID.
func (d *Deployer) Restart(ctx context.Context) error {
	return d.run(ctx, "restart", d.restart)
}

func (d *Deployer) restart(ctx context.Context) error {
	pidPath := d.cfg.RemotePath(d.cfg.PIDFile)

	content, exists, err := d.sess.ReadFile(ctx, pidPath)
	if err != nil {
		return err
	}
	if exists {
		if pid, perr := strconv.Atoi(strings.TrimSpace(content)); perr == nil {
			d.printf("Stopping pid %d", pid)
			if kerr := d.sess.Kill(ctx, pid); kerr != nil {
				// Already gone is fine.
				d.printf("Process %d was not running", pid)
			}
		} else {
			d.printf("warning: ignoring malformed pid file content %q", content)
		}
		if err := d.sess.RemoveFile(ctx, pidPath); err != nil {
			return err
		}
	} else {
		d.printf("No pid file at %s, nothing to stop", pidPath)
	}

	python, found, err := d.sess.FindExecutable(ctx, d.cfg.InterpreterCandidates()...)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: checked %s", ErrNoInterpreter,
			strings.Join(d.cfg.InterpreterCandidates(), ", "))
	}

	d.printf("Starting %s with %s", d.cfg.Entrypoint, python)
	pid, err := d.sess.Launch(ctx, d.cfg.ServerDir, python, []string{d.cfg.Entrypoint}, d.cfg.LogFile)
	if err != nil {
		return err
	}
	if err := d.sess.WriteFile(ctx, pidPath, strconv.Itoa(pid)); err != nil {
		return err
	}
	d.printf("Started %s on %s, pid %d", d.cfg.Entrypoint, d.cfg.RemoteHost, pid)
	return nil
}

// Deploy is Push followed by Restart. A push failure aborts the restart
// only when stop_on_push_failure is configured.
func (d *Deployer) Deploy(ctx context.Context) error {
	return d.run(ctx, "deploy", d.deploy)
}

func (d *Deployer) deploy(ctx context.Context) error {
	if err := d.push(ctx); err != nil {
		if d.cfg.StopOnPushFailure {
			return fmt.Errorf("push failed, restart skipped: %w", err)
		}
		d.printf("warning: push failed, continuing with restart: %v", err)
	}
	return d.restart(ctx)
}

// Cleanup removes version-control metadata from the server directory
// after verifying the remote shell actually resolved that directory.
func (d *Deployer) Cleanup(ctx context.Context) error {
	return d.run(ctx, "cleanup", d.cleanup)
}

func (d *Deployer) cleanup(ctx context.Context) error {
	resolved, err := d.sess.Workdir(ctx, d.cfg.ServerDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWorkdirMismatch, err)
	}
	if !workdirMatches(resolved, d.cfg.ServerDir) {
		return fmt.Errorf("%w: resolved %q, expected %q", ErrWorkdirMismatch, resolved, d.cfg.ServerDir)
	}

	gitDir := d.cfg.RemotePath(".git")
	ok, err := d.sess.DirExists(ctx, gitDir)
	if err != nil {
		return err
	}
	if !ok {
		d.printf("Nothing to remove in %s", d.cfg.ServerDir)
		return nil
	}
	if err := d.sess.RemoveDir(ctx, gitDir); err != nil {
		return err
	}
	d.printf("Removed %s", gitDir)
	return nil
}

// workdirMatches reports whether the pwd output corresponds to the
// configured server directory. Tilde-prefixed paths are matched by
// suffix because the remote home directory is unknown locally.
func workdirMatches(resolved, want string) bool {
	resolved = strings.TrimSpace(resolved)
	if resolved == "" {
		return false
	}
	if strings.HasPrefix(want, "~") {
		suffix := strings.TrimPrefix(strings.TrimPrefix(want, "~"), "/")
		if suffix == "" {
			return true
		}
		return strings.HasSuffix(path.Clean(resolved), "/"+path.Clean(suffix))
	}
	return path.Clean(resolved) == path.Clean(want)
}

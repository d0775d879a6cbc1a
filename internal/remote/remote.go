package remote

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/loykin/deployr/internal/runner"
)

// Session runs commands on a named host through the operator's ssh
// configuration. Scripts are assembled from quoted arguments only;
// raw user input is never concatenated into the remote shell line.
type Session struct {
	host string
	r    runner.Runner
}

func NewSession(host string, r runner.Runner) Session {
	return Session{host: host, r: r}
}

func (s Session) Host() string { return s.host }

// Quote wraps v in single quotes safe for a POSIX shell.
func Quote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}

// QuotePath quotes a remote path while keeping a leading ~ usable, so
// paths like ~/projects/bot still resolve to the remote home directory.
func QuotePath(p string) string {
	if p == "~" {
		return `"$HOME"`
	}
	if strings.HasPrefix(p, "~/") {
		return `"$HOME"/` + Quote(p[2:])
	}
	return Quote(p)
}

// Output runs script remotely and returns its trimmed combined output.
func (s Session) Output(ctx context.Context, script string) (string, error) {
	out, err := s.r.Run(ctx, "ssh", s.host, script)
	text := strings.TrimSpace(string(out))
	if err != nil {
		return text, fmt.Errorf("ssh %s: %w", s.host, err)
	}
	return text, nil
}

// probe runs a remote test expression and maps its outcome to a bool.
// The expression exits zero either way so a transport failure is
// distinguishable from a negative probe.
func (s Session) probe(ctx context.Context, expr string) (bool, error) {
	out, err := s.Output(ctx, "if "+expr+"; then echo yes; else echo no; fi")
	if err != nil {
		return false, err
	}
	return lastLine(out) == "yes", nil
}

func (s Session) FileExists(ctx context.Context, path string) (bool, error) {
	return s.probe(ctx, "[ -f "+QuotePath(path)+" ]")
}

func (s Session) DirExists(ctx context.Context, path string) (bool, error) {
	return s.probe(ctx, "[ -d "+QuotePath(path)+" ]")
}

// ReadFile returns the file content and whether the file exists.
func (s Session) ReadFile(ctx context.Context, path string) (string, bool, error) {
	ok, err := s.FileExists(ctx, path)
	if err != nil || !ok {
		return "", false, err
	}
	out, err := s.Output(ctx, "cat "+QuotePath(path))
	if err != nil {
		return "", true, err
	}
	return out, true, nil
}

// WriteFile replaces the file content with a single line.
func (s Session) WriteFile(ctx context.Context, path, content string) error {
	_, err := s.Output(ctx, "printf '%s\\n' "+Quote(content)+" > "+QuotePath(path))
	return err
}

func (s Session) RemoveFile(ctx context.Context, path string) error {
	_, err := s.Output(ctx, "rm -f "+QuotePath(path))
	return err
}

func (s Session) RemoveDir(ctx context.Context, path string) error {
	_, err := s.Output(ctx, "rm -rf "+QuotePath(path))
	return err
}

// Kill sends SIGTERM to pid. Callers ignore the error when the target
// may already be gone.
func (s Session) Kill(ctx context.Context, pid int) error {
	_, err := s.Output(ctx, "kill "+strconv.Itoa(pid))
	return err
}

// FindExecutable returns the first candidate path that is executable on
// the remote host. found is false when none of them is.
func (s Session) FindExecutable(ctx context.Context, candidates ...string) (string, bool, error) {
	for _, c := range candidates {
		ok, err := s.probe(ctx, "[ -x "+QuotePath(c)+" ]")
		if err != nil {
			return "", false, err
		}
		if ok {
			return c, true, nil
		}
	}
	return "", false, nil
}

// Launch starts bin with args detached in dir, combined output redirected
// to logfile, and returns the new process id.
func (s Session) Launch(ctx context.Context, dir, bin string, args []string, logfile string) (int, error) {
	parts := []string{"nohup", QuotePath(bin)}
	for _, a := range args {
		parts = append(parts, Quote(a))
	}
	script := "cd " + QuotePath(dir) + " && " + strings.Join(parts, " ") +
		" > " + QuotePath(logfile) + " 2>&1 & echo $!"
	out, err := s.Output(ctx, script)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(lastLine(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected launch output %q: %w", out, err)
	}
	return pid, nil
}

// Workdir resolves dir on the remote host via cd && pwd. Used as a
// safety check before destructive operations.
func (s Session) Workdir(ctx context.Context, dir string) (string, error) {
	return s.Output(ctx, "cd "+QuotePath(dir)+" && pwd")
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

package mirror

import (
	"context"
	"fmt"
	"strings"

	"github.com/loykin/deployr/internal/runner"
)

// DefaultExcludes is the transient path set never carried across the
// mirror: OS metadata, version-control metadata, the dependency
// isolation directory, the secrets file, log files and the PID file.
var DefaultExcludes = []string{
	".DS_Store",
	".git",
	"venv",
	".env",
	"*.log",
	"*.pid",
}

// Mirror makes a destination tree match a source tree via rsync.
type Mirror struct {
	r runner.Runner
}

func New(r runner.Runner) Mirror { return Mirror{r: r} }

// Pull mirrors host:remoteDir into localDir.
func (m Mirror) Pull(ctx context.Context, host, remoteDir, localDir string, excludes []string) error {
	return m.sync(ctx, remoteSpec(host, remoteDir), withSlash(localDir), excludes)
}

// Push mirrors localDir onto host:remoteDir.
func (m Mirror) Push(ctx context.Context, host, localDir, remoteDir string, excludes []string) error {
	return m.sync(ctx, withSlash(localDir), remoteSpec(host, remoteDir), excludes)
}

func (m Mirror) sync(ctx context.Context, src, dst string, excludes []string) error {
	if len(excludes) == 0 {
		excludes = DefaultExcludes
	}
	args := Args(src, dst, excludes)
	out, err := m.r.Run(ctx, "rsync", args...)
	if err != nil {
		return fmt.Errorf("rsync %s -> %s: %w: %s", src, dst, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Args builds the rsync argument list for a one-way mirror of src onto
// dst with the given exclusion patterns.
func Args(src, dst string, excludes []string) []string {
	args := []string{"-az", "--delete"}
	for _, e := range excludes {
		args = append(args, "--exclude="+e)
	}
	return append(args, src, dst)
}

// remoteSpec renders host:dir/ in rsync syntax. The trailing slash makes
// rsync mirror directory contents rather than the directory itself.
func remoteSpec(host, dir string) string {
	return host + ":" + withSlash(dir)
}

func withSlash(dir string) string {
	if strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

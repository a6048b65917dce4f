package host

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultSocketDir is where per-session sockets live when the config
// does not say otherwise: the user runtime dir when the system provides
// one, a uid-scoped tmp dir when it does not.
func DefaultSocketDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "easel")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("easel-%d", os.Getuid()))
}

// listenSession binds a fresh unix socket for one session. A stale
// socket left by a dead host is removed; anything else squatting on the
// path is an error. The socket itself is private to the user.
func listenSession(path string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "create socket dir")
	}
	if st, err := os.Lstat(path); err == nil {
		if st.Mode()&os.ModeSocket == 0 {
			return nil, errors.Errorf("socket path %s exists and is not a socket", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, errors.Wrap(err, "remove stale socket")
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "stat socket path")
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, errors.Wrap(err, "listen unix")
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, errors.Wrap(err, "chmod socket")
	}
	return ln, nil
}

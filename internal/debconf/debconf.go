// Package debconf persists chosen ports into the debconf database so
// package reconfigurations and upgrades can reuse them.
package debconf

import (
	"context"
	"fmt"
	"strings"

	"github.com/learningequality/kolibri-server-ctl/internal/config"
	"github.com/learningequality/kolibri-server-ctl/internal/errors"
	"github.com/learningequality/kolibri-server-ctl/internal/logging"
	"github.com/learningequality/kolibri-server-ctl/internal/system"
)

// Question names owned by the kolibri-server package.
const (
	PortQuestion    = "kolibri-server/port"
	ZipPortQuestion = "kolibri-server/zip_content_port"
)

// Session accumulates SET commands for one debconf-communicate dialog.
// Close runs the dialog: every buffered line followed by STOP is fed to
// debconf-communicate on stdin. There is no fallback when the program is
// absent; the session is only used post-install where it must exist.
type Session struct {
	exec  system.CommandExecutor
	owner string
	lines []string
}

// NewSession creates a session for the kolibri-server debconf owner.
func NewSession(exec system.CommandExecutor) *Session {
	return &Session{exec: exec, owner: config.DebconfOwner}
}

// Set buffers a SET command for the given question.
func (s *Session) Set(question, value string) {
	s.lines = append(s.lines, fmt.Sprintf("SET %s %s", question, value))
}

// Close terminates the dialog with STOP and flushes everything to
// debconf-communicate in one noninteractive run.
func (s *Session) Close(ctx context.Context) error {
	input := strings.Join(append(s.lines, "STOP"), "\n") + "\n"

	logging.Debug("updating debconf database", "owner", s.owner, "commands", len(s.lines))
	out, err := s.exec.ExecuteWithStdin(ctx, input, "debconf-communicate", "-fnoninteractive", s.owner)
	if err != nil {
		logging.Debug("debconf-communicate failed", "output", string(out))
		return errors.DebconfError(err)
	}
	return nil
}

// SetPorts records the listening and zip content ports in the debconf
// database in a single dialog.
func SetPorts(ctx context.Context, exec system.CommandExecutor, port, zipPort int) error {
	session := NewSession(exec)
	session.Set(PortQuestion, fmt.Sprintf("%d", port))
	session.Set(ZipPortQuestion, fmt.Sprintf("%d", zipPort))
	return session.Close(ctx)
}

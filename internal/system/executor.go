package system

import (
	"context"
	"os"
	"os/exec"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/learningequality/kolibri-server-ctl/internal/logging"
)

// osExecutor implements CommandExecutor using real OS operations.
type osExecutor struct{}

func (e *osExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	logging.Debug("executing command", "cmd", shellquote.Join(append([]string{name}, args...)...))
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

func (e *osExecutor) ExecuteWithStdin(ctx context.Context, stdin string, name string, args ...string) ([]byte, error) {
	logging.Debug("executing command with stdin", "cmd", shellquote.Join(append([]string{name}, args...)...))
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.CombinedOutput()
}

func (e *osExecutor) StartPipeline(ctx context.Context, producer, consumer Command) error {
	logging.Debug("starting pipeline",
		"producer", shellquote.Join(append([]string{producer.Name}, producer.Args...)...),
		"consumer", shellquote.Join(append([]string{consumer.Name}, consumer.Args...)...))

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	prod := exec.CommandContext(ctx, producer.Name, producer.Args...)
	prod.Stdout = w
	cons := exec.CommandContext(ctx, consumer.Name, consumer.Args...)
	cons.Stdin = r

	if err := prod.Start(); err != nil {
		r.Close()
		w.Close()
		return err
	}
	if err := cons.Start(); err != nil {
		r.Close()
		w.Close()
		prod.Process.Release()
		return err
	}

	// Close our copies of the pipe so the consumer sees EOF as soon as the
	// producer exits, then release both children. Deliberately no Wait: the
	// pair must not block this process from exiting.
	r.Close()
	w.Close()
	prod.Process.Release()
	cons.Process.Release()
	return nil
}

package system

import (
	"context"
	"errors"
	"io/fs"
	"testing"
)

func TestMockFS_WriteThenRead(t *testing.T) {
	m := NewMockFS()

	if err := m.WriteFile("/home/kolibri/options.ini", []byte("[Deployment]\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := m.ReadFile("/home/kolibri/options.ini")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "[Deployment]\n" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestMockFS_ReadMissingFile(t *testing.T) {
	m := NewMockFS()

	_, err := m.ReadFile("/nope")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestMockFS_AppendCreatesFile(t *testing.T) {
	m := NewMockFS()

	if err := m.AppendFile("/home/kolibri/nginx.conf", []byte("server{}\n"), 0644); err != nil {
		t.Fatalf("AppendFile failed: %v", err)
	}

	data, ok := m.GetFile("/home/kolibri/nginx.conf")
	if !ok || string(data) != "server{}\n" {
		t.Errorf("unexpected content: %q (present=%v)", data, ok)
	}
}

func TestMockFS_AppendExtendsFile(t *testing.T) {
	m := NewMockFS()
	m.AddFile("/f", []byte("first\n"), 0644)

	if err := m.AppendFile("/f", []byte("second\n"), 0644); err != nil {
		t.Fatalf("AppendFile failed: %v", err)
	}

	data, _ := m.GetFile("/f")
	if string(data) != "first\nsecond\n" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestMockFS_ErrorInjection(t *testing.T) {
	m := NewMockFS()
	injected := errors.New("disk full")
	m.WriteFileErr = injected

	if err := m.WriteFile("/f", nil, 0644); !errors.Is(err, injected) {
		t.Errorf("expected injected error, got %v", err)
	}
}

func TestMockExecutor_RecordsCommands(t *testing.T) {
	m := NewMockExecutor()

	if _, err := m.Execute(context.Background(), "service", "redis", "status"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	last, ok := m.LastCommand()
	if !ok {
		t.Fatal("no command recorded")
	}
	if last.Name != "service" || len(last.Args) != 2 || last.Args[0] != "redis" {
		t.Errorf("unexpected command: %+v", last)
	}
}

func TestMockExecutor_RecordsStdin(t *testing.T) {
	m := NewMockExecutor()

	if _, err := m.ExecuteWithStdin(context.Background(), "STOP\n", "debconf-communicate"); err != nil {
		t.Fatalf("ExecuteWithStdin failed: %v", err)
	}

	last, _ := m.LastCommand()
	if last.Stdin != "STOP\n" {
		t.Errorf("stdin not recorded: %q", last.Stdin)
	}
}

func TestMockExecutor_Responses(t *testing.T) {
	m := NewMockExecutor()
	wantErr := errors.New("exit status 3")
	m.AddResponse("service redis", nil, wantErr)

	_, err := m.Execute(context.Background(), "service", "redis", "status")
	if !errors.Is(err, wantErr) {
		t.Errorf("expected configured error, got %v", err)
	}

	// Unconfigured command falls back to the default response.
	out, err := m.Execute(context.Background(), "true")
	if err != nil || out != nil {
		t.Errorf("expected default response, got %q, %v", out, err)
	}
}

func TestMockExecutor_RecordsPipelines(t *testing.T) {
	m := NewMockExecutor()

	err := m.StartPipeline(context.Background(),
		Command{Name: "redis-cli", Args: []string{"-n", "0", "--scan"}},
		Command{Name: "xargs", Args: []string{"--no-run-if-empty", "redis-cli", "unlink"}})
	if err != nil {
		t.Fatalf("StartPipeline failed: %v", err)
	}

	if len(m.Pipelines) != 1 {
		t.Fatalf("expected 1 pipeline, got %d", len(m.Pipelines))
	}
	if m.Pipelines[0].Producer.Name != "redis-cli" || m.Pipelines[0].Consumer.Name != "xargs" {
		t.Errorf("unexpected pipeline: %+v", m.Pipelines[0])
	}
}

func TestMockExecutor_Reset(t *testing.T) {
	m := NewMockExecutor()
	m.Execute(context.Background(), "true")
	m.StartPipeline(context.Background(), Command{Name: "a"}, Command{Name: "b"})

	m.Reset()

	if len(m.Commands) != 0 || len(m.Pipelines) != 0 {
		t.Error("Reset did not clear recorded invocations")
	}
}

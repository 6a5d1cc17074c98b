package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

// silenceOutput stubs both output seams so REPL tests write nothing,
// prompts included, to stdout.
func silenceOutput(t *testing.T) {
	t.Helper()
	origPrintln, origPrintf := printlnFn, printfFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	printfFn = func(string, ...any) (int, error) { return 0, nil }
	t.Cleanup(func() {
		printlnFn = origPrintln
		printfFn = origPrintf
	})
}

type fakeExec struct {
	calls []string
	args  []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) statusLine() string { return "" }

func (f *fakeExec) SignUp(ctx context.Context) error  { return f.record("signup") }
func (f *fakeExec) SignIn(ctx context.Context) error  { return f.record("signin") }
func (f *fakeExec) SignOut(ctx context.Context) error { return f.record("signout") }

func (f *fakeExec) ResetPassword(ctx context.Context) error { return f.record("reset") }

func (f *fakeExec) ResendVerification(ctx context.Context) error {
	return f.record("resend")
}

func (f *fakeExec) SignConsent(ctx context.Context) error { return f.record("consent") }
func (f *fakeExec) Withdraw(ctx context.Context) error    { return f.record("withdraw") }

func (f *fakeExec) SetScope(ctx context.Context, scope string) error {
	f.args = append(f.args, scope)
	return f.record("scope")
}

func (f *fakeExec) StageFile(ctx context.Context, path string) error {
	f.args = append(f.args, path)
	return f.record("upload")
}

func (f *fakeExec) ListQueue(ctx context.Context) error  { return f.record("queue") }
func (f *fakeExec) SyncNow(ctx context.Context) error    { return f.record("sync") }
func (f *fakeExec) ShowStatus(ctx context.Context) error { return f.record("status") }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silenceOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"signup",
		"signin",
		"consent",
		"scope all_qualified_researchers",
		"upload /tmp/mole.jpg",
		"queue",
		"sync",
		"status",
		"withdraw",
		"signout",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), bufio.NewScanner(input), exec)

	want := []string{"signup", "signin", "consent", "scope", "upload", "queue", "sync", "status", "withdraw", "signout"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, want)
	}
	for i := range want {
		if exec.calls[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q", i, exec.calls[i], want[i])
		}
	}
	if len(exec.args) != 2 || exec.args[0] != "all_qualified_researchers" || exec.args[1] != "/tmp/mole.jpg" {
		t.Fatalf("args mismatch: %v", exec.args)
	}
}

func TestRunREPL_PromptGoesThroughSeam(t *testing.T) {
	silenceOutput(t)

	var prompts []string
	printfFn = func(format string, args ...any) (int, error) {
		prompts = append(prompts, format)
		return 0, nil
	}

	input := strings.NewReader("status\nexit\n")
	runREPL(context.Background(), bufio.NewScanner(input), &fakeExec{})

	// one prompt per read line
	if len(prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(prompts))
	}
	for _, p := range prompts {
		if !strings.HasPrefix(p, "study ") {
			t.Fatalf("unexpected prompt format %q", p)
		}
	}
}

func TestRunREPL_ArgumentlessScopeAndUpload(t *testing.T) {
	silenceOutput(t)

	input := strings.NewReader("scope\nupload\nquit\n")

	exec := &fakeExec{}
	runREPL(context.Background(), bufio.NewScanner(input), exec)

	if len(exec.calls) != 0 {
		t.Fatalf("expected usage hints only, got calls %v", exec.calls)
	}
}

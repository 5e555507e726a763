package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Contacts(ctx context.Context) error      { return f.record("contacts") }
func (f *fakeExec) AddContact(ctx context.Context) error    { return f.record("add") }
func (f *fakeExec) DeleteContact(ctx context.Context) error { return f.record("del") }
func (f *fakeExec) Open(ctx context.Context) error          { return f.record("open") }
func (f *fakeExec) Send(ctx context.Context) error          { return f.record("send") }
func (f *fakeExec) Profile(ctx context.Context) error       { return f.record("profile") }
func (f *fakeExec) Back(ctx context.Context) error          { return f.record("back") }
func (f *fakeExec) DeleteAccount(ctx context.Context) error { return f.record("delete-account") }

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"contacts",
		"add",
		"open",
		"send",
		"profile",
		"foobar",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "contacts", "add", "open", "send", "profile", "logout"}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	sc := bufio.NewScanner(strings.NewReader("contacts\n"))
	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "" }, sc)
}

func TestRunREPL_ShortAliases(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	sc := bufio.NewScanner(strings.NewReader("c\nquit\n"))
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 1 || exec.calls[0] != "contacts" {
		t.Fatalf("got %v", exec.calls)
	}
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Contacts(ctx context.Context) error
	AddContact(ctx context.Context) error
	DeleteContact(ctx context.Context) error
	Open(ctx context.Context) error
	Send(ctx context.Context) error
	Profile(ctx context.Context) error
	Back(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Kontakta CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             — show available commands
//	  - register         — create an account
//	  - login            — authenticate
//	  - exit | quit      — leave the program
//
//	Logged in:
//	  - help             — show available commands
//	  - contacts | c     — show the contact list
//	  - add              — add a contact
//	  - del              — delete a contact
//	  - open             — open a contact's message thread
//	  - send             — send a message in the open thread
//	  - profile          — show the account profile
//	  - back             — return to the previous view
//	  - delete-account   — remove the account and all its data
//	  - logout           — log out
//	  - exit | quit      — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("kk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (c)ontacts, add, del, open, send, profile, back, delete-account, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "c", "contacts":
			_ = a.Contacts(ctx)

		case "add":
			_ = a.AddContact(ctx)

		case "del":
			_ = a.DeleteContact(ctx)

		case "open":
			_ = a.Open(ctx)

		case "send":
			_ = a.Send(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "back":
			_ = a.Back(ctx)

		case "delete-account":
			_ = a.DeleteAccount(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

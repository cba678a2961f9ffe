package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	notifyActivity()
	Register(ctx context.Context, args []string) error
	Verify(ctx context.Context, args []string) error
	Resend(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the account CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'; remaining tokens are passed as arguments.
// Every command is reported as user activity first. Handler errors are
// printed and the loop continues. The loop exits on EOF or when the user
// types "exit" or "quit".
//
//	Not logged in:
//	  - help                 show available commands
//	  - register             create an account
//	  - verify [token]       confirm the email address
//	  - resend [email]       send the verification email again
//	  - login [email]        sign in
//	  - exit | quit          leave the program
//
//	Logged in:
//	  - whoami               show the current user
//	  - refresh              extend the session and reload the user
//	  - logout               sign out
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("acct %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		a.notifyActivity()

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, refresh, logout, exit")
			} else {
				printlnFn("Available commands: register, verify, resend, login, exit")
			}

		case "register":
			cmdErr = a.Register(ctx, args)

		case "verify":
			cmdErr = a.Verify(ctx, args)

		case "resend":
			cmdErr = a.Resend(ctx, args)

		case "login":
			cmdErr = a.Login(ctx, args)

		case "whoami":
			cmdErr = a.WhoAmI(ctx, args)

		case "refresh":
			cmdErr = a.Refresh(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr.Error())
		}

		if err != nil {
			return
		}
	}
}

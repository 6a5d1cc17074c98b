package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn and printfFn are test seams for user-facing output. In tests,
// replace them with stubs.
var printlnFn = fmt.Println
var printfFn = fmt.Printf

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	statusLine() string
	SignUp(ctx context.Context) error
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	ResendVerification(ctx context.Context) error
	SignConsent(ctx context.Context) error
	Withdraw(ctx context.Context) error
	SetScope(ctx context.Context, scope string) error
	StageFile(ctx context.Context, path string) error
	ListQueue(ctx context.Context) error
	SyncNow(ctx context.Context) error
	ShowStatus(ctx context.Context) error
}

// Root starts the read-eval-print loop on standard input. The loop exits on
// EOF or when the user types "exit" or "quit".
func (a *App) Root(ctx context.Context) {
	printlnFn("Study client (type 'help' for commands)")
	runREPL(ctx, bufio.NewScanner(os.Stdin), a)
}

func runREPL(ctx context.Context, scanner *bufio.Scanner, a execIface) {

	for {
		printfFn("study %s> ", a.statusLine())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn("Account:  signup, signin, signout, reset, resend")
			printlnFn("Consent:  consent, withdraw, scope <no_sharing|sponsors_and_partners|all_qualified_researchers>")
			printlnFn("Uploads:  upload <path>, queue, sync")
			printlnFn("Other:    status, exit")

		case "signup":
			err = a.SignUp(ctx)
		case "signin":
			err = a.SignIn(ctx)
		case "signout":
			err = a.SignOut(ctx)
		case "reset":
			err = a.ResetPassword(ctx)
		case "resend":
			err = a.ResendVerification(ctx)
		case "consent":
			err = a.SignConsent(ctx)
		case "withdraw":
			err = a.Withdraw(ctx)
		case "scope":
			if len(args) == 0 {
				printlnFn("Usage: scope <no_sharing|sponsors_and_partners|all_qualified_researchers>")
				continue
			}
			err = a.SetScope(ctx, args[0])
		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <path>")
				continue
			}
			err = a.StageFile(ctx, args[0])
		case "queue":
			err = a.ListQueue(ctx)
		case "sync":
			err = a.SyncNow(ctx)
		case "status":
			err = a.ShowStatus(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}

func (a *App) statusLine() string {
	email, err := a.session.UserEmail(context.Background())
	if err != nil || email == "" {
		return ""
	}
	if !a.session.IsSignedIn() {
		return fmt.Sprintf("(%s signed-out) ", email)
	}
	return fmt.Sprintf("(%s) ", email)
}

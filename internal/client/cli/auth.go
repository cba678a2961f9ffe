package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// errNoInput is returned when a required prompt was left empty.
var errNoInput = errors.New("input required")

func (a *App) prompt(label string) (string, error) {
	return getSimpleText(a.reader, label, a.out)
}

func (a *App) required(label string) (string, error) {
	v, err := a.prompt(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", errNoInput
	}
	return v, nil
}

// argOrPrompt returns args[0] when given, otherwise asks for it.
func (a *App) argOrPrompt(args []string, label string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	return a.required(label)
}

// Register prompts for email, name and password and creates an account.
// The account still has to be verified before it can sign in.
func (a *App) Register(ctx context.Context, _ []string) error {
	email, err := a.required("Enter email")
	if err != nil {
		return err
	}
	first, err := a.prompt("First name (optional)")
	if err != nil {
		return err
	}
	last, err := a.prompt("Last name (optional)")
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.ctrl.SignUp(ctx, email, string(password), first, last)
	if err != nil {
		return err
	}

	if res.NeedsVerification {
		printlnFn("Account created. Check your inbox, then run: verify <token>")
	}
	return nil
}

// Verify consumes the verification token from the email.
func (a *App) Verify(ctx context.Context, args []string) error {
	token, err := a.argOrPrompt(args, "Enter verification token")
	if err != nil {
		return err
	}
	if err := a.ctrl.VerifyEmail(ctx, token); err != nil {
		return err
	}
	printlnFn("Email verified. You can now log in.")
	return nil
}

// Resend asks for another verification email.
func (a *App) Resend(ctx context.Context, args []string) error {
	email, err := a.argOrPrompt(args, "Enter email")
	if err != nil {
		return err
	}
	if err := a.ctrl.ResendVerification(ctx, email); err != nil {
		return err
	}
	printlnFn("Verification email sent.")
	return nil
}

// Login prompts for credentials, signs in, and starts the keep-alive loop.
func (a *App) Login(ctx context.Context, args []string) error {
	email, err := a.argOrPrompt(args, "Enter email")
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.ctrl.SignIn(ctx, email, string(password)); err != nil {
		return err
	}

	a.startKeepAlive(ctx)
	if u := a.ctrl.User(); u != nil {
		printlnFn(fmt.Sprintf("Welcome, %s!", u.DisplayName()))
	}
	return nil
}

// WhoAmI prints the current user and session state.
func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	u := a.ctrl.User()
	if u == nil {
		printlnFn("Not signed in.")
		return nil
	}
	printlnFn(fmt.Sprintf("%s <%s>", u.DisplayName(), u.Email))
	printlnFn(fmt.Sprintf("  id:       %s", u.ID))
	printlnFn(fmt.Sprintf("  verified: %t", u.EmailVerified))
	printlnFn(fmt.Sprintf("  state:    %s", a.ctrl.State()))
	if exp, ok := a.ctrl.SessionExpiry(ctx); ok {
		printlnFn(fmt.Sprintf("  expires:  %s", exp.Local().Format(time.RFC1123)))
	}
	return nil
}

// Refresh extends the session and reloads the user record.
func (a *App) Refresh(ctx context.Context, _ []string) error {
	a.ctrl.RefreshSession(ctx)
	a.ctrl.RefreshUserData(ctx)
	return a.WhoAmI(ctx, nil)
}

// Logout signs out. It cannot fail.
func (a *App) Logout(ctx context.Context, _ []string) error {
	a.ctrl.SignOut(ctx)
	printlnFn("Signed out.")
	return nil
}

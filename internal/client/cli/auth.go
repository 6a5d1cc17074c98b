package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/studybridge/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignUp prompts for an email, a username and a password and creates a new
// study account. The password byte slice is wiped before returning. A full
// study is reported as such; the account is still created on the server.
func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.session.SignUp(ctx, email, username, string(password))
	if err != nil {
		if errors.Is(err, common.ErrStudyFull) {
			fmt.Println("The study is full; your account was created on a waiting basis.")
			return nil
		}
		return err
	}

	fmt.Println(resp.Message)
	fmt.Println("Check your email for a verification link, then sign in.")
	return nil
}

// SignIn prompts for credentials and authenticates. Valid credentials with
// consent still outstanding count as a successful sign-in; the user is told
// that consent is required.
func (a *App) SignIn(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.session.SignIn(ctx, username, string(password))
	if err != nil && (resp == nil || !resp.Success) {
		return err
	}
	if err != nil {
		// signed in, but the pending consent upload failed; it retries later
		a.log.Warn(ctx, "signed in with pending consent sync", "error", err)
	}

	consented, cErr := a.session.IsConsented(ctx)
	if cErr == nil && !consented {
		fmt.Println("Signed in. Consent is still required; run 'consent' to sign it.")
		return nil
	}

	fmt.Println("Signed in.")
	return nil
}

// SignOut invalidates the remote session. Local data stays on the device.
func (a *App) SignOut(ctx context.Context) error {
	if _, err := a.session.SignOut(ctx); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

// ResetPassword requests a password reset email for the entered address.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.session.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Println("Password reset email sent.")
	return nil
}

// ResendVerification requests a fresh verification email.
func (a *App) ResendVerification(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.session.ResendEmailVerification(ctx, email); err != nil {
		return err
	}
	fmt.Println("Verification email sent.")
	return nil
}

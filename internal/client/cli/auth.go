package cli

import (
	"context"
	"log"
	"os"

	"github.com/mikaelsv/kontakta/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a profile and password and creates an account. On
// success the fresh session token is already persisted and the UI moves to
// the home view.
func (a *App) Register(ctx context.Context) error {
	fullname, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.guard.Register(ctx, fullname, email, string(password))
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	printlnFn("Welcome, " + user.FullName + "!")
	a.router.Navigate("/home")
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.guard.Login(ctx, email, string(password))
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	printlnFn("Welcome back, " + user.FullName + "!")
	a.router.Navigate("/home")
	return nil
}

// Logout drops the session from every storage channel and returns to the
// login view.
func (a *App) Logout(ctx context.Context) error {
	if err := a.guard.Logout(ctx); err != nil {
		return err
	}
	a.router.Navigate("/")
	return nil
}

// DeleteAccount removes the account on the server after an explicit
// confirmation, then drops the local session.
func (a *App) DeleteAccount(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete your account and all its data? Type 'yes' to confirm", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "yes" {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.guard.DeleteAccount(ctx); err != nil {
		log.Printf("Could not delete account: %s", err.Error())
		return err
	}

	printlnFn("Account deleted.")
	a.router.Navigate("/")
	return nil
}

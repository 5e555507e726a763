package cli

import (
	"context"
	"fmt"

	"github.com/mikaelsv/kontakta/internal/client/router"
)

// registerRoutes builds the route table. The root route is the login view
// and the only public one; every other route is gated by the guard, which
// bounces a rejected session back to the root.
func (a *App) registerRoutes() error {

	if err := a.router.AddRoute("/", func(router.Params) {
		// an authenticated visitor has no business on the login view
		if a.isLoggedIn() {
			a.router.Navigate("/home")
			return
		}
		printlnFn("Not logged in. Use 'register' or 'login' to start.")
	}); err != nil {
		return err
	}

	if err := a.router.AddRoute("/home", func(router.Params) {
		ctx := context.Background()
		if !a.guard.RequireAuth(ctx, "/home") {
			return
		}
		a.showContacts(ctx)
	}); err != nil {
		return err
	}

	if err := a.router.AddRoute("/profile", func(router.Params) {
		ctx := context.Background()
		if !a.guard.RequireAuth(ctx, "/profile") {
			return
		}
		a.showProfile(ctx)
	}); err != nil {
		return err
	}

	if err := a.router.AddRoute("/messages/:contactID/:contactName", func(p router.Params) {
		ctx := context.Background()
		if !a.guard.RequireAuth(ctx, "/messages") {
			return
		}
		a.currentContactID = p["contactID"]
		a.currentContactName = p["contactName"]
		a.showMessages(ctx)
	}); err != nil {
		return err
	}

	return nil
}

func (a *App) showContacts(ctx context.Context) {
	contacts, err := a.api.ListContacts(ctx, a.guard.Token())
	if err != nil {
		printlnFn("Could not load contacts:", err.Error())
		return
	}
	if len(contacts) == 0 {
		printlnFn("No contacts yet. Use 'add' to create one.")
		return
	}
	printlnFn("Contacts:")
	for i, c := range contacts {
		printlnFn(fmt.Sprintf("  %d. %s (%s)  [%s]", i+1, c.Name, c.PhoneNumber, c.ID))
	}
}

func (a *App) showProfile(ctx context.Context) {
	user, err := a.api.Me(ctx, a.guard.Token())
	if err != nil {
		printlnFn("Could not load profile:", err.Error())
		return
	}
	printlnFn("Profile:")
	printlnFn("  Name: ", user.FullName)
	printlnFn("  Email:", user.Email)
}

func (a *App) showMessages(ctx context.Context) {
	msgs, err := a.api.ListMessages(ctx, a.guard.Token(), a.currentContactID)
	if err != nil {
		printlnFn("Could not load messages:", err.Error())
		return
	}
	printlnFn("Messages with " + a.currentContactName + ":")
	for _, m := range msgs {
		who := "me"
		if m.SentBy != "user" {
			who = a.currentContactName
		}
		printlnFn(fmt.Sprintf("  [%s] %s: %s", m.SentAt.Format("15:04"), who, m.Text))
	}
}

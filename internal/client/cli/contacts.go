package cli

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/mikaelsv/kontakta/internal/client/api"
)

// pickContact prompts for a contact by list number or id.
func (a *App) pickContact(ctx context.Context, prompt string) (*api.Contact, error) {
	contacts, err := a.api.ListContacts(ctx, a.guard.Token())
	if err != nil {
		return nil, err
	}

	choice, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return nil, err
	}

	if n, convErr := strconv.Atoi(choice); convErr == nil && n >= 1 && n <= len(contacts) {
		return &contacts[n-1], nil
	}
	for i := range contacts {
		if contacts[i].ID == choice {
			return &contacts[i], nil
		}
	}
	printlnFn("No such contact:", choice)
	return nil, nil
}

// AddContact prompts for a name and phone number and saves the contact.
func (a *App) AddContact(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Contact name", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone number", os.Stdout)
	if err != nil {
		return err
	}

	contact, err := a.api.CreateContact(ctx, a.guard.Token(), name, phone)
	if err != nil {
		log.Printf("Could not add contact: %s", err.Error())
		return err
	}

	printlnFn("Added " + contact.Name + ".")
	a.showContacts(ctx)
	return nil
}

// DeleteContact removes a contact and its message thread.
func (a *App) DeleteContact(ctx context.Context) error {
	contact, err := a.pickContact(ctx, "Which contact to delete (number or id)?")
	if err != nil || contact == nil {
		return err
	}

	if err := a.api.DeleteContact(ctx, a.guard.Token(), contact.ID); err != nil {
		log.Printf("Could not delete contact: %s", err.Error())
		return err
	}

	printlnFn("Deleted " + contact.Name + ".")
	a.showContacts(ctx)
	return nil
}

// Open navigates to a contact's message thread.
func (a *App) Open(ctx context.Context) error {
	contact, err := a.pickContact(ctx, "Which contact to open (number or id)?")
	if err != nil || contact == nil {
		return err
	}

	a.router.Navigate("/messages/" + contact.ID + "/" + contact.Name)
	return nil
}

// Send appends a message to the currently open thread.
func (a *App) Send(ctx context.Context) error {
	if a.currentContactID == "" {
		printlnFn("No open thread. Use 'open' first.")
		return nil
	}

	text, err := getSimpleText(a.reader, "Message", os.Stdout)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	if _, err := a.api.SendMessage(ctx, a.guard.Token(), a.currentContactID, text); err != nil {
		log.Printf("Could not send message: %s", err.Error())
		return err
	}

	a.showMessages(ctx)
	return nil
}

// Contacts shows the contact list view.
func (a *App) Contacts(ctx context.Context) error {
	a.router.Navigate("/home")
	return nil
}

// Profile shows the profile view.
func (a *App) Profile(ctx context.Context) error {
	a.router.Navigate("/profile")
	return nil
}

// Back returns to the previous view.
func (a *App) Back(ctx context.Context) error {
	a.router.Back()
	return nil
}

package cli

import (
	"context"

	"github.com/dmitrijs2005/policylogs/internal/client/models"
	"github.com/dmitrijs2005/policylogs/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account fields, creates the account and, if
// that worked, logs in with the same credentials.
func (a *App) Register(ctx context.Context) error {
	var r models.Registration
	var err error

	prompts := []struct {
		label string
		dst   *string
	}{
		{"Enter username", &r.Username},
		{"Enter email (optional)", &r.Email},
		{"Enter first name (optional)", &r.FirstName},
		{"Enter last name (optional)", &r.LastName},
	}
	for _, p := range prompts {
		if *p.dst, err = getSimpleText(a.reader, p.label, a.out); err != nil {
			return err
		}
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	r.Password, r.PasswordConfirm = string(password), string(confirm)

	if _, err := a.session.RegisterAndLogin(ctx, r); err != nil {
		return a.fail(err)
	}

	a.track(nil)
	a.logs.Reset()
	a.printf("Registered and logged in as %s\n", r.Username)
	return a.Refresh(ctx)
}

// Login prompts for credentials and establishes a session. The collection
// is refreshed right after a successful login.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.session.Login(ctx, username, string(password))
	if err != nil {
		return a.fail(err)
	}

	a.track(nil)
	a.logs.Reset()
	a.printf("Logged in as %s\n", s.User.DisplayName())
	return a.Refresh(ctx)
}

// Logout ends the session and drops all resident data.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.logs.Reset()
	a.setMode(ModeDisabled)
	a.printf("Logged out\n")
	return nil
}

// WhoAmI refreshes and prints the current user. When the server cannot be
// reached the cached user is shown instead.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.session.RefreshProfile(ctx)
	if err != nil {
		a.track(err)
		cached, ok := a.session.CurrentUser()
		if !ok {
			return a.fail(err)
		}
		a.printf("(cached) ")
		u = cached
	} else {
		a.track(nil)
	}

	a.printf("%s (%s)\n", u.DisplayName(), u.Username)
	if u.Email != nil && *u.Email != "" {
		a.printf("email:  %s\n", *u.Email)
	}
	if !u.DateJoined.IsZero() {
		a.printf("joined: %s\n", u.DateJoined.Format("2006-01-02"))
	}
	return nil
}

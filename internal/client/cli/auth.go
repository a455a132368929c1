package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/backoffice/internal/client/guard"
	"github.com/dmitrijs2005/backoffice/internal/client/ui"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var ErrLoginFailed = errors.New("login failed")

// Login prompts for an email and password and authenticates.
//
// On success the session is saved locally and the dashboard is shown. On
// failure the backend's message is toasted and ErrLoginFailed returned;
// an existing session is left as it was. The password is wiped before
// returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	return a.LoginWith(ctx, email, string(password))
}

// LoginWith authenticates with the given credentials.
func (a *App) LoginWith(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		a.console.Toast(ui.Failure, "Email and password are required.")
		return ErrLoginFailed
	}

	res := a.session.Login(ctx, email, password)
	if !res.OK {
		a.console.Toast(ui.Failure, res.Message)
		return fmt.Errorf("%w: %s", ErrLoginFailed, res.Message)
	}

	u := a.session.User()
	a.console.Toast(ui.Success, "Welcome, "+u.DisplayName()+"!")
	if a.router.Current().Path == "" {
		return nil
	}
	return a.navigate(ctx, guard.DashboardPath)
}

// Logout forgets the session locally. The backend is not contacted.
func (a *App) Logout(ctx context.Context) error {
	if !a.session.IsAuthenticated() {
		a.console.Toast(ui.Info, "Not logged in.")
		return nil
	}
	a.session.Logout(ctx)
	a.console.Toast(ui.Success, "Logged out.")
	if a.router.Current().Path == "" {
		return nil
	}
	return a.display(ctx, a.router.Current())
}

// Whoami prints the logged-in user.
func (a *App) Whoami(_ context.Context) error {
	u := a.session.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> id=%d role=%s\n", u.DisplayName(), u.Email, u.ID, u.RoleName())
	return nil
}

var ErrNotLoggedIn = errors.New("not logged in; run 'backoffice login' first")

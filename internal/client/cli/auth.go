package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/impify/internal/client/session"
	"github.com/dmitrijs2005/impify/internal/common"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getConfirmation = GetConfirmation

// Register prompts for name, email and password and creates an account.
// The user still has to log in afterwards.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Choose a password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, email, password, name); err != nil {
		return err
	}
	a.toaster.Success("Registration successful! Please log in.")
	return nil
}

// Login prompts for credentials and signs in. A remembered login survives
// restarts; otherwise it ends with the process.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getConfirmation(a.reader, "Remember me?", a.out)
	if err != nil {
		return err
	}

	u, err := a.authService.Login(ctx, email, password, remember)
	if err != nil {
		return err
	}

	name := email
	if u != nil && u.Name != "" {
		name = u.Name
	}
	a.toaster.Success("Welcome back, " + name + "!")
	a.router.Navigate(common.DashboardRoute)

	if !a.authService.HasConsented() {
		if err := a.Consent(ctx); err != nil {
			return err
		}
	}
	return a.Dashboard(ctx)
}

func (a *App) AdminLogin(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter admin email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter admin password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.AdminLogin(ctx, email, password); err != nil {
		return err
	}
	a.toaster.Success("Admin login successful")
	a.router.Navigate(common.DashboardRoute)
	return nil
}

// Consent asks for AI processing consent and records the answer.
func (a *App) Consent(ctx context.Context) error {
	fmt.Fprintln(a.out, "Impify uses AI to turn your study material into notes and flashcards.")
	ok, err := getConfirmation(a.reader, "Do you consent to AI processing and anonymous data collection?", a.out)
	if err != nil {
		return err
	}
	if err := a.authService.UpdateConsent(ctx, ok); err != nil {
		return err
	}
	if ok {
		a.toaster.Success("Thank you for your consent")
	} else {
		a.toaster.Info("AI features stay disabled until you consent")
	}
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.authService.ForgotPassword(ctx, email); err != nil {
		return err
	}
	a.toaster.Success("If that email is registered, a reset link is on its way")
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	a.toaster.Success("Password reset successfully. Please log in.")
	return nil
}

// Logout ends the session. The session bus takes the router back to the
// sign-in route.
func (a *App) Logout(ctx context.Context) error {
	a.authService.Logout(ctx, session.ReasonLogout)
	return nil
}

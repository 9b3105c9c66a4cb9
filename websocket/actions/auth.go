package actions

import (
	"context"

	"github.com/thesrcielos/PadelTracker/internal/dashboard"
	"github.com/thesrcielos/PadelTracker/internal/profile"
	"github.com/thesrcielos/PadelTracker/websocket/message"
)

func HandleSignIn(ctx context.Context, client *dashboard.Client, msg message.Message) error {
	var payload message.SignInPayload
	if err := decode(msg, &payload); err != nil {
		return err
	}
	_, err := client.Session.SignIn(ctx, payload.Email, payload.Password)
	return err
}

func HandleSignUp(ctx context.Context, client *dashboard.Client, msg message.Message) error {
	var payload message.SignUpPayload
	if err := decode(msg, &payload); err != nil {
		return err
	}
	_, err := client.Session.SignUp(ctx, payload.Email, payload.Password, payload.Name)
	return err
}

func HandleSignOut(ctx context.Context, client *dashboard.Client, _ message.Message) error {
	return client.Session.SignOut(ctx)
}

// HandleSignInWithProvider answers with the URL the tab has to navigate to.
func HandleSignInWithProvider(ctx context.Context, client *dashboard.Client, msg message.Message) error {
	var payload message.ProviderPayload
	if err := decode(msg, &payload); err != nil {
		return err
	}
	url, err := client.Session.SignInWithProvider(ctx, payload.Provider, payload.RedirectTo)
	if err != nil {
		return err
	}
	client.Send(dashboard.TypeProviderRedirect, message.ProviderRedirect{URL: url})
	return nil
}

func HandleUpdateProfile(ctx context.Context, client *dashboard.Client, msg message.Message) error {
	var updates profile.Updates
	if err := decode(msg, &updates); err != nil {
		return err
	}
	_, err := client.Session.UpdateProfile(ctx, updates)
	return err
}

func HandleRefreshSession(ctx context.Context, client *dashboard.Client, _ message.Message) error {
	client.Session.RefreshSession(ctx)
	return nil
}

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/solarauth/internal/client/session"
	"github.com/dmitrijs2005/solarauth/internal/common"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// credentials returns the login (prompting when empty) and the password.
// The caller must wipe the password.
func (a *App) credentials(login string) (string, []byte, error) {
	if login == "" {
		var err error
		login, err = getSimpleText(a.reader, "Enter login", a.out)
		if err != nil {
			return "", nil, err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return login, password, nil
}

func (a *App) saveSession(ctx context.Context, login, token string) error {
	return a.sessions.Save(ctx, &session.Session{Endpoint: a.endpoint(), Login: login, Token: token})
}

// useToken attaches token, or the saved session token when token is empty.
func (a *App) useToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		s, err := a.sessions.Load(ctx)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return "", fmt.Errorf("not logged in: pass -token or run login first")
			}
			return "", err
		}
		token = s.Token
	}
	a.client.SetAccessToken(token)
	return token, nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	login := fs.String("login", "", "login")
	title := fs.String("title", "", "display title (defaults to login)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	name, password, err := a.credentials(*login)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.client.Register(ctx, name, password, *title)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("registration rejected: %s", resp.ErrorMessage)
	}

	if err := a.saveSession(ctx, name, resp.TokenData); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Success!")
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	login := fs.String("login", "", "login")
	if err := fs.Parse(args); err != nil {
		return err
	}

	name, password, err := a.credentials(*login)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.client.Login(ctx, name, password)
	if err != nil {
		return err
	}

	if err := a.saveSession(ctx, name, token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", name)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) authorise(ctx context.Context, args []string) error {
	fs := newFlagSet("authorise")
	explicit := fs.String("token", "", "token to exchange (defaults to the saved one)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := a.useToken(ctx, *explicit)
	if err != nil {
		return err
	}

	fresh, err := a.client.Authorise(ctx, token)
	if err != nil {
		return err
	}

	if *explicit == "" {
		s, err := a.sessions.Load(ctx)
		if err != nil {
			return err
		}
		if err := a.saveSession(ctx, s.Login, fresh); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, fresh)
	return nil
}

func (a *App) whoami(ctx context.Context, args []string) error {
	fs := newFlagSet("whoami")
	token := fs.String("token", "", "access token (defaults to the saved one)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.useToken(ctx, *token); err != nil {
		return err
	}

	u, err := a.client.Whoami(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "id=%d login=%s title=%s\n", u.Id, u.Login, u.Title)
	return nil
}

func (a *App) can(ctx context.Context, args []string) error {
	fs := newFlagSet("can")
	token := fs.String("token", "", "access token (defaults to the saved one)")
	permission := fs.String("permission", "", "permission title")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *permission == "" {
		return fmt.Errorf("can: -permission is required")
	}

	if _, err := a.useToken(ctx, *token); err != nil {
		return err
	}

	allowed, err := a.client.UserCan(ctx, *permission)
	if err != nil {
		return err
	}
	if allowed {
		fmt.Fprintln(a.out, "allowed")
	} else {
		fmt.Fprintln(a.out, "denied")
	}
	return nil
}

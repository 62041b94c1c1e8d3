// Package cli implements the authctl command line: one subcommand per
// AuthService operation plus local session handling.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/solarauth/internal/client/client"
	"github.com/dmitrijs2005/solarauth/internal/client/config"
	"github.com/dmitrijs2005/solarauth/internal/client/session"
	pb "github.com/dmitrijs2005/solarauth/internal/proto"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var ErrUsage = errors.New("usage: authctl [-a addr] [-s session.db] [-t seconds] [-c file] " +
	"register|login|logout|authorise|whoami|can [flags]")

// AuthClient is the subset of client.GRPCClient the CLI uses.
type AuthClient interface {
	SetAccessToken(token string)
	Register(ctx context.Context, login string, password []byte, title string) (*pb.RegisterResponse, error)
	Login(ctx context.Context, login string, password []byte) (string, error)
	Authorise(ctx context.Context, token string) (string, error)
	Whoami(ctx context.Context) (*pb.User, error)
	UserCan(ctx context.Context, permission string) (bool, error)
	Close() error
}

// SessionStore persists the last obtained token.
type SessionStore interface {
	Save(ctx context.Context, s *session.Session) error
	Load(ctx context.Context) (*session.Session, error)
	Clear(ctx context.Context) error
}

type App struct {
	config   *config.Config
	client   AuthClient
	sessions SessionStore
	reader   *bufio.Reader
	out      io.Writer
	closers  []io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := session.OpenDatabase(ctx, c.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("error opening session database: %w", err)
	}

	apiClient, err := client.NewAuthClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:   c,
		client:   apiClient,
		sessions: session.NewSQLiteStore(db),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		closers:  []io.Closer{apiClient, db},
	}, nil
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (a *App) timeout() time.Duration {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return a.config.RequestTimeout
}

func (a *App) endpoint() string {
	if a.config == nil {
		return ""
	}
	return a.config.ServerEndpointAddr
}

// Run dispatches args[0] to its subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "authorise", "authorize":
		return a.authorise(ctx, rest)
	case "whoami":
		return a.whoami(ctx, rest)
	case "can":
		return a.can(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, ErrUsage)
	}
}

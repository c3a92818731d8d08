package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookbrief/bookbrief/internal/appstate"
	"github.com/bookbrief/bookbrief/internal/client"
	"github.com/bookbrief/bookbrief/internal/log"
)

const defaultServer = "http://localhost:8188"

// apiFlags are the connection flags of the commands that talk to a running
// server.
type apiFlags struct {
	server   string
	email    string
	password string
}

func (f *apiFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.server, "server", defaultServer, "base URL of the BookBrief API")
	cmd.Flags().StringVar(&f.email, "email", os.Getenv("BOOKBRIEF_EMAIL"), "account email (default $BOOKBRIEF_EMAIL)")
	cmd.Flags().StringVar(&f.password, "password", "", "account password (default $BOOKBRIEF_PASSWORD)")
}

// connect signs in and returns a client holding the session.
func (f *apiFlags) connect(ctx context.Context) (*client.Client, error) {
	password := f.password
	if password == "" {
		password = os.Getenv("BOOKBRIEF_PASSWORD")
	}
	if f.email == "" || password == "" {
		return nil, errors.New("--email and --password are required")
	}

	c := client.New(f.server, appstate.New(), client.OnUnauthorized(func() {
		log.Warn("Session rejected by the server, sign in again")
	}))
	account, err := c.Login(ctx, f.email, password)
	if err != nil {
		return nil, err
	}
	log.Debug("Signed in", zap.String("user_id", account.ID), zap.String("role", string(account.Role)))
	return c, nil
}

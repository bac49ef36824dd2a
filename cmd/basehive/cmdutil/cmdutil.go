// Package cmdutil resolves the daemon connection shared by all CLI
// subcommands.
package cmdutil

import (
	"fmt"

	"basehive/config"
	"basehive/pkg/sdk"
)

// Client resolves an SDK client from flags and the CLI config: an
// explicit --server wins, then --context, then the current context.
func Client(server, token, contextName string) (*sdk.Client, error) {
	if server != "" {
		return sdk.New(server, token), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if contextName != "" {
		ctx, ok := cfg.Contexts[contextName]
		if !ok {
			return nil, fmt.Errorf("context %q not found", contextName)
		}
		return sdk.New(ctx.Server, ctx.Token), nil
	}

	if _, ctx, ok := cfg.Current(); ok {
		return sdk.New(ctx.Server, ctx.Token), nil
	}
	return nil, fmt.Errorf("no daemon configured: pass --server or add a context")
}

// ConnFlags are the connection flags shared by every subcommand.
type ConnFlags struct {
	Server  string
	Token   string
	Context string
}

// Client resolves the SDK client for the current flag values.
func (f *ConnFlags) Client() (*sdk.Client, error) {
	return Client(f.Server, f.Token, f.Context)
}

package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSessionCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct
		Use:   "session",
		Short: "Show the credentials the client will send",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSession(global, time.Now())
		},
	}
}

func runSession(opts *GlobalOptions, now time.Time) error {
	store := opts.session

	if store.Token() == "" {
		fmt.Fprintln(opts.out, "token: none")
	} else {
		fmt.Fprintln(opts.out, "token: set")
	}

	if expiresAt, ok := store.ExpiresAt(); ok {
		state := "valid"
		if store.Expired(now) {
			state = "expired"
		}

		fmt.Fprintf(opts.out, "expires: %s (%s)\n", expiresAt.UTC().Format(time.RFC3339), state)
	}

	switch {
	case store.CSRF() != "":
		fmt.Fprintln(opts.out, "csrf: set")
	case opts.client.ResolvedCSRF() != "":
		fmt.Fprintln(opts.out, "csrf: set (cookie)")
	default:
		fmt.Fprintln(opts.out, "csrf: none")
	}

	fmt.Fprintln(opts.out, "base route:", opts.client.BaseRoute())

	return nil
}

// Package app implements the kgrest command line: raw calls against the
// knowledge-graph API and a few typed node commands, all going through the
// rest client so they carry the session credentials from the environment.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/jmespath/go-jmespath"
	"github.com/oseducation/kgrest/config"
	"github.com/oseducation/kgrest/logutil"
	"github.com/oseducation/kgrest/rest"
	"github.com/oseducation/kgrest/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type GlobalOptions struct {
	LogLevel    string
	ShowHeaders bool
	Filter      string

	filter  *jmespath.JMESPath
	client  *rest.Client
	session *session.Store
	logger  zerolog.Logger
	out     io.Writer
}

func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{} //nolint:exhaustruct

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "kgrest",
		Short: "Call the knowledge-graph REST API",
		Long: `kgrest sends requests to the knowledge-graph REST API with the session
credentials found in the environment (KG_TOKEN, KG_CSRF, KG_COOKIE).

The API location is read from KG_API_URL and KG_API_VERSION. A .env file in
the working directory is loaded first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level, overrides LOG_LEVEL")
	cmd.PersistentFlags().BoolVar(&opts.ShowHeaders, "headers", false, "print response headers before the body")
	cmd.PersistentFlags().StringVar(&opts.Filter, "filter", "", "JMESPath expression applied to the printed data")

	cmd.AddCommand(
		newGetCommand(opts),
		newPostCommand(opts),
		newPutCommand(opts),
		newDeleteCommand(opts),
		newNodesCommand(opts),
		newSessionCommand(opts),
	)

	return cmd
}

func (o *GlobalOptions) init(cmd *cobra.Command) error {
	if o.Filter != "" {
		filter, err := jmespath.Compile(o.Filter)
		if err != nil {
			return fmt.Errorf("invalid --filter %q: %w", o.Filter, err)
		}

		o.filter = filter
	}

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}

	o.logger = logutil.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogConsole)

	clientOpts, err := cfg.ClientOptions(o.logger)
	if err != nil {
		return fmt.Errorf("failed to configure client: %w", err)
	}

	o.client = rest.New(cfg.APIURL, clientOpts...)
	o.out = cmd.OutOrStdout()

	o.session = session.New()
	o.session.Login(cfg.Token, cfg.CSRF)
	o.session.Bind(o.client)

	o.logger.Debug().
		Str("base_route", o.client.BaseRoute()).
		Bool("authenticated", cfg.Token != "").
		Msg("Client configured")

	return nil
}

func (o *GlobalOptions) printHeaders(headers rest.Headers) {
	if !o.ShowHeaders {
		return
	}

	for _, key := range slices.Sorted(maps.Keys(headers)) {
		fmt.Fprintf(o.out, "%s: %s\n", key, headers[key])
	}

	fmt.Fprintln(o.out)
}

func (o *GlobalOptions) printJSON(data any) error {
	if o.filter != nil {
		filtered, err := o.applyFilter(data)
		if err != nil {
			return err
		}

		data = filtered
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	_, err = fmt.Fprintln(o.out, string(encoded))

	return err
}

// applyFilter runs the --filter expression over data as it would appear in
// JSON, so struct field names are matched by their json tags.
func (o *GlobalOptions) applyFilter(data any) (any, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}

	var generic any
	if err := json.Unmarshal(encoded, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}

	result, err := o.filter.Search(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to apply --filter: %w", err)
	}

	return result, nil
}

// describeError prefixes client errors with their kind, status and server
// error id so they can be told apart on the terminal.
func describeError(err error) error {
	clientErr, ok := rest.AsClientError(err)
	if !ok {
		return err
	}

	var prefix strings.Builder

	fmt.Fprintf(&prefix, "%s error", clientErr.Kind)

	if clientErr.StatusCode != 0 {
		fmt.Fprintf(&prefix, " (status %d)", clientErr.StatusCode)
	}

	if clientErr.ServerErrorID != "" {
		fmt.Fprintf(&prefix, " [%s]", clientErr.ServerErrorID)
	}

	return fmt.Errorf("%s: %w", prefix.String(), err)
}

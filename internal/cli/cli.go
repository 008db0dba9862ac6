// Package cli implements the portalctl commands.
package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/portal-sdk/portal-sdk-go/application/communicator"
	"github.com/portal-sdk/portal-sdk-go/application/config"
	"github.com/portal-sdk/portal-sdk-go/application/session"
	"github.com/portal-sdk/portal-sdk-go/domain/entities"
	"github.com/portal-sdk/portal-sdk-go/domain/errors"
	"github.com/portal-sdk/portal-sdk-go/infrastructure/nethttp"
	"github.com/portal-sdk/portal-sdk-go/infrastructure/prompter"
	sdklog "github.com/portal-sdk/portal-sdk-go/log"
)

// ErrRequestsFailed is the kind of the error returned when at least one
// request of a command failed. Each failure has already been logged.
var ErrRequestsFailed = stdErrors.New("one or more requests failed")

type globalFlags struct {
	configPath string
	overrides  []string
	debug      bool
}

type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	flags  globalFlags
	log    zerolog.Logger
}

// summary is what portalctl prints for one exchange.
type summary struct {
	cookies []string
	status  string
	url     string
	body    string
	size    uint64
}

// NewRootCmd builds the portalctl command tree. Prompted form fields are read
// from in, results go to out and logs to errOut.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Talk to a cookie-session web portal from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := zerolog.InfoLevel
			if a.flags.debug {
				level = zerolog.DebugLevel
			}
			a.log = zerolog.New(zerolog.ConsoleWriter{Out: a.errOut, NoColor: true, TimeFormat: time.Kitchen}).
				Level(level).With().Timestamp().Logger()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "path to a YAML transport config")
	pf.StringArrayVar(&a.flags.overrides, "set", nil, "override a config key (key=value), may be repeated")
	pf.BoolVar(&a.flags.debug, "debug", false, "log every exchange with credentials masked")

	root.AddCommand(a.newGetCmd(), a.newPostCmd(), a.newSchemaCmd())
	return root
}

func (a *app) newGetCmd() *cobra.Command {
	var (
		params            map[string]string
		ignoreContentType bool
		timeout           time.Duration
		showBody          bool
	)

	cmd := &cobra.Command{
		Use:   "get URL [URL...]",
		Short: "GET one or more URLs through a single session",
		Long: `Fetches every URL in order through one session, so cookies set by an
earlier response are sent with the later requests.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comm, err := a.communicator()
			if err != nil {
				return err
			}
			var failures []string
			for _, u := range args {
				action := entities.NewAction(u,
					entities.WithData(params),
					entities.WithIgnoreContentType(ignoreContentType),
					entities.WithTimeout(timeout))
				if err := a.run(cmd.Context(), comm, action, showBody); err != nil {
					failures = append(failures, fmt.Sprintf("%s: %v", u, err))
				}
			}
			return requestsFailed(len(args), failures)
		},
	}

	f := cmd.Flags()
	f.StringToStringVar(&params, "param", nil, "query parameter (k=v), may be repeated")
	f.BoolVar(&ignoreContentType, "ignore-content-type", false, "accept non-text responses")
	f.DurationVar(&timeout, "timeout", session.DefaultTimeout, "request timeout")
	f.BoolVar(&showBody, "body", false, "print the response body")
	return cmd
}

func (a *app) newPostCmd() *cobra.Command {
	var (
		data     map[string]string
		prompt   []string
		showBody bool
	)

	cmd := &cobra.Command{
		Use:   "post URL",
		Short: "POST a form to URL",
		Long: `Posts the --data fields as an urlencoded form. Fields named with --prompt
and missing from --data are read line by line from stdin, so passwords stay
out of the shell history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if data == nil {
				data = make(map[string]string)
			}
			if err := a.promptFields(prompt, data); err != nil {
				return err
			}
			comm, err := a.communicator()
			if err != nil {
				return err
			}
			action := entities.NewAction(args[0],
				entities.WithMethod(entities.MethodPost),
				entities.WithData(data))
			if err := a.run(cmd.Context(), comm, action, showBody); err != nil {
				return requestsFailed(1, []string{fmt.Sprintf("%s: %v", args[0], err)})
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringToStringVar(&data, "data", nil, "form field (k=v), may be repeated")
	f.StringSliceVar(&prompt, "prompt", nil, "form fields to read from stdin when not given with --data")
	f.BoolVar(&showBody, "body", false, "print the response body")
	return cmd
}

func (a *app) newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the transport config",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			data, err := config.Schema()
			if err != nil {
				return fmt.Errorf("generate schema: %w", err)
			}
			_, err = fmt.Fprintln(a.out, string(data))
			return err
		},
	}
}

// promptFields reads the named fields missing from data. Prompts are only
// shown on a terminal.
func (a *app) promptFields(names []string, data map[string]string) error {
	if len(names) == 0 {
		return nil
	}
	p := prompter.NewCliPrompter(a.in, io.Discard)
	if p.IsInteractive() {
		p = prompter.NewCliPrompter(a.in, a.errOut)
	} else {
		a.log.Debug().Strs("fields", names).Msg("reading form fields from stdin")
	}
	return p.PromptForFields(names, data)
}

// loadConfig reads --config, if any, and applies --set overrides.
func (a *app) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if a.flags.configPath != "" {
		loaded, err := config.Load(a.flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if len(a.flags.overrides) > 0 {
		o, err := config.ParseOverrides(a.flags.overrides)
		if err != nil {
			return nil, err
		}
		if err := cfg.Apply(o); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (a *app) communicator() (*communicator.Communicator, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	a.log.Debug().Str("user_agent", cfg.UserAgent).Dur("timeout", cfg.Timeout).
		Int("max_redirects", cfg.MaxRedirects).Msg("transport configured")

	logger := sdklog.Discard()
	if a.flags.debug {
		logger = sdklog.NewLogger(a.errOut, sdklog.WithLevel(slog.LevelDebug))
	}
	s := session.NewSession(
		session.WithConnectionFactory(nethttp.NewConnectionFactory(nethttp.WithConfig(cfg))),
		session.WithLogger(logger),
	)
	return communicator.NewCommunicator(communicator.WithSession(s)), nil
}

// requestsFailed folds per-request failures into one error of kind
// ErrRequestsFailed, or returns nil when there are none.
func requestsFailed(total int, failures []string) error {
	if len(failures) == 0 {
		return nil
	}
	h := errors.NewErrorHandler(errors.WithErrorKind(ErrRequestsFailed))
	return h.HandleError(fmt.Sprintf("%d of %d requests failed", len(failures), total), failures)
}

// run sends one action and prints its summary.
func (a *app) run(ctx context.Context, comm *communicator.Communicator, action entities.Action, showBody bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res := communicator.PerformRequest(ctx, comm, action, summarize)
	sum, err := res.Get()
	if err != nil {
		ev := a.log.Error().Err(err).Str("method", string(action.Method)).Str("url", action.URL)
		if d := errors.ToErrorDetail(err); d != nil {
			ev = ev.Str("code", d.Code)
		}
		ev.Msg("request failed")
		return err
	}

	fmt.Fprintf(a.out, "%s %s -> %s (%s)\n", action.Method, sum.url, sum.status, humanize.Bytes(sum.size))
	if len(sum.cookies) > 0 {
		fmt.Fprintf(a.out, "cookies: %s\n", strings.Join(sum.cookies, ", "))
	}
	if showBody {
		fmt.Fprintln(a.out, sum.body)
	}
	return nil
}

func summarize(resp *entities.HTTPResponse) (summary, error) {
	return summary{
		status:  fmt.Sprintf("%d %s", resp.StatusCode, resp.StatusMessage),
		url:     resp.URL,
		cookies: slices.Sorted(maps.Keys(resp.Cookies)),
		size:    uint64(len(resp.Content)),
		body:    resp.Text(),
	}, nil
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/MarcGrol/ergsync/lib/myconfig"
	"github.com/MarcGrol/ergsync/lib/myhttpclient"
	"github.com/MarcGrol/ergsync/lib/mystore"
	"github.com/MarcGrol/ergsync/lib/mytime"
	"github.com/MarcGrol/ergsync/services/logbook"
	"github.com/MarcGrol/ergsync/services/oauth/oauthclient"
	"github.com/MarcGrol/ergsync/services/session"
)

const usage = `usage: ergsync <command> [flags]

commands:
  auth-url   print the URL that starts the authorization
  login      exchange an authorization code (-code) and store the session
  status     tell whether a session is stored and when it expires
  profile    print the user profile
  results    print the results, of one year (-year) or all of them
  total      print the total distance in meters, of one year (-year) or all results
  logout     remove the stored session
`

type app struct {
	cfg     myconfig.Client
	manager *session.Manager
	client  *logbook.Client
	out     io.Writer
}

func newApp(c context.Context, cfg myconfig.Client, out io.Writer) (*app, func(), error) {
	store, cleanup, err := mystore.New(c, cfg.Store, cfg.StoreLocation())
	if err != nil {
		return nil, nil, fmt.Errorf("error opening %s store: %w", cfg.Store, err)
	}

	sender := myhttpclient.New(cfg.HTTPTimeout)

	var endpoint session.TokenEndpoint
	if cfg.UsesForwarder() {
		endpoint = session.NewForwarderEndpoint(cfg.ForwarderURL, sender)
	} else {
		endpoint = oauthclient.NewOAuthClient(cfg.Provider.TokenURL(), cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI, sender)
	}
	manager := session.NewManager(store, endpoint, mytime.RealNower{})

	target := logbook.DirectTarget(cfg.APIBaseURL())
	if cfg.ProxyURL != "" {
		target = logbook.ProxyTarget(cfg.ProxyURL, cfg.CredentialHeader)
	}

	return &app{
		cfg:     cfg,
		manager: manager,
		client:  logbook.NewClient(manager, sender, target),
		out:     out,
	}, cleanup, nil
}

func (a *app) run(c context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	command, args := args[0], args[1:]
	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	flags.SetOutput(a.out)

	switch command {
	case "auth-url":
		state := flags.String("state", "", "opaque value echoed back on the redirect")
		if err := flags.Parse(args); err != nil {
			return err
		}
		fmt.Fprintln(a.out, oauthclient.ComposeAuthURL(oauthclient.ComposeAuthURLRequest{
			AuthURL:     a.cfg.AuthorizeURL(),
			ClientID:    a.cfg.ClientID,
			RedirectURI: a.cfg.RedirectURI,
			State:       *state,
		}))
		return nil

	case "login":
		code := flags.String("code", "", "authorization code from the redirect")
		if err := flags.Parse(args); err != nil {
			return err
		}
		if *code == "" {
			return fmt.Errorf("login needs -code")
		}
		_, err := a.manager.Login(c, *code)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "logged in")
		return nil

	case "status":
		return a.status(c)

	case "profile":
		profile, err := a.client.FetchUserProfile(c)
		if err != nil {
			return err
		}
		return a.printJSON(profile)

	case "results", "total":
		year := flags.Int("year", 0, "calendar year, all results when omitted")
		if err := flags.Parse(args); err != nil {
			return err
		}
		results, err := a.fetchResults(c, *year)
		if err != nil {
			return err
		}
		if command == "total" {
			fmt.Fprintf(a.out, "%d results, %.0f meters\n", len(results), logbook.TotalMeters(results))
			return nil
		}
		return a.printJSON(results)

	case "logout":
		err := a.manager.Logout(c)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "logged out")
		return nil

	default:
		return fmt.Errorf("unknown command '%s'\n%s", command, usage)
	}
}

func (a *app) status(c context.Context) error {
	record, err := a.manager.Load(c)
	if err != nil {
		return err
	}
	if record == nil || record.AccessToken == "" {
		fmt.Fprintln(a.out, "not authenticated")
		return nil
	}
	expiresAt, known := record.ExpiresAt()
	switch {
	case !known:
		fmt.Fprintln(a.out, "authenticated")
	case a.manager.IsExpired(*record):
		fmt.Fprintf(a.out, "authenticated, token expired at %s (refresh on next request)\n", expiresAt.Format(time.RFC3339))
	default:
		fmt.Fprintf(a.out, "authenticated, token valid until %s\n", expiresAt.Format(time.RFC3339))
	}
	return nil
}

func (a *app) fetchResults(c context.Context, year int) ([]logbook.Result, error) {
	if year == 0 {
		return a.client.FetchAllResults(c)
	}
	return a.client.FetchResultsForYear(c, year)
}

func (a *app) printJSON(v any) error {
	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

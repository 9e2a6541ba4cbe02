// cmd/leadctl/main.go

// leadctl is a terminal front-end for the leadscout API. Gated commands run
// the same guard predicates the web client uses before touching the network
// surface they protect.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"leadscout-service/internal/client"
	"leadscout-service/internal/client/guard"

	"github.com/joho/godotenv"
)

const usage = `Usage: leadctl <command> [flags]

Commands:
  login      -email -password      authenticate and store a session
  logout                           revoke the session
  whoami                           show the logged-in principal
  plans                            list subscription plans
  subscribe  -plan                 start a subscription (pending payment)
  pay        -subscription -amount record a payment
  scrape     -source -title [...]  launch a scraping job
  jobs                             list scraping jobs
  leads                            list tracked leads
  track      -candidate [-notes]   convert a candidate into a lead
  export     [-out]                export leads as CSV
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	api, err := buildClient()
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	if err := run(ctx, api, os.Args[1], os.Args[2:]); err != nil {
		fatal(err)
	}
}

func buildClient() (*client.Client, error) {
	path, err := client.DefaultStorePath()
	if err != nil {
		return nil, err
	}
	store, err := client.NewStore(path)
	if err != nil {
		return nil, err
	}

	baseURL := os.Getenv("LEADSCOUT_API")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	api := client.New(baseURL, store)
	api.OnForcedLogout(func() {
		fmt.Fprintln(os.Stderr, "session expired, please log in again")
	})
	return api, nil
}

func run(ctx context.Context, api *client.Client, command string, args []string) error {
	guards := guard.New(api.Store(), client.NewEntitlementResolver(api))

	switch command {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		fs.Parse(args)
		if *email == "" || *password == "" {
			return fmt.Errorf("login requires -email and -password")
		}
		p, err := api.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", p.Email)
		return nil

	case "logout":
		if err := api.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	case "whoami":
		if d := guards.Auth(); !d.Allowed {
			return redirected(d)
		}
		p, err := api.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s (id %d) roles %v\n", p.Email, p.ID, p.Roles.Strings())
		return nil

	case "plans":
		plans, err := api.Plans(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCODE\tNAME\tPRICE\tPERIOD")
		for _, p := range plans {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f %s\t%s\n", p.ID, p.Code, p.Name, p.Price, p.Currency, p.Period)
		}
		return w.Flush()

	case "subscribe":
		fs := flag.NewFlagSet("subscribe", flag.ExitOnError)
		planID := fs.Int64("plan", 0, "plan ID")
		fs.Parse(args)
		if d := guards.Auth(); !d.Allowed {
			return redirected(d)
		}
		if *planID == 0 {
			return fmt.Errorf("subscribe requires -plan")
		}
		sub, err := api.Subscribe(ctx, *planID)
		if err != nil {
			return err
		}
		fmt.Printf("subscription %d created, pending payment\n", sub.ID)
		return nil

	case "pay":
		fs := flag.NewFlagSet("pay", flag.ExitOnError)
		subID := fs.Int64("subscription", 0, "subscription ID")
		amount := fs.Float64("amount", 0, "amount")
		method := fs.String("method", "CARD", "payment method")
		fs.Parse(args)
		if d := guards.Auth(); !d.Allowed {
			return redirected(d)
		}
		if *subID == 0 || *amount <= 0 {
			return fmt.Errorf("pay requires -subscription and -amount")
		}
		if err := api.Pay(ctx, *subID, *amount, *method); err != nil {
			return err
		}
		fmt.Println("payment recorded")
		return nil

	case "scrape":
		fs := flag.NewFlagSet("scrape", flag.ExitOnError)
		source := fs.String("source", "", "profile source")
		title := fs.String("title", "", "job title to search")
		sector := fs.String("sector", "", "sector filter")
		location := fs.String("location", "", "location filter")
		company := fs.String("company", "", "company filter")
		fs.Parse(args)
		if d := guards.Subscription(ctx); !d.Allowed {
			return redirected(d)
		}
		if *source == "" || *title == "" {
			return fmt.Errorf("scrape requires -source and -title")
		}
		job, err := api.LaunchScrape(ctx, *source, *title, *sector, *location, *company)
		if err != nil {
			return err
		}
		fmt.Printf("job %s launched (%s)\n", job.Reference, job.Status)
		return nil

	case "jobs":
		if d := guards.Subscription(ctx); !d.Allowed {
			return redirected(d)
		}
		jobs, err := api.Scrapes(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REFERENCE\tTITLE\tSTATUS\tPROFILES")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", j.Reference, j.Title, j.Status, j.ProfileCount)
		}
		return w.Flush()

	case "leads":
		if d := guards.Subscription(ctx); !d.Allowed {
			return redirected(d)
		}
		leads, err := api.Leads(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCANDIDATE\tSTATUS\tCREATED")
		for _, l := range leads {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", l.ID, l.CandidateID, l.Status, l.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()

	case "track":
		fs := flag.NewFlagSet("track", flag.ExitOnError)
		candidateID := fs.Int64("candidate", 0, "candidate ID")
		notes := fs.String("notes", "", "initial notes")
		fs.Parse(args)
		if d := guards.Subscription(ctx); !d.Allowed {
			return redirected(d)
		}
		if *candidateID == 0 {
			return fmt.Errorf("track requires -candidate")
		}
		l, err := api.TrackLead(ctx, *candidateID, *notes)
		if err != nil {
			return err
		}
		fmt.Printf("lead %d created\n", l.ID)
		return nil

	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		out := fs.String("out", "", "output file (default stdout)")
		fs.Parse(args)
		if d := guards.Subscription(ctx); !d.Allowed {
			return redirected(d)
		}
		dst := os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return err
			}
			defer f.Close()
			dst = f
		}
		return api.ExportLeads(ctx, dst)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// redirected translates a guard denial into the CLI equivalent of the web
// client's silent redirect.
func redirected(d guard.Decision) error {
	switch d.Redirect {
	case guard.LoginPath:
		return fmt.Errorf("not logged in, run: leadctl login")
	case guard.OfferPath:
		return fmt.Errorf("no active subscription, run: leadctl plans")
	default:
		return fmt.Errorf("access denied")
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "leadctl:", err)
	os.Exit(1)
}

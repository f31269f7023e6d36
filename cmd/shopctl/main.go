// Command shopctl drives the admin HTTP surface from a terminal. Every
// mutating command asks one question first (the note to attach, or a
// yes/no gate); cancelling the prompt sends nothing.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"shoptrack/internal/adapters/prompt"
)

const usage = `usage: shopctl [flags] <command> [args]

commands:
  checkin <selector>              open a visit (prompts for a note)
  checkout <selector>             close a visit (prompts for a note)
  hours <selector> <delta>        signed hours correction (prompts for a reason)
  exempt <selector> [amount]      credit an excused week (prompts for a reason)
  requirement <selector> <h:m:s>  set the weekly hour requirement
  timeout <selector>              force-close an open visit
  reset-timeouts <selector>       zero a member's timeout counter
  missed <address>                show a member's missed-hours debt
  sweep                           run the timeout sweep now

flags:`

func main() {
	var (
		server   string
		email    string
		password string
	)
	flag.StringVar(&server, "server", envOr("SHOPTRACK_SERVER", "http://localhost:8080"), "base URL of the shoptrack server")
	flag.StringVar(&email, "email", os.Getenv("SHOPTRACK_CTL_EMAIL"), "account email for login")
	flag.StringVar(&password, "password", os.Getenv("SHOPTRACK_CTL_PASSWORD"), "account password (prompted when empty)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	term := prompt.NewTerminal(os.Stdin, os.Stdout)
	err := run(flag.Args(), server, email, password, term)
	if errors.Is(err, prompt.ErrCanceled) {
		fmt.Println("canceled")
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "shopctl:", err)
		os.Exit(1)
	}
}

func run(args []string, server, email, password string, term prompt.Prompter) error {
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, rest := args[0], args[1:]

	if email == "" {
		return errors.New("no account email (set -email or SHOPTRACK_CTL_EMAIL)")
	}
	if password == "" {
		answer, err := term.Ask("Password for " + email)
		if err != nil {
			return err
		}
		password = answer
	}

	c := newClient(server)

	switch cmd {
	case "checkin":
		selector, err := oneArg(rest, "checkin <selector>")
		if err != nil {
			return err
		}
		note, err := term.Ask("Note for the log")
		if err != nil {
			return err
		}
		if err := c.login(email, password); err != nil {
			return err
		}
		if err := c.call("POST", "/admin/checkin", map[string]string{"Selector": selector, "Metadata": note}, nil); err != nil {
			return err
		}
		fmt.Printf("checked in %s\n", selector)

	case "checkout":
		selector, err := oneArg(rest, "checkout <selector>")
		if err != nil {
			return err
		}
		note, err := term.Ask("Note for the log")
		if err != nil {
			return err
		}
		if err := c.login(email, password); err != nil {
			return err
		}
		if err := c.call("POST", "/admin/checkout", map[string]string{"Selector": selector, "Metadata": note}, nil); err != nil {
			return err
		}
		fmt.Printf("checked out %s\n", selector)

	case "hours":
		if len(rest) != 2 {
			return errors.New("usage: hours <selector> <delta>")
		}
		selector, delta := rest[0], rest[1]
		reason, err := term.Ask("Reason for the correction")
		if err != nil {
			return err
		}
		if err := c.login(email, password); err != nil {
			return err
		}
		if err := c.call("POST", "/admin/hours", map[string]string{"Selector": selector, "Delta": delta, "Metadata": reason}, nil); err != nil {
			return err
		}
		fmt.Printf("applied %s to %s\n", delta, selector)

	case "exempt":
		if len(rest) < 1 || len(rest) > 2 {
			return errors.New("usage: exempt <selector> [amount]")
		}
		selector, amount := rest[0], ""
		if len(rest) == 2 {
			amount = rest[1]
		}
		reason, err := term.Ask("Reason for the exemption")
		if err != nil {
			return err
		}
		if err := c.login(email, password); err != nil {
			return err
		}
		if err := c.call("POST", "/admin/exempt", map[string]string{"Selector": selector, "Amount": amount, "Metadata": reason}, nil); err != nil {
			return err
		}
		fmt.Printf("exempted %s\n", selector)

	case "requirement":
		if len(rest) != 2 {
			return errors.New("usage: requirement <selector> <h:m:s>")
		}
		selector, requirement := rest[0], rest[1]
		if err := confirm(term, fmt.Sprintf("Set %s's weekly requirement to %s? (y/n)", selector, requirement)); err != nil {
			return err
		}
		if err := c.login(email, password); err != nil {
			return err
		}
		if err := c.call("POST", "/admin/requirement", map[string]string{"Selector": selector, "Requirement": requirement}, nil); err != nil {
			return err
		}
		fmt.Printf("requirement for %s set to %s\n", selector, requirement)

	case "timeout":
		selector, err := oneArg(rest, "timeout <selector>")
		if err != nil {
			return err
		}
		if err := confirm(term, fmt.Sprintf("Force-close %s's open visit? (y/n)", selector)); err != nil {
			return err
		}
		if err := c.login(email, password); err != nil {
			return err
		}
		if err := c.call("POST", "/admin/timeout", map[string]string{"Selector": selector}, nil); err != nil {
			return err
		}
		fmt.Printf("timed out %s\n", selector)

	case "reset-timeouts":
		selector, err := oneArg(rest, "reset-timeouts <selector>")
		if err != nil {
			return err
		}
		if err := confirm(term, fmt.Sprintf("Reset %s's timeout counter? (y/n)", selector)); err != nil {
			return err
		}
		if err := c.login(email, password); err != nil {
			return err
		}
		if err := c.call("POST", "/admin/reset-timeouts", map[string]string{"Selector": selector}, nil); err != nil {
			return err
		}
		fmt.Printf("reset timeouts for %s\n", selector)

	case "missed":
		address, err := oneArg(rest, "missed <address>")
		if err != nil {
			return err
		}
		if err := c.login(email, password); err != nil {
			return err
		}
		var res struct {
			Address     string
			MissedHours string
		}
		if err := c.call("GET", "/members/"+url.PathEscape(address)+"/missed-hours", nil, &res); err != nil {
			return err
		}
		fmt.Printf("missed hours for %s: %s\n", res.Address, res.MissedHours)

	case "sweep":
		if err := confirm(term, "Run the timeout sweep now? (y/n)"); err != nil {
			return err
		}
		if err := c.login(email, password); err != nil {
			return err
		}
		var res sweepResult
		if err := c.call("POST", "/admin/sweep", nil, &res); err != nil {
			return err
		}
		fmt.Println(sweepSummary(res))

	default:
		return fmt.Errorf("unknown command %q (run shopctl -h)", cmd)
	}
	return nil
}

// oneArg returns the single positional argument or a usage error.
func oneArg(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: " + usage)
	}
	return args[0], nil
}

// confirm asks a yes/no question. Anything but yes cancels.
func confirm(p prompt.Prompter, question string) error {
	answer, err := p.Ask(question)
	if err != nil {
		return err
	}
	if !isYes(answer) {
		return prompt.ErrCanceled
	}
	return nil
}

// isYes reports whether an answer affirms a yes/no prompt.
func isYes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// sweepResult mirrors the JSON body of POST /admin/sweep.
type sweepResult struct {
	CheckedIn int
	TimedOut  []string
}

// sweepSummary formats a sweep result for the terminal.
func sweepSummary(res sweepResult) string {
	if len(res.TimedOut) == 0 {
		return fmt.Sprintf("inspected %d open visits, none overdue", res.CheckedIn)
	}
	return fmt.Sprintf("inspected %d open visits, timed out %d: %s",
		res.CheckedIn, len(res.TimedOut), strings.Join(res.TimedOut, ", "))
}

// client is a logged-in HTTP session against a running server.
type client struct {
	base  string
	token string
	http  *http.Client
}

func newClient(base string) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// login exchanges credentials for a session token used on later calls.
func (c *client) login(email, password string) error {
	var res struct {
		Token string
		Role  string
	}
	if err := c.call("POST", "/api/login", map[string]string{"Email": email, "Password": password}, &res); err != nil {
		return err
	}
	c.token = res.Token
	return nil
}

// call issues one JSON request. Non-2xx responses become errors carrying
// the response body; when out is non-nil the body is decoded into it.
// Mutating requests always declare a JSON content type so the form CSRF
// guard does not apply to them.
func (c *client) call(method, path string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if method != "GET" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: "shoptrack_session", Value: c.token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

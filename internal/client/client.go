// internal/client/client.go

// Package client is the Go front-end for the leadscout API: a file-backed
// session store, a bearer-token transport with single-retry refresh, an
// entitlement resolver and typed wrappers over the REST endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"leadscout-service/internal/pkg/events"
)

// Client calls the leadscout API. All methods go through the session-aware
// Transport, so expired access tokens are refreshed transparently.
type Client struct {
	baseURL  string
	http     *http.Client
	store    *Store
	notifier *events.Bus
}

// New builds a client around the given session store. baseURL is the server
// root, e.g. "http://localhost:8080".
func New(baseURL string, store *Store) *Client {
	notifier := events.NewBus()
	t := &Transport{base: http.DefaultTransport, store: store}
	c := &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     &http.Client{Transport: t, Timeout: 30 * time.Second},
		store:    store,
		notifier: notifier,
	}
	t.refresh = c.refreshTokens
	return c
}

// Store exposes the underlying session store.
func (c *Client) Store() *Store { return c.store }

// Notifier exposes the change-notification bus. Observers subscribe to learn
// when a subscription-mutating call succeeded and re-run their entitlement
// checks.
func (c *Client) Notifier() *events.Bus { return c.notifier }

// OnForcedLogout registers a callback invoked when an unrecoverable auth
// failure cleared the session.
func (c *Client) OnForcedLogout(fn func()) {
	if t, ok := c.http.Transport.(*Transport); ok {
		t.onForcedLogout = fn
	}
}

// APIError is a non-2xx response decoded from the server envelope.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", e.Message, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if len(data) > 0 {
		// Tolerate non-envelope bodies; the status code still decides.
		_ = json.Unmarshal(data, &env)
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: env.Message, Detail: env.Error}
	}

	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// ----- Auth -----

type loginResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	User         Principal `json:"user"`
}

func (lr *loginResponse) session() Session {
	user := lr.User
	return Session{Token: lr.Token, RefreshToken: lr.RefreshToken, Principal: &user}
}

// Login authenticates and persists the new session. Any stale session is
// cleared first so a failed login never leaves old credentials behind.
func (c *Client) Login(ctx context.Context, email, password string) (*Principal, error) {
	if err := c.store.Clear(); err != nil {
		return nil, err
	}

	var lr loginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &lr)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(lr.session()); err != nil {
		return nil, err
	}
	return lr.session().Principal, nil
}

// Register creates an account and persists the resulting session.
func (c *Client) Register(ctx context.Context, email, password, fullName, company string) (*Principal, error) {
	if err := c.store.Clear(); err != nil {
		return nil, err
	}

	var lr loginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
		"company":  company,
	}, &lr)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(lr.session()); err != nil {
		return nil, err
	}
	return lr.session().Principal, nil
}

// Logout revokes the server-side session and clears local state. Local state
// is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	if cerr := c.store.Clear(); cerr != nil {
		return cerr
	}
	return err
}

// Me fetches the authenticated principal from the server.
func (c *Client) Me(ctx context.Context) (*Principal, error) {
	var p Principal
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// refreshTokens backs the transport's silent-refresh path. It goes through
// the same http.Client, but /auth/refresh is a public auth path so the
// transport neither attaches a token nor retries it.
func (c *Client) refreshTokens(ctx context.Context, refreshToken string) (*Session, error) {
	var lr loginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	}, &lr)
	if err != nil {
		return nil, err
	}
	sess := lr.session()
	return &sess, nil
}

// ----- Plans & subscriptions -----

// PlanInfo is the catalog entry shown before purchase.
type PlanInfo struct {
	ID       int64   `json:"id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Period   string  `json:"period"`
}

func (c *Client) Plans(ctx context.Context) ([]PlanInfo, error) {
	var plans []PlanInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// SubscriptionInfo is an entitlement record as served by GET /subscriptions.
type SubscriptionInfo struct {
	ID      int64      `json:"id"`
	Active  bool       `json:"active"`
	EndDate *time.Time `json:"endDate,omitempty"`
	Plan    *PlanInfo  `json:"subscriptionType,omitempty"`
}

func (c *Client) Subscriptions(ctx context.Context) ([]SubscriptionInfo, error) {
	var subs []SubscriptionInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/subscriptions", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Subscribe creates a pending subscription for the plan and publishes a
// subscription-changed notification.
func (c *Client) Subscribe(ctx context.Context, planID int64) (*SubscriptionInfo, error) {
	var sub SubscriptionInfo
	err := c.do(ctx, http.MethodPost, "/api/v1/subscriptions", map[string]int64{
		"planId": planID,
	}, &sub)
	if err != nil {
		return nil, err
	}
	c.publishSubscriptionChanged()
	return &sub, nil
}

// Pay records a payment against a subscription and publishes a
// subscription-changed notification so observers re-check entitlement.
func (c *Client) Pay(ctx context.Context, subscriptionID int64, amount float64, method string) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/payments", map[string]interface{}{
		"subscriptionId": subscriptionID,
		"amount":         amount,
		"method":         method,
	}, nil)
	if err != nil {
		return err
	}
	c.publishSubscriptionChanged()
	return nil
}

func (c *Client) publishSubscriptionChanged() {
	var userID int64
	if sess := c.store.Current(); sess != nil && sess.Principal != nil {
		userID = sess.Principal.ID
	}
	c.notifier.PublishSubscriptionChanged(userID)
}

// ----- Scraping jobs -----

// JobInfo mirrors the server's scrape job resource.
type JobInfo struct {
	ID           int64     `json:"id"`
	Reference    string    `json:"reference"`
	Source       string    `json:"source"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	ProfileCount int       `json:"profileCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (c *Client) LaunchScrape(ctx context.Context, source, title, sector, location, company string) (*JobInfo, error) {
	var job JobInfo
	err := c.do(ctx, http.MethodPost, "/api/v1/scrapes", map[string]string{
		"source":   source,
		"title":    title,
		"sector":   sector,
		"location": location,
		"company":  company,
	}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) Scrapes(ctx context.Context) ([]JobInfo, error) {
	var jobs []JobInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/scrapes", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ----- Leads -----

// LeadInfo mirrors the server's lead resource.
type LeadInfo struct {
	ID          int64     `json:"id"`
	CandidateID int64     `json:"candidateId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c *Client) Leads(ctx context.Context) ([]LeadInfo, error) {
	var leads []LeadInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/leads", nil, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (c *Client) TrackLead(ctx context.Context, candidateID int64, notes string) (*LeadInfo, error) {
	var l LeadInfo
	err := c.do(ctx, http.MethodPost, "/api/v1/leads", map[string]interface{}{
		"candidateId": candidateID,
		"notes":       notes,
	}, &l)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) UpdateLead(ctx context.Context, id int64, status, notes string) error {
	return c.do(ctx, http.MethodPatch, "/api/v1/leads/"+strconv.FormatInt(id, 10), map[string]string{
		"status": status,
		"notes":  notes,
	}, nil)
}

// ExportLeads streams the caller's pipeline as CSV into w.
func (c *Client) ExportLeads(ctx context.Context, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/leads/export", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		var env envelope
		_ = json.Unmarshal(data, &env)
		return &APIError{Status: resp.StatusCode, Message: env.Message, Detail: env.Error}
	}

	_, err = io.Copy(w, resp.Body)
	return err
}

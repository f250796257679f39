package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UnsetEndpoint is the placeholder shipped in the sample configuration.
const UnsetEndpoint = "YOUR_GOOGLE_APPS_SCRIPT_WEB_APP_URL_HERE"

// Remote defines the operations walkin performs against the clinic backend.
// It is implemented by *Client and can be faked in tests.
type Remote interface {
	Login(ctx context.Context, username, password string) (Identity, error)
	TodaysCheckins(ctx context.Context) ([]PatientVisit, error)
	AllPatients(ctx context.Context) ([]PatientVisit, error)
	PatientHistory(ctx context.Context, patientID string) (PatientHistory, error)
	SearchPatients(ctx context.Context, term string) (SearchResult, error)
	UpdateStatus(ctx context.Context, row int, status Status) error
	AssignCounselor(ctx context.Context, row int, counselor string) error
	SaveNotes(ctx context.Context, row int, notes string) error
	Analytics(ctx context.Context, days int) (Analytics, error)
	Counselors(ctx context.Context) ([]string, error)
}

var _ Remote = (*Client)(nil)

// Client talks to the clinic web app endpoint.
type Client struct {
	endpoint  *url.URL
	configErr string
	http      *http.Client
	userAgent string
	logger    zerolog.Logger
}

const (
	defaultUserAgent = "walkin/0.1"
	defaultTimeout   = 30 * time.Second
	maxBodyBytes     = 8 << 20
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger for per-call entries.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a Client for endpoint. An unset or malformed endpoint does
// not fail construction; every call then returns a configuration error
// without touching the network.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    zerolog.Nop(),
	}
	u, err := parseEndpoint(endpoint)
	if err != nil {
		c.configErr = err.Error()
	} else {
		c.endpoint = u
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has a usable endpoint.
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != nil
}

// Params are the scalar query parameters of a call. Nil values are omitted.
type Params map[string]any

// Envelope is a decoded success response. Payload fields stay raw until a
// wrapper asks for them.
type Envelope struct {
	Success bool
	Error   string
	fields  map[string]json.RawMessage
}

// Has reports whether the response carried the named field.
func (e Envelope) Has(field string) bool {
	raw, ok := e.fields[field]
	return ok && string(raw) != "null"
}

// Decode unmarshals the named field into dest. Missing fields leave dest untouched.
func (e Envelope) Decode(field string, dest any) error {
	raw, ok := e.fields[field]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("field %s: %w", field, err)
	}
	return nil
}

// Call issues one GET request for action. It never panics and every failure
// is returned as a *Error.
func (c *Client) Call(ctx context.Context, action string, params Params) (Envelope, error) {
	if c == nil {
		return Envelope{}, configError(action, "client is not initialised")
	}
	start := time.Now()
	logger := c.logger.With().
		Str("request_id", uuid.NewString()).
		Str("action", action).
		Logger()

	env, err := c.call(ctx, action, params)
	elapsed := time.Since(start)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("kind", KindOf(err).String()).
			Dur("elapsed", elapsed).
			Msg("api request failed")
		return Envelope{}, err
	}
	logger.Debug().
		Dur("elapsed", elapsed).
		Msg("api request succeeded")
	return env, nil
}

func (c *Client) call(ctx context.Context, action string, params Params) (Envelope, error) {
	if c.endpoint == nil {
		return Envelope{}, configError(action, c.configErr)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	values := url.Values{}
	values.Set("action", action)
	for key, value := range params {
		if formatted, ok := formatParam(value); ok {
			values.Set(key, formatted)
		}
	}
	reqURL := *c.endpoint
	query := reqURL.Query()
	for key, vals := range values {
		query[key] = vals
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return Envelope{}, transportError(action, fmt.Sprintf("create request: %v", err), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, transportError(action, networkMessage(err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Envelope{}, transportError(action,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, statusText(resp)), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Envelope{}, transportError(action, fmt.Sprintf("read response: %v", err), err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Envelope{}, parseError(action, err)
	}
	env := Envelope{fields: fields}
	if raw, ok := fields["success"]; ok {
		if err := json.Unmarshal(raw, &env.Success); err != nil {
			return Envelope{}, parseError(action, fmt.Errorf("field success: %w", err))
		}
	}
	if raw, ok := fields["error"]; ok {
		_ = json.Unmarshal(raw, &env.Error)
	}
	if !env.Success {
		return Envelope{}, applicationError(action, strings.TrimSpace(env.Error))
	}
	return env, nil
}

// Login authenticates a dashboard user.
func (c *Client) Login(ctx context.Context, username, password string) (Identity, error) {
	env, err := c.Call(ctx, "login", Params{"username": username, "password": password})
	if err != nil {
		return Identity{}, err
	}
	var user Identity
	if err := env.Decode("user", &user); err != nil {
		return Identity{}, parseError("login", err)
	}
	if user.Username == "" {
		user.Username = username
	}
	return user, nil
}

// TodaysCheckins returns today's visits in sheet order.
func (c *Client) TodaysCheckins(ctx context.Context) ([]PatientVisit, error) {
	return c.fetchVisits(ctx, "getTodaysCheckins", nil)
}

// AllPatients returns one row per known patient.
func (c *Client) AllPatients(ctx context.Context) ([]PatientVisit, error) {
	return c.fetchVisits(ctx, "getAllPatients", nil)
}

// PatientHistory returns a patient's details, visit stats and past visits.
func (c *Client) PatientHistory(ctx context.Context, patientID string) (PatientHistory, error) {
	const action = "getPatientHistory"
	env, err := c.Call(ctx, action, Params{"patientId": patientID})
	if err != nil {
		return PatientHistory{}, err
	}
	if !env.Has("patientInfo") {
		return PatientHistory{}, applicationError(action, "Patient not found")
	}
	var info rawRow
	var stats rawRow
	var history []rawRow
	for field, dest := range map[string]any{"patientInfo": &info, "stats": &stats, "history": &history} {
		if err := env.Decode(field, dest); err != nil {
			return PatientHistory{}, parseError(action, err)
		}
	}
	patient, err := decodeVisit(info)
	if err != nil {
		// Patient details are still useful with an odd status value.
		c.logger.Warn().Err(err).Str("action", action).Msg("patient info has unrecognized status")
	}
	visits, skipped := decodeVisits(history)
	c.logSkipped(action, skipped)
	return PatientHistory{Patient: patient, Stats: decodeStats(stats), Visits: visits}, nil
}

// SearchPatients looks patients up by name, phone or id.
func (c *Client) SearchPatients(ctx context.Context, term string) (SearchResult, error) {
	const action = "searchPatients"
	env, err := c.Call(ctx, action, Params{"term": term})
	if err != nil {
		return SearchResult{}, err
	}
	var raws []rawRow
	if err := env.Decode("patients", &raws); err != nil {
		return SearchResult{}, parseError(action, err)
	}
	visits, skipped := decodeVisits(raws)
	c.logSkipped(action, skipped)
	result := SearchResult{Patients: visits, Count: len(visits)}
	var count any
	if err := env.Decode("count", &count); err == nil {
		if n, ok := asInt(count); ok {
			result.Count = n
		}
	}
	return result, nil
}

// UpdateStatus writes a new workflow status to the row.
func (c *Client) UpdateStatus(ctx context.Context, row int, status Status) error {
	_, err := c.Call(ctx, "updateStatus", Params{"row": row, "status": status.String()})
	return err
}

// AssignCounselor records the counselor on the row.
func (c *Client) AssignCounselor(ctx context.Context, row int, counselor string) error {
	_, err := c.Call(ctx, "assignCounselor", Params{"row": row, "counselor": counselor})
	return err
}

// SaveNotes overwrites the notes cell of the row. An empty string clears it.
func (c *Client) SaveNotes(ctx context.Context, row int, notes string) error {
	_, err := c.Call(ctx, "saveNotes", Params{"row": row, "notes": notes})
	return err
}

// Analytics returns metrics and chart series for the last days.
func (c *Client) Analytics(ctx context.Context, days int) (Analytics, error) {
	const action = "getAnalytics"
	params := Params{}
	if days > 0 {
		params["days"] = days
	}
	env, err := c.Call(ctx, action, params)
	if err != nil {
		return Analytics{}, err
	}
	var metrics rawRow
	if err := env.Decode("metrics", &metrics); err != nil {
		return Analytics{}, parseError(action, err)
	}
	var charts Charts
	if err := env.Decode("charts", &charts); err != nil {
		return Analytics{}, parseError(action, err)
	}
	return Analytics{Days: days, Metrics: decodeMetrics(metrics), Charts: charts}, nil
}

// Counselors returns the backend's counselor roster.
func (c *Client) Counselors(ctx context.Context) ([]string, error) {
	env, err := c.Call(ctx, "getCounselors", nil)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := env.Decode("counselors", &names); err != nil {
		return nil, parseError("getCounselors", err)
	}
	return names, nil
}

// Ping checks that the endpoint is deployed and answering. It returns the
// number of counselors the backend knows about.
func (c *Client) Ping(ctx context.Context) (int, error) {
	names, err := c.Counselors(ctx)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

func (c *Client) fetchVisits(ctx context.Context, action string, params Params) ([]PatientVisit, error) {
	env, err := c.Call(ctx, action, params)
	if err != nil {
		return nil, err
	}
	var raws []rawRow
	if err := env.Decode("patients", &raws); err != nil {
		return nil, parseError(action, err)
	}
	visits, skipped := decodeVisits(raws)
	c.logSkipped(action, skipped)
	return visits, nil
}

func (c *Client) logSkipped(action string, skipped []skippedRow) {
	for _, s := range skipped {
		c.logger.Warn().
			Err(s.Err).
			Str("action", action).
			Int("index", s.Index).
			Int("row", s.Row).
			Msg("dropping row with unrecognized status")
	}
}

func formatParam(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" || trimmed == UnsetEndpoint {
		return nil, errors.New("API URL not configured. Set endpoint_url in the walkin config file")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("API URL %q is invalid: %v", trimmed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("API URL %q must use http or https", trimmed)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("API URL %q has no host", trimmed)
	}
	u.Fragment = ""
	return u, nil
}

func networkMessage(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "network error: request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "network error: request cancelled"
	}
	return fmt.Sprintf("network error: %v (check the endpoint URL and that the web app is deployed for anyone)", err)
}

func statusText(resp *http.Response) string {
	text := http.StatusText(resp.StatusCode)
	if text == "" {
		text = strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	}
	return text
}

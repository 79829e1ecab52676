package inzetrooster

import (
	"context"
	"errors"
	"fmt"
	"inzetbooster/lib/htmlutil"
	"inzetbooster/lib/restyutil"
	"inzetbooster/lib/telemetry"
	"log/slog"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = telemetry.Tracer("platforms/inzetrooster")

const DefaultBaseUrl = "https://inzetrooster.nl"

// shown on the login page when the credentials are rejected
const loginFailedMarker = "Geen geldige gebruikersnaam"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotLoggedIn        = errors.New("you must be logged in to do this")
	ErrSessionFailed      = errors.New("session is unusable after a failed login attempt")
	// the roster service answered in a way this client does not know, most
	// likely the site changed. never retried.
	ErrProtocolDrift = errors.New("unexpected response from roster service")
)

type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl      string
	Organisation string
	// defaults to slog.Default(), the organisation is added to it
	Logger *slog.Logger
	// when set every request/response pair is written to it
	InstrumentOutput restyutil.InstrumentOutput
	BypassCloudflare bool
}

// Client is one session with the roster service for one organisation.
// It is not safe for concurrent use.
type Client struct {
	BaseUrl      *url.URL
	Organisation string
	Http         *resty.Client

	logger *slog.Logger
	state  State
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.Organisation == "" {
		return nil, fmt.Errorf("an organisation is required")
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(strings.TrimSuffix(opts.BaseUrl, "/"))
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("org", opts.Organisation)

	client := resty.New()
	client.SetBaseURL(baseUrl.String())
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if opts.BypassCloudflare {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, tracer, logger, opts.InstrumentOutput)

	return &Client{
		BaseUrl:      baseUrl,
		Organisation: opts.Organisation,
		Http:         client,
		logger:       logger,
		state:        StateAnonymous,
	}, nil
}

func (c *Client) State() State {
	return c.state
}

func (c *Client) DefaultRedirectPolicy() resty.RedirectPolicy {
	return resty.DomainCheckRedirectPolicy(c.BaseUrl.Hostname())
}

// path returns the organisation scoped path, path("admin") -> "/<org>/admin"
func (c *Client) path(elems ...string) string {
	return "/" + c.Organisation + "/" + strings.Join(elems, "/")
}

func (c *Client) url(elems ...string) string {
	return c.BaseUrl.String() + c.path(elems...)
}

// withoutRedirects makes the client hand back 3xx responses as they are,
// call the returned func to restore the default policy.
func (c *Client) withoutRedirects() func() {
	c.Http.SetRedirectPolicy(resty.RedirectPolicyFunc(
		func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	))
	return func() {
		c.Http.SetRedirectPolicy(c.DefaultRedirectPolicy())
	}
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	if c.state == StateFailed {
		span.SetStatus(codes.Error, ErrSessionFailed.Error())
		return ErrSessionFailed
	}

	c.logger.DebugContext(ctx, "fetching login page")
	res, err := c.Http.R().
		SetContext(ctx).
		Get(c.path("login"))
	if err != nil {
		c.state = StateFailed
		span.SetStatus(codes.Error, "failed to fetch login page")
		return err
	}
	token, err := htmlutil.CSRFToken(htmlutil.RawHTML(res.String()))
	if err != nil {
		c.state = StateFailed
		span.SetStatus(codes.Error, "failed to find login token")
		return fmt.Errorf("login page: %w", err)
	}
	c.logger.DebugContext(ctx, "got CSRF token for login page")

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			htmlutil.CSRFTokenName: token,
			"username":             username,
			"password":             password,
		}).
		Post(c.path("login"))
	if err != nil {
		c.state = StateFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}
	if res.StatusCode() >= 400 {
		c.state = StateFailed
		span.SetStatus(codes.Error, "login request was rejected")
		return fmt.Errorf("%w: login returned %s", ErrProtocolDrift, res.Status())
	}

	if strings.Contains(res.String(), loginFailedMarker) {
		c.logger.ErrorContext(ctx, "login failed", "username", username)
		span.SetStatus(codes.Error, ErrInvalidCredentials.Error())
		return ErrInvalidCredentials
	}

	c.state = StateAuthenticated
	c.logger.InfoContext(ctx, "login succeeded", "username", username)
	return nil
}

func (c *Client) requireLogin(span trace.Span) error {
	if c.state != StateAuthenticated {
		span.SetStatus(codes.Error, ErrNotLoggedIn.Error())
		return ErrNotLoggedIn
	}
	return nil
}

func drift(span trace.Span, format string, args ...any) error {
	err := fmt.Errorf("%w: %s", ErrProtocolDrift, fmt.Sprintf(format, args...))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func expectStatus(span trace.Span, res *resty.Response, status int) error {
	if res.StatusCode() != status {
		return drift(
			span, "%s %s returned %d, expected %d",
			res.Request.Method, res.Request.URL, res.StatusCode(), status,
		)
	}
	return nil
}

func expectCSV(span trace.Span, res *resty.Response) error {
	err := expectStatus(span, res, http.StatusOK)
	if err != nil {
		return err
	}
	contentType := res.Header().Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "text/csv" {
		return drift(span, "%s returned content type %q, expected text/csv", res.Request.URL, contentType)
	}
	return nil
}

// fetchForm loads a form page without following redirects and returns
// the parsed page together with its CSRF token.
func (c *Client) fetchForm(ctx context.Context, span trace.Span, path string) (*goquery.Document, string, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch form page")
		return nil, "", err
	}
	err = expectStatus(span, res, http.StatusOK)
	if err != nil {
		return nil, "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, "", err
	}
	token, err := htmlutil.CSRFToken(htmlutil.Document{Doc: doc})
	if err != nil {
		span.SetStatus(codes.Error, "failed to find CSRF token")
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return doc, token, nil
}

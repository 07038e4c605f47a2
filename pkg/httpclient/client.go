package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/ibmresilient/finfo/pkg/fields"
)

const (
	sessionIDHeader = "X-sess-id"

	SessionEndpoint = "/rest/session"

	acceptHeader      = "Accept"
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrNotConnected = errors.New("client is not connected, call Connect first")
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Client is a client to the Resilient REST API. It is bound to one organization once
// Connect has succeeded.
type Client struct {
	BaseURL string
	Org     string

	client          *http.Client
	logger          kitlog.Logger
	metrics         *Metrics
	maxResponseSize uint64

	orgID     int64
	csrfToken string
}

var _ fields.Source = (*Client)(nil)

func New(baseURL, org string) *Client {
	// cookiejar.New never fails without a PublicSuffixList
	jar, _ := cookiejar.New(nil)

	return &Client{
		BaseURL: baseURL,
		Org:     org,
		client:  &http.Client{Jar: jar},
		logger:  kitlog.NewNopLogger(),
		metrics: NewMetrics(nil),
	}
}

func (c *Client) WithTransport(t http.RoundTripper) {
	c.client.Transport = t
}

func (c *Client) WithLogger(l kitlog.Logger) {
	c.logger = l
}

func (c *Client) WithMetrics(m *Metrics) {
	c.metrics = m
}

// WithMaxResponseSize fails requests whose body is larger than n bytes. Zero means no limit.
func (c *Client) WithMaxResponseSize(n uint64) {
	c.maxResponseSize = n
}

type sessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionOrg struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type sessionResponse struct {
	CSRFToken string       `json:"csrf_token"`
	Orgs      []sessionOrg `json:"orgs"`
}

// Connect authenticates and selects the organization. Any failure is reported as
// fields.ErrSourceUnavailable.
func (c *Client) Connect(ctx context.Context, email, password string) error {
	b, err := jsonAPI.Marshal(sessionRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+SessionEndpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set(contentTypeHeader, applicationJSON)

	_, body, err := c.doRequest(req, "session")
	if err != nil {
		return unavailable(errors.Wrap(err, "error connecting"))
	}

	session := &sessionResponse{}
	if err = jsonAPI.Unmarshal(body, session); err != nil {
		return unavailable(errors.Wrapf(err, "error decoding session, body: %s", string(body)))
	}

	org, err := selectOrg(session.Orgs, c.Org)
	if err != nil {
		return unavailable(err)
	}

	c.orgID = org.ID
	c.csrfToken = session.CSRFToken

	level.Debug(c.logger).Log("msg", "connected", "org", org.Name, "org_id", org.ID)
	return nil
}

// selectOrg picks the organization named name, compared after NFKC normalization. With no
// name, the user's only organization is used.
func selectOrg(orgs []sessionOrg, name string) (sessionOrg, error) {
	if len(orgs) == 0 {
		return sessionOrg{}, errors.New("user is a member of no organizations")
	}

	var selected *sessionOrg
	if name == "" {
		if len(orgs) > 1 {
			return sessionOrg{}, errors.Errorf("please specify the organization, the user is a member of: %s", orgNames(orgs))
		}
		selected = &orgs[0]
	} else {
		want := norm.NFKC.String(name)
		for i := range orgs {
			if norm.NFKC.String(orgs[i].Name) == want {
				selected = &orgs[i]
				break
			}
		}
		if selected == nil {
			return sessionOrg{}, errors.Errorf("the user is not a member of the organization %q", name)
		}
	}

	if !selected.Enabled {
		return sessionOrg{}, errors.Errorf("the organization %q is not accessible", selected.Name)
	}
	return *selected, nil
}

func orgNames(orgs []sessionOrg) string {
	var buf bytes.Buffer
	for i, o := range orgs {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%q", o.Name)
	}
	return buf.String()
}

// Get issues a GET for uri relative to the connected organization and returns the body.
func (c *Client) Get(ctx context.Context, uri string) ([]byte, error) {
	if c.csrfToken == "" {
		return nil, ErrNotConnected
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.orgURL(uri), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(acceptHeader, applicationJSON)

	resp, body, err := c.doRequest(req, "get")
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return body, nil
}

// GetFields returns the field definitions of objectType in the order the server lists
// them. Records that cannot be decoded are logged and skipped.
func (c *Client) GetFields(ctx context.Context, objectType string) ([]fields.FieldDefinition, error) {
	body, err := c.Get(ctx, "/types/"+url.PathEscape(objectType)+"/fields")
	if err != nil {
		return nil, unavailable(errors.Wrapf(err, "error fetching %s fields", objectType))
	}

	fs, err := fields.DecodeFields(body, func(index int, err error) {
		level.Warn(c.logger).Log("msg", "malformed field definition", "type", objectType, "index", index, "err", err)
	})
	if err != nil {
		return nil, unavailable(err)
	}

	level.Debug(c.logger).Log("msg", "fetched fields", "type", objectType, "count", len(fs), "size", humanize.Bytes(uint64(len(body))))
	return fs, nil
}

func (c *Client) orgURL(uri string) string {
	return c.BaseURL + "/rest/orgs/" + strconv.FormatInt(c.orgID, 10) + uri
}

// doRequest sends the given request, it injects the session header and handles bad status codes.
func (c *Client) doRequest(req *http.Request, endpoint string) (*http.Response, []byte, error) {
	if len(c.csrfToken) > 0 {
		req.Header.Set(sessionIDHeader, c.csrfToken)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.observe(endpoint, "error", time.Since(start))
		return nil, nil, errors.Wrapf(err, "error querying %s", req.URL.Host)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.metrics.observe(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 400 && resp.StatusCode <= 599 {
		body, _ := io.ReadAll(resp.Body)
		return resp, body, errors.Errorf("%s request to %s failed with response: %d body: %s", req.Method, req.URL.String(), resp.StatusCode, string(body))
	}

	body, err := c.readBody(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return resp, body, nil
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.maxResponseSize > 0 {
		r = io.LimitReader(r, int64(c.maxResponseSize)+1)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading response body")
	}
	if c.maxResponseSize > 0 && uint64(len(body)) > c.maxResponseSize {
		return nil, errors.Errorf("response body exceeds the limit of %s", humanize.Bytes(c.maxResponseSize))
	}
	return body, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", fields.ErrSourceUnavailable, err)
}

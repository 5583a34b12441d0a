package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contact-dialer/internal/config"
	"contact-dialer/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/microsoft"
)

const (
	defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"
	graphScope          = "https://graph.microsoft.com/.default"
	contactsSelect      = "displayName,mobilePhone,businessPhones"

	maxPages     = 50
	maxBodyBytes = 4 << 20
)

// Source lists dialable contacts.
type Source interface {
	FetchContacts(ctx context.Context) ([]Contact, error)
}

// Options overrides endpoints, mainly for tests.
type Options struct {
	BaseURL    string
	TokenURL   string
	HTTPClient *http.Client
}

// GraphClient reads Outlook contacts from Microsoft Graph using the
// client-credentials grant. The token is cached and reused until it expires.
type GraphClient struct {
	baseURL      string
	contactsPath string
	tokens       oauth2.TokenSource
	httpClient   *http.Client
}

func NewGraphClient(cfg config.DirectoryConfig, opts Options) (*GraphClient, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.TenantID == "" {
		return nil, errors.New("directory: client id, secret and tenant are required")
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = microsoft.AzureADEndpoint(cfg.TenantID).TokenURL
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGraphBaseURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{graphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	// The token source outlives any single request; it uses hc for token fetches.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, hc)

	contactsPath := "/me/contacts"
	if cfg.UserID != "" {
		contactsPath = "/users/" + url.PathEscape(cfg.UserID) + "/contacts"
	}

	return &GraphClient{
		baseURL:      baseURL,
		contactsPath: contactsPath,
		tokens:       cc.TokenSource(tokenCtx),
		httpClient:   hc,
	}, nil
}

// FetchContacts returns every contact that has a phone number, following
// @odata.nextLink pagination.
func (c *GraphClient) FetchContacts(ctx context.Context) ([]Contact, error) {
	log := logger.From(ctx)

	tok, err := c.tokens.Token()
	if err != nil {
		authErr := toAuthenticationError(err)
		log.Error("directory token request failed", "status", authErr.StatusCode, "err", authErr.Message)
		return nil, authErr
	}

	next := c.baseURL + c.contactsPath + "?$select=" + contactsSelect
	out := make([]Contact, 0)
	total := 0
	for page := 0; next != ""; page++ {
		if page >= maxPages {
			log.Warn("directory pagination truncated", "pages", page)
			break
		}
		p, err := c.fetchPage(ctx, tok, next)
		if err != nil {
			log.Error("directory contacts request failed", "err", err)
			return nil, err
		}
		for _, gc := range p.Value {
			total++
			if contact, ok := gc.toContact(); ok {
				out = append(out, contact)
			}
		}
		next = p.NextLink
	}

	log.Info("fetched directory contacts", "total", total, "dialable", len(out))
	return out, nil
}

func (c *GraphClient) fetchPage(ctx context.Context, tok *oauth2.Token, pageURL string) (contactsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return contactsPage{}, &UnavailableError{Message: err.Error(), Err: err}
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contactsPage{}, &UnavailableError{Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return contactsPage{}, &UnavailableError{StatusCode: resp.StatusCode, Message: err.Error(), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return contactsPage{}, &UnavailableError{StatusCode: resp.StatusCode, Message: graphErrorMessage(body)}
	}

	var p contactsPage
	if err := json.Unmarshal(body, &p); err != nil {
		return contactsPage{}, &UnavailableError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("invalid contacts payload: %v", err), Err: err}
	}
	return p, nil
}

func toAuthenticationError(err error) *AuthenticationError {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		out := &AuthenticationError{Message: re.ErrorDescription, Err: err}
		if re.Response != nil {
			out.StatusCode = re.Response.StatusCode
		}
		if out.Message == "" {
			out.Message = strings.TrimSpace(string(re.Body))
		}
		if out.Message == "" {
			out.Message = re.ErrorCode
		}
		return out
	}
	return &AuthenticationError{Message: err.Error(), Err: err}
}

// graphErrorMessage extracts error.message from a Graph error body.
func graphErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		if e.Error.Code != "" {
			return e.Error.Code + ": " + e.Error.Message
		}
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}

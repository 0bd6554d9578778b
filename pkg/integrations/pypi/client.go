package pypi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/simpleindex/pkg/buildinfo"
	"github.com/matzehuels/simpleindex/pkg/cache"
	"github.com/matzehuels/simpleindex/pkg/errors"
	"github.com/matzehuels/simpleindex/pkg/integrations"
	"github.com/matzehuels/simpleindex/pkg/observability"
	"github.com/matzehuels/simpleindex/pkg/simple"
)

// DefaultIndexURL is the PyPI simple index.
const DefaultIndexURL = "https://pypi.org/simple/"

// Options configures a [Client]. The zero value talks to PyPI without
// caching and negotiates JSON first.
type Options struct {
	IndexURL string             // defaults to DefaultIndexURL
	Accept   simple.AcceptPolicy
	Cache    cache.Cache // nil disables caching
	CacheTTL time.Duration
	Timeout  time.Duration
	Logger   *log.Logger
}

// Client fetches and decodes documents from a Simple Repository API index.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	indexURL string
	accept   simple.AcceptPolicy
	logger   *log.Logger
}

// NewClient creates a client for the index at opts.IndexURL.
// The URL must be absolute http(s); a missing trailing slash is added.
func NewClient(opts Options) (*Client, error) {
	indexURL := opts.IndexURL
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	if err := errors.ValidateIndexURL(indexURL); err != nil {
		return nil, err
	}
	if indexURL[len(indexURL)-1] != '/' {
		indexURL += "/"
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	headers := map[string]string{"User-Agent": buildinfo.UserAgent()}
	base := integrations.NewClient(opts.Cache, "simple:"+integrations.HostOf(indexURL)+":", opts.CacheTTL, headers)
	base.SetHTTPClient(integrations.NewHTTPClient(opts.Timeout))
	base.SetResponseCheck(func(r *integrations.Response) error {
		_, err := DetectFormat(r.ContentType)
		return err
	})

	return &Client{
		Client:   base,
		indexURL: indexURL,
		accept:   opts.Accept,
		logger:   logger,
	}, nil
}

// IndexURL returns the normalized index URL.
func (c *Client) IndexURL() string { return c.indexURL }

// ProjectURL returns the details URL of name on this index.
func (c *Client) ProjectURL(name string) (string, error) {
	return simple.ProjectURL(c.indexURL, name)
}

// FetchIndex retrieves the project list.
//
// Entries from JSON responses, which carry no links, are resolved against
// the index URL. If refresh is true, the cache is bypassed.
func (c *Client) FetchIndex(ctx context.Context, refresh bool) (*simple.ProjectIndex, error) {
	resp, err := c.fetch(ctx, c.indexURL, refresh)
	if err != nil {
		return nil, err
	}
	idx, warn, err := DecodeIndex(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("decode index %s: %w", resp.URL, err)
	}
	c.warn(resp.URL, warn)
	c.logger.Debug("fetched index", "url", resp.URL, "projects", len(idx.Projects))
	return idx.Resolve(resp.URL), nil
}

// FetchProject retrieves the file list of one project.
//
// The name is normalized before the request. File URLs are resolved against
// the URL the page was served from. A missing project yields an error with
// code [errors.ErrCodeProjectNotFound].
func (c *Client) FetchProject(ctx context.Context, name string, refresh bool) (*simple.ProjectDetails, error) {
	u, err := c.ProjectURL(name)
	if err != nil {
		return nil, err
	}
	resp, err := c.fetch(ctx, u, refresh)
	if stderrors.Is(err, integrations.ErrNotFound) {
		return nil, errors.Wrap(errors.ErrCodeProjectNotFound, err, "project %s not found on %s", name, c.indexURL)
	}
	if err != nil {
		return nil, err
	}

	details, warn, err := DecodeDetails(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("decode project %s: %w", name, err)
	}
	c.warn(resp.URL, warn)
	c.logger.Debug("fetched project", "name", details.Name, "files", len(details.Files))
	return details.Resolve(resp.URL)
}

func (c *Client) warn(url string, w *simple.Warning) {
	if w != nil {
		c.logger.Warn("index serves a newer api version", "url", url, "declared", w.Declared, "known", w.Known)
	}
}

func (c *Client) fetch(ctx context.Context, u string, refresh bool) (*integrations.Response, error) {
	headers := map[string]string{"Accept": simple.AcceptHeader(c.accept)}
	return c.Fetch(ctx, u, headers, refresh)
}

// DecodeIndex decodes a fetched index document according to its
// Content-Type. A newer-minor warning is returned and also reported through
// the decode hooks.
func DecodeIndex(ctx context.Context, resp *integrations.Response) (*simple.ProjectIndex, *simple.Warning, error) {
	format, err := DetectFormat(resp.ContentType)
	if err != nil {
		return nil, nil, err
	}

	hooks := observability.Decode()
	hooks.OnDecodeStart(ctx, format.String(), "index")
	start := time.Now()

	var (
		idx  *simple.ProjectIndex
		warn *simple.Warning
	)
	switch format {
	case FormatJSON:
		idx, warn, err = simple.DecodeIndexJSON(resp.Body)
	default:
		var text string
		if text, err = htmlText(resp.Body, resp.ContentType); err == nil {
			idx, warn, err = simple.DecodeIndexHTML(text, resp.URL)
		}
	}

	items := 0
	if idx != nil {
		items = len(idx.Projects)
	}
	hooks.OnDecodeComplete(ctx, format.String(), "index", items, time.Since(start), err)
	if warn != nil {
		hooks.OnVersionWarning(ctx, resp.URL, warn.Declared.String(), warn.Known.String())
	}
	return idx, warn, err
}

// DecodeDetails decodes a fetched project document according to its
// Content-Type. File URLs are returned as served; see
// [simple.ProjectDetails.Resolve].
func DecodeDetails(ctx context.Context, resp *integrations.Response) (*simple.ProjectDetails, *simple.Warning, error) {
	format, err := DetectFormat(resp.ContentType)
	if err != nil {
		return nil, nil, err
	}

	hooks := observability.Decode()
	hooks.OnDecodeStart(ctx, format.String(), "details")
	start := time.Now()

	var (
		details *simple.ProjectDetails
		warn    *simple.Warning
	)
	switch format {
	case FormatJSON:
		details, warn, err = simple.DecodeDetailsJSON(resp.Body)
	default:
		var text string
		if text, err = htmlText(resp.Body, resp.ContentType); err == nil {
			details, warn, err = simple.DecodeDetailsHTML(text, resp.URL)
		}
	}

	items := 0
	if details != nil {
		items = len(details.Files)
	}
	hooks.OnDecodeComplete(ctx, format.String(), "details", items, time.Since(start), err)
	if warn != nil {
		hooks.OnVersionWarning(ctx, resp.URL, warn.Declared.String(), warn.Known.String())
	}
	return details, warn, err
}

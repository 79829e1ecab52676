package inzetrooster

import (
	"bytes"
	"context"
	"inzetbooster/lib/htmlutil"
	"net/http"
	"strings"
)

// ImportUsers uploads a user CSV (see roster.WriteUpload). The service
// answers a successful import with a redirect to the admin root.
func (c *Client) ImportUsers(ctx context.Context, csv []byte) error {
	ctx, span := tracer.Start(ctx, "client:ImportUsers")
	defer span.End()

	err := c.requireLogin(span)
	if err != nil {
		return err
	}
	defer c.withoutRedirects()()

	_, token, err := c.fetchForm(ctx, span, c.path("admin", "people", "import", "new"))
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "uploading user import", "bytes", len(csv))
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("referer", c.url("admin", "people", "import", "new")).
		SetMultipartFormData(map[string]string{
			htmlutil.CSRFTokenName: token,
		}).
		SetFileReader("file", "users.csv", bytes.NewReader(csv)).
		Post(c.path("admin", "people", "import"))
	if err != nil {
		span.RecordError(err)
		return err
	}
	err = expectStatus(span, res, http.StatusFound)
	if err != nil {
		return err
	}

	location, err := res.RawResponse.Location()
	if err != nil {
		return drift(span, "import redirect has no location: %s", err)
	}
	expected := c.url("admin")
	if strings.TrimSuffix(location.String(), "/") != expected {
		// the import page redirects back to itself with a flash message
		// when the file is rejected
		return drift(span, "import redirected to %s, expected %s", location, expected)
	}
	return nil
}

// MakeAllUsersInactive sets every account of the organisation inactive.
func (c *Client) MakeAllUsersInactive(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:MakeAllUsersInactive")
	defer span.End()

	err := c.requireLogin(span)
	if err != nil {
		return err
	}
	defer c.withoutRedirects()()

	_, token, err := c.fetchForm(ctx, span, c.path("admin", "people", "bulk_inactive"))
	if err != nil {
		return err
	}

	c.logger.WarnContext(ctx, "making all users inactive")
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("referer", c.url("admin", "people", "bulk_inactive")).
		SetFormData(map[string]string{
			htmlutil.CSRFTokenName: token,
			"inactive":             "all",
		}).
		Post(c.path("admin", "people", "bulk_inactive"))
	if err != nil {
		span.RecordError(err)
		return err
	}
	return expectStatus(span, res, http.StatusFound)
}

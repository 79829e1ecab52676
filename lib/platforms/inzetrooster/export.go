package inzetrooster

import (
	"context"
	"inzetbooster/lib/htmlutil"
	"inzetbooster/lib/timezone"
	"net/url"
	"strconv"
	"time"
)

const formDateLayout = "2006-01-02"

// DateRange is inclusive on both ends, the zero value means "today until
// 52 weeks from now".
type DateRange struct {
	From time.Time
	To   time.Time
}

func DefaultDateRange() DateRange {
	from := timezone.Today()
	return DateRange{
		From: from,
		To:   from.AddDate(0, 0, 52*7),
	}
}

func (r DateRange) orDefault() DateRange {
	def := DefaultDateRange()
	if r.From.IsZero() {
		r.From = def.From
	}
	if r.To.IsZero() {
		r.To = r.From.AddDate(0, 0, 52*7)
	}
	return r
}

// ExportShifts replays the shift export form for every group and every
// weekday and returns the CSV the service produces.
func (c *Client) ExportShifts(ctx context.Context, dates DateRange) (string, error) {
	ctx, span := tracer.Start(ctx, "client:ExportShifts")
	defer span.End()

	err := c.requireLogin(span)
	if err != nil {
		return "", err
	}
	defer c.withoutRedirects()()

	c.logger.DebugContext(ctx, "loading export page to get CSRF and group ids")
	doc, token, err := c.fetchForm(ctx, span, c.path("admin", "shifts", "export"))
	if err != nil {
		return "", err
	}

	groupSelect := doc.Find(`select[name="group_ids[]"]`)
	if groupSelect.Length() == 0 {
		return "", drift(span, "shift export page has no group selection")
	}
	groups := htmlutil.SelectOptions(groupSelect)

	dates = dates.orDefault()
	form := url.Values{}
	form.Set(htmlutil.CSRFTokenName, token)
	form.Set("from_date", dates.From.Format(formDateLayout))
	form.Set("to_date", dates.To.Format(formDateLayout))
	for day := 1; day <= 7; day++ {
		form.Add("days[]", strconv.Itoa(day))
	}
	groupNames := make([]string, len(groups))
	for i, g := range groups {
		form.Add("group_ids[]", g.Value)
		groupNames[i] = g.Label
	}
	form.Set("button", "")

	c.logger.InfoContext(
		ctx, "requesting shift CSV export",
		"from", form.Get("from_date"),
		"to", form.Get("to_date"),
		"groups", groupNames,
	)
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("referer", c.url("admin", "shifts", "export")).
		SetFormDataFromValues(form).
		Post(c.path("admin", "shifts", "export.csv"))
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	err = expectCSV(span, res)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

var userExportFields = []string{
	"id",
	"firstname",
	"prefix",
	"lastname",
	"email",
	"username",
	"exempt",
	"active_from",
	"inactive_from",
	"role",
	"remarks",
	"last_activity",
}

// ExportUsers returns the user CSV export for all groups.
func (c *Client) ExportUsers(ctx context.Context, includeInactive bool) (string, error) {
	ctx, span := tracer.Start(ctx, "client:ExportUsers")
	defer span.End()

	err := c.requireLogin(span)
	if err != nil {
		return "", err
	}
	defer c.withoutRedirects()()

	_, token, err := c.fetchForm(ctx, span, c.path("admin", "people", "export"))
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set(htmlutil.CSRFTokenName, token)
	for _, field := range userExportFields {
		form.Add("fields[]", field)
	}
	// 0 selects every group
	form.Set("group_id", "0")
	if includeInactive {
		form.Set("include_inactive", "1")
	}

	c.logger.InfoContext(ctx, "requesting user CSV export", "include_inactive", includeInactive)
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("referer", c.url("admin", "people", "export")).
		SetFormDataFromValues(form).
		Post(c.path("admin", "people", "export.csv"))
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	err = expectCSV(span, res)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

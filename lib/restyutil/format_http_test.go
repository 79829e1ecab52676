package restyutil

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("Content-Type", "text/csv")
	headers.Add("Set-Cookie", "a=1")
	headers.Add("Set-Cookie", "b=2")

	require.Equal(t, "Content-Type: text/csv\nSet-Cookie: a=1\nSet-Cookie: b=2", formatHeaders(headers))
	require.Equal(t, "", formatHeaders(http.Header{}))
}

func TestFormatRequestBodyRedactsPassword(t *testing.T) {
	body := "authenticity_token=abc&username=alice&password=hunter2"
	req, err := http.NewRequest(http.MethodPost, "https://inzetrooster.nl/org/login", strings.NewReader(body))
	require.NoError(t, err)
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewBufferString(body)), nil
	}

	formatted := formatRequestBody(req)
	require.Equal(t, "authenticity_token=abc&username=alice&password=<redacted>", formatted)
	require.Equal(t, "<NO BODY AVAILABLE>", formatRequestBody(nil))
}

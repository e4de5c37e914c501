package clients

import (
	"strings"
	"time"

	"certdesk/logger"

	"github.com/go-resty/resty/v2"
)

// NewRestClient returns a resty client rooted at baseURL that logs every exchange.
// Retries stay disabled: every failure needs a new explicit user action.
func NewRestClient(log *logger.Logger, baseURL string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debug("service response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"latency", resp.Time().String(),
		)
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		log.Warn("service request failed", "method", req.Method, "url", req.URL, "error", err)
	})
	return client
}

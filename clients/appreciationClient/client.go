package appreciationClient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"certdesk/apperr"
	"certdesk/clients"
	"certdesk/logger"
	"certdesk/models"

	"github.com/go-resty/resty/v2"
)

const generatePath = "/api/generate-appreciation"

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client asks the appreciation service for descriptive text. It holds no session state.
type Client struct {
	log  *logger.Logger
	rest *resty.Client
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("missing appreciation service base URL")
	}
	log = log.With("client", "AppreciationClient")
	return &Client{
		log:  log,
		rest: clients.NewRestClient(log, cfg.BaseURL, cfg.Timeout),
	}, nil
}

func (c *Client) GenerateAppreciation(ctx context.Context, courseType models.CourseType) (*models.AppreciationResponse, error) {
	const op = "generate appreciation"

	if !courseType.Valid() {
		return nil, apperr.Validation(op, map[string]string{
			"course_type": fmt.Sprintf("Unknown course type %q!", courseType),
		})
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.AppreciationRequest{CourseType: courseType}).
		Post(generatePath)
	if err != nil {
		return nil, apperr.Network(op, err)
	}
	if !resp.IsSuccess() {
		return nil, apperr.Service(op, resp.StatusCode(), resp.String())
	}

	var out models.AppreciationResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, apperr.Malformed(op, resp.StatusCode(), err)
	}
	return &out, nil
}

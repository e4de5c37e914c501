package certificateClient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"certdesk/apperr"
	"certdesk/clients"
	"certdesk/logger"
	"certdesk/models"

	"github.com/go-resty/resty/v2"
)

const (
	generatePath = "/certificates/generate"
	pdfPath      = "/certificates/{certificate_id}/pdf"
	verifyPath   = "/verify-certificate-chatbot"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the certificate service: generation, PDF retrieval and the verification chatbot
type Client struct {
	log  *logger.Logger
	rest *resty.Client
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("missing certificate service base URL")
	}
	log = log.With("client", "CertificateClient")
	return &Client{
		log:  log,
		rest: clients.NewRestClient(log, cfg.BaseURL, cfg.Timeout),
	}, nil
}

// Generate submits the draft and its generated content. The returned certificate is the
// service's record and always carries a certificate id.
func (c *Client) Generate(ctx context.Context, draft models.CertificateDraft) (*models.Certificate, error) {
	const op = "generate certificate"

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(draft).
		Post(generatePath)
	if err != nil {
		return nil, apperr.Network(op, err)
	}
	if !resp.IsSuccess() {
		return nil, apperr.Service(op, resp.StatusCode(), resp.String())
	}

	var cert models.Certificate
	if err := json.Unmarshal(resp.Body(), &cert); err != nil {
		return nil, apperr.Malformed(op, resp.StatusCode(), err)
	}
	if !cert.IsIssued() {
		return nil, apperr.Malformed(op, resp.StatusCode(), fmt.Errorf("certificate_id missing"))
	}
	return &cert, nil
}

// FetchPDF downloads the rendered certificate document
func (c *Client) FetchPDF(ctx context.Context, certificateID string) ([]byte, error) {
	const op = "fetch certificate pdf"

	certificateID = strings.TrimSpace(certificateID)
	if certificateID == "" {
		return nil, apperr.Validation(op, map[string]string{"certificate_id": "Certificate ID is required!"})
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf").
		SetPathParam("certificate_id", certificateID).
		Get(pdfPath)
	if err != nil {
		return nil, apperr.Network(op, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, apperr.NotFound(op, certificateID)
	}
	if !resp.IsSuccess() {
		return nil, apperr.Service(op, resp.StatusCode(), resp.String())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, apperr.Malformed(op, resp.StatusCode(), fmt.Errorf("empty document"))
	}
	return body, nil
}

// Verify sends one turn of the verification conversation. A nil ConversationID starts a new session.
func (c *Client) Verify(ctx context.Context, req models.VerifyRequest) (*models.VerifyResponse, error) {
	const op = "verify certificate"

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(verifyPath)
	if err != nil {
		return nil, apperr.Network(op, err)
	}
	if !resp.IsSuccess() {
		return nil, apperr.Service(op, resp.StatusCode(), resp.String())
	}

	var out models.VerifyResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, apperr.Malformed(op, resp.StatusCode(), err)
	}
	return &out, nil
}

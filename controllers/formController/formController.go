package formController

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"certdesk/apperr"
	"certdesk/logger"
	"certdesk/models"
	"certdesk/utils/pipeline"

	"github.com/go-playground/validator/v10"
)

// State of the certificate form
type State string

const (
	StateEditing    State = "EDITING"
	StateSubmitting State = "SUBMITTING"
	StateIssued     State = "ISSUED"
	StateFailed     State = "FAILED"
)

const (
	StepAppreciation = "appreciation"
	StepGenerate     = "generate"
)

// AppreciationGenerator produces the certificate content for a course type
type AppreciationGenerator interface {
	GenerateAppreciation(ctx context.Context, courseType models.CourseType) (*models.AppreciationResponse, error)
}

// CertificateIssuer issues certificates and serves their documents
type CertificateIssuer interface {
	Generate(ctx context.Context, draft models.CertificateDraft) (*models.Certificate, error)
	FetchPDF(ctx context.Context, certificateID string) ([]byte, error)
}

// Snapshot is a consistent copy of the controller state
type Snapshot struct {
	State       State                   `json:"state"`
	Draft       models.CertificateDraft `json:"draft"`
	Certificate *models.Certificate     `json:"certificate"`
	FailedStep  string                  `json:"failed_step,omitempty"`
	Error       string                  `json:"error,omitempty"`
	CanDownload bool                    `json:"can_download"`
}

// Controller drives the two-step certificate submission: appreciation text first, then generation.
// Only one submission may be in flight at a time.
type Controller struct {
	log          *logger.Logger
	appreciation AppreciationGenerator
	issuer       CertificateIssuer
	validate     *validator.Validate
	onIssued     func(models.Certificate)

	mu          sync.Mutex
	state       State
	draft       models.CertificateDraft
	certificate *models.Certificate
	lastErr     error
	seq         uint64
}

type Option func(*Controller)

// WithOnIssued registers the listener notified with every newly issued certificate
func WithOnIssued(fn func(models.Certificate)) Option {
	return func(c *Controller) { c.onIssued = fn }
}

func New(log *logger.Logger, appreciation AppreciationGenerator, issuer CertificateIssuer, opts ...Option) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	c := &Controller{
		log:          log.With("controller", "CertificateForm"),
		appreciation: appreciation,
		issuer:       issuer,
		validate:     newValidator(),
		state:        StateEditing,
		draft:        models.NewDraft(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Certificate returns a copy of the issued certificate, or nil outside of ISSUED
func (c *Controller) Certificate() *models.Certificate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issuedCopy()
}

// CanDownload reports whether the PDF download action is enabled
func (c *Controller) CanDownload() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateIssued && c.certificate.IsIssued()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		State:       c.state,
		Draft:       c.draft,
		Certificate: c.issuedCopy(),
		CanDownload: c.state == StateIssued && c.certificate.IsIssued(),
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
		s.FailedStep = pipeline.FailedStep(c.lastErr)
	}
	return s
}

// UpdateDraft edits the form fields. Editing an issued form keeps the issued certificate
// until the next successful submission replaces it.
func (c *Controller) UpdateDraft(patch models.DraftPatch) (models.CertificateDraft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateSubmitting:
		return c.draft, apperr.ErrBusy
	case StateFailed:
		return c.draft, fmt.Errorf("update draft: acknowledge the failed submission first: %w", apperr.ErrInvalidState)
	}
	patch.Apply(&c.draft)
	c.draft.IssueDate = models.NormalizeIssueDate(c.draft.IssueDate)
	return c.draft, nil
}

// Acknowledge returns a failed form to EDITING
func (c *Controller) Acknowledge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateFailed {
		return fmt.Errorf("acknowledge in state %s: %w", c.state, apperr.ErrInvalidState)
	}
	c.state = StateEditing
	c.lastErr = nil
	return nil
}

type submission struct {
	draft       models.CertificateDraft
	certificate *models.Certificate
}

// Submit validates the draft, fetches the appreciation text and submits the certificate.
// Validation failures leave the state untouched; network and service failures move the form to FAILED.
func (c *Controller) Submit(ctx context.Context) (*models.Certificate, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return nil, apperr.ErrBusy
	case StateFailed:
		c.mu.Unlock()
		return nil, fmt.Errorf("submit: acknowledge the failed submission first: %w", apperr.ErrInvalidState)
	}
	draft := c.draft
	draft.IssueDate = models.NormalizeIssueDate(draft.IssueDate)
	if err := c.validateDraft(draft); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.seq++
	seq := c.seq
	c.state = StateSubmitting
	c.lastErr = nil
	c.mu.Unlock()

	c.log.Info("submitting certificate", "seq", seq, "course_type", draft.CourseType)

	sub := &submission{draft: draft}
	err := pipeline.Run(ctx, sub,
		pipeline.Step[submission]{
			Name: StepAppreciation,
			Skip: func(s *submission) bool { return !s.draft.IncludeAppreciation },
			Run: func(ctx context.Context, s *submission) error {
				out, err := c.appreciation.GenerateAppreciation(ctx, s.draft.CourseType)
				if err != nil {
					return err
				}
				s.draft.Content = out.AppreciationMessage
				return nil
			},
		},
		pipeline.Step[submission]{
			Name: StepGenerate,
			Run: func(ctx context.Context, s *submission) error {
				cert, err := c.issuer.Generate(ctx, s.draft)
				if err != nil {
					return err
				}
				s.certificate = cert
				return nil
			},
		},
	)

	c.mu.Lock()
	// Only reachable once an in-flight submission can be abandoned; the busy guard serializes them today.
	if seq != c.seq {
		c.mu.Unlock()
		c.log.Warn("discarding stale submission result", "seq", seq, "latest", c.seq)
		return nil, fmt.Errorf("submit: superseded by a newer submission: %w", apperr.ErrInvalidState)
	}
	if err != nil {
		c.state = StateFailed
		c.certificate = nil
		c.lastErr = err
		c.mu.Unlock()
		c.log.Warn("certificate submission failed", "seq", seq, "step", pipeline.FailedStep(err), "error", err)
		return nil, err
	}

	issued := *sub.certificate
	c.state = StateIssued
	c.certificate = &issued
	c.draft = models.DraftFrom(issued, draft.CourseType, draft.IncludeAppreciation)
	onIssued := c.onIssued
	c.mu.Unlock()

	c.log.Info("certificate issued", "seq", seq, "certificate_id", issued.CertificateID)
	if onIssued != nil {
		onIssued(issued)
	}
	out := issued
	return &out, nil
}

// DownloadPDF fetches the document of the issued certificate. Failures never change state.
func (c *Controller) DownloadPDF(ctx context.Context) ([]byte, string, error) {
	c.mu.Lock()
	if c.state != StateIssued || !c.certificate.IsIssued() {
		state := c.state
		c.mu.Unlock()
		return nil, "", fmt.Errorf("download pdf in state %s: %w", state, apperr.ErrInvalidState)
	}
	id := c.certificate.CertificateID
	c.mu.Unlock()

	body, err := c.issuer.FetchPDF(ctx, id)
	if err != nil {
		c.log.Warn("certificate pdf download failed", "certificate_id", id, "error", err)
		return nil, "", err
	}
	return body, models.CertificateFileName(id), nil
}

func (c *Controller) issuedCopy() *models.Certificate {
	if c.state != StateIssued || c.certificate == nil {
		return nil
	}
	out := *c.certificate
	return &out
}

func (c *Controller) validateDraft(draft models.CertificateDraft) error {
	fields := make(map[string]string)
	if strings.TrimSpace(draft.RecipientName) == "" {
		fields["recipient_name"] = "Recipient name is required!"
	}
	if strings.TrimSpace(draft.CourseName) == "" {
		fields["course_name"] = "Course name is required!"
	}

	if err := c.validate.Struct(draft); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperr.Validation("submit", map[string]string{"draft": err.Error()})
		}
		for _, fe := range verrs {
			key := fe.Field()
			if _, seen := fields[key]; seen {
				continue
			}
			fields[key] = fieldMessage(key, fe.Tag())
		}
	}
	if len(fields) > 0 {
		return apperr.Validation("submit", fields)
	}
	return nil
}

var fieldLabels = map[string]string{
	"recipient_name": "Recipient name",
	"course_name":    "Course name",
	"issue_date":     "Issue date",
	"course_type":    "Course type",
}

func fieldMessage(key, tag string) string {
	switch tag {
	case "required":
		return fieldLabels[key] + " is required!"
	case "datetime":
		return "Issue date must be a calendar date (YYYY-MM-DD)!"
	case "oneof":
		return "Course type must be one of technical, academic, professional!"
	}
	return "Invalid value!"
}

// newValidator reports fields under their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

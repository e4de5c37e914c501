package chatController

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"certdesk/apperr"
	"certdesk/logger"
	"certdesk/models"
)

const (
	GreetingMessage = "Hello! I am your certificate verification bot. Please enter the Certificate ID to verify."
	FallbackMessage = "Sorry, I could not connect to the verification service."
)

// Verifier answers one turn of the verification conversation
type Verifier interface {
	Verify(ctx context.Context, req models.VerifyRequest) (*models.VerifyResponse, error)
}

// Controller owns the verification transcript and the server-issued conversation id.
// A send is rejected while the previous one is still in flight.
type Controller struct {
	log      *logger.Logger
	verifier Verifier

	mu             sync.Mutex
	conversationID *string
	transcript     []models.ConversationTurn
	sending        bool
	seq            uint64
}

func New(log *logger.Logger, verifier Verifier) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		log:      log.With("controller", "VerificationChat"),
		verifier: verifier,
		transcript: []models.ConversationTurn{
			{Text: GreetingMessage, Sender: models.SenderBot},
		},
	}
}

// Send appends the user's text to the transcript and asks the verification service about it.
// The returned turn is the bot reply appended for this send.
func (c *Controller) Send(ctx context.Context, text string) (models.ConversationTurn, error) {
	return c.exchange(ctx, text, "")
}

// Scan starts from a certificate id read off a QR code; the service looks the certificate up directly.
func (c *Controller) Scan(ctx context.Context, certificateID string) (models.ConversationTurn, error) {
	certificateID = strings.TrimSpace(certificateID)
	if certificateID == "" {
		return models.ConversationTurn{}, apperr.Validation("scan", map[string]string{"certificate_id": "Certificate ID is required!"})
	}
	return c.exchange(ctx, certificateID, certificateID)
}

func (c *Controller) exchange(ctx context.Context, text, certificateID string) (models.ConversationTurn, error) {
	if strings.TrimSpace(text) == "" {
		return models.ConversationTurn{}, apperr.Validation("send", map[string]string{"text": "Message is required!"})
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return models.ConversationTurn{}, apperr.ErrBusy
	}
	c.sending = true
	c.seq++
	seq := c.seq
	c.transcript = append(c.transcript, models.ConversationTurn{Text: text, Sender: models.SenderUser})
	req := models.VerifyRequest{
		Text:           text,
		ConversationID: copyString(c.conversationID),
		CertificateID:  certificateID,
	}
	c.mu.Unlock()

	resp, err := c.verifier.Verify(ctx, req)

	var reply models.ConversationTurn
	if err != nil {
		c.log.Warn("verification request failed", "seq", seq, "error", err)
		reply = models.ConversationTurn{Text: FallbackMessage, Sender: models.SenderBot}
	} else {
		reply = models.ConversationTurn{Text: FormatReply(resp), Sender: models.SenderBot}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sending = false
	// Only reachable once an in-flight send can be abandoned; the busy guard serializes sends today.
	if seq != c.seq {
		c.log.Warn("discarding stale verification reply", "seq", seq, "latest", c.seq)
		return reply, fmt.Errorf("send: superseded by a newer message: %w", apperr.ErrInvalidState)
	}
	if err == nil && resp.ConversationID != "" {
		id := resp.ConversationID
		c.conversationID = &id
	}
	c.transcript = append(c.transcript, reply)
	return reply, nil
}

// FormatReply renders the bot text for a verification response, appending the owner block
// when a certificate was found.
func FormatReply(resp *models.VerifyResponse) string {
	text := resp.Response
	if resp.CertificateFound && resp.OwnerInfo != nil {
		o := resp.OwnerInfo
		text += fmt.Sprintf("\nOwner: %s\nCourse: %s\nIssued On: %s\nCertificate ID: %s",
			o.RecipientName, o.CourseName, o.IssueDate, o.CertificateID)
	}
	return text
}

// Session returns a copy of the conversation
func (c *Controller) Session() models.ConversationSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	transcript := make([]models.ConversationTurn, len(c.transcript))
	copy(transcript, c.transcript)
	return models.ConversationSession{
		ConversationID: copyString(c.conversationID),
		Transcript:     transcript,
	}
}

// Sending reports whether a send is in flight; input should be disabled while it is
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

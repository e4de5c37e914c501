package chatController

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"certdesk/apperr"
	"certdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	mu       sync.Mutex
	replies  []*models.VerifyResponse
	errs     []error
	requests []models.VerifyRequest
	release  chan struct{}
	started  chan struct{}
}

func (f *fakeVerifier) Verify(ctx context.Context, req models.VerifyRequest) (*models.VerifyResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	i := len(f.requests) - 1
	release, started := f.release, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.replies[i], nil
}

func lastTwo(s models.ConversationSession) []models.ConversationTurn {
	return s.Transcript[len(s.Transcript)-2:]
}

func TestNew_SeedsGreeting(t *testing.T) {
	c := New(nil, &fakeVerifier{})
	s := c.Session()
	assert.Nil(t, s.ConversationID)
	require.Len(t, s.Transcript, 1)
	assert.Equal(t, models.ConversationTurn{Text: GreetingMessage, Sender: models.SenderBot}, s.Transcript[0])
}

func TestSend_NotFoundHasNoOwnerBlock(t *testing.T) {
	v := &fakeVerifier{replies: []*models.VerifyResponse{
		{Response: "Not found", ConversationID: "s-1", CertificateFound: false},
	}}
	c := New(nil, v)

	reply, err := c.Send(context.Background(), "C-404")
	require.NoError(t, err)
	assert.Equal(t, "Not found", reply.Text)

	s := c.Session()
	assert.Equal(t, []models.ConversationTurn{
		{Text: "C-404", Sender: models.SenderUser},
		{Text: "Not found", Sender: models.SenderBot},
	}, lastTwo(s))
	require.NotNil(t, s.ConversationID)
	assert.Equal(t, "s-1", *s.ConversationID)
	assert.Nil(t, v.requests[0].ConversationID)
}

func TestSend_FoundAppendsOwnerBlockInOrder(t *testing.T) {
	v := &fakeVerifier{replies: []*models.VerifyResponse{{
		Response:         "I found a certificate for Ada Lovelace.",
		ConversationID:   "s-1",
		CertificateFound: true,
		OwnerInfo: &models.OwnerInfo{
			RecipientName: "Ada Lovelace",
			CourseName:    "Algorithms",
			IssueDate:     "2024-01-01",
			CertificateID: "c-1",
		},
	}}}
	c := New(nil, v)

	reply, err := c.Send(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "I found a certificate for Ada Lovelace.\nOwner: Ada Lovelace\nCourse: Algorithms\nIssued On: 2024-01-01\nCertificate ID: c-1", reply.Text)
}

func TestFormatReply_FoundWithoutOwnerInfo(t *testing.T) {
	assert.Equal(t, "Found", FormatReply(&models.VerifyResponse{Response: "Found", CertificateFound: true}))
}

func TestSend_TransportFailureAppendsFallbackAndKeepsConversation(t *testing.T) {
	v := &fakeVerifier{
		replies: []*models.VerifyResponse{{Response: "Hi", ConversationID: "s-1"}, nil},
		errs:    []error{nil, apperr.Network("verify certificate", errors.New("connection refused"))},
	}
	c := New(nil, v)

	_, err := c.Send(context.Background(), "hello")
	require.NoError(t, err)

	reply, err := c.Send(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, FallbackMessage, reply.Text)

	s := c.Session()
	assert.Equal(t, []models.ConversationTurn{
		{Text: "c-1", Sender: models.SenderUser},
		{Text: FallbackMessage, Sender: models.SenderBot},
	}, lastTwo(s))
	require.NotNil(t, s.ConversationID)
	assert.Equal(t, "s-1", *s.ConversationID)

	require.Len(t, v.requests, 2)
	require.NotNil(t, v.requests[1].ConversationID)
	assert.Equal(t, "s-1", *v.requests[1].ConversationID)
	assert.False(t, c.Sending())
}

func TestSend_FailureBeforeFirstResponseLeavesIDNil(t *testing.T) {
	v := &fakeVerifier{errs: []error{apperr.Service("verify certificate", 500, "")}}
	c := New(nil, v)

	_, err := c.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Nil(t, c.Session().ConversationID)
}

func TestSend_BlankTextIsRejected(t *testing.T) {
	v := &fakeVerifier{}
	c := New(nil, v)

	_, err := c.Send(context.Background(), "   \t")
	assert.True(t, apperr.IsValidation(err))
	assert.Len(t, c.Session().Transcript, 1)
	assert.Empty(t, v.requests)
}

func TestSend_UserTurnVisibleBeforeReplyAndBusyGuard(t *testing.T) {
	v := &fakeVerifier{
		replies: []*models.VerifyResponse{{Response: "ok", ConversationID: "s-1"}},
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c := New(nil, v)

	done := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "c-1")
		done <- err
	}()

	select {
	case <-v.started:
	case <-time.After(time.Second):
		t.Fatal("verify was never called")
	}

	s := c.Session()
	require.Len(t, s.Transcript, 2)
	assert.Equal(t, models.ConversationTurn{Text: "c-1", Sender: models.SenderUser}, s.Transcript[1])
	assert.True(t, c.Sending())

	_, err := c.Send(context.Background(), "again")
	assert.ErrorIs(t, err, apperr.ErrBusy)
	assert.Len(t, c.Session().Transcript, 2)

	close(v.release)
	require.NoError(t, <-done)
	assert.Len(t, c.Session().Transcript, 3)
	assert.False(t, c.Sending())
}

func TestScan_ForwardsCertificateID(t *testing.T) {
	v := &fakeVerifier{replies: []*models.VerifyResponse{{Response: "I found a certificate for Ada.", ConversationID: "s-7"}}}
	c := New(nil, v)

	_, err := c.Scan(context.Background(), " c-1 ")
	require.NoError(t, err)
	require.Len(t, v.requests, 1)
	assert.Equal(t, "c-1", v.requests[0].CertificateID)
	assert.Equal(t, "c-1", v.requests[0].Text)

	_, err = c.Scan(context.Background(), "")
	assert.True(t, apperr.IsValidation(err))
}

func TestSession_ReturnsCopy(t *testing.T) {
	c := New(nil, &fakeVerifier{})
	s := c.Session()
	s.Transcript[0].Text = "changed"
	assert.Equal(t, GreetingMessage, c.Session().Transcript[0].Text)
}

func TestSend_MissingConversationIDKeepsNull(t *testing.T) {
	v := &fakeVerifier{replies: []*models.VerifyResponse{
		{Response: "Please enter a certificate id."},
		{Response: "Not found", ConversationID: "s-2"},
	}}
	c := New(nil, v)

	_, err := c.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Nil(t, c.Session().ConversationID)

	_, err = c.Send(context.Background(), "C-404")
	require.NoError(t, err)
	require.Len(t, v.requests, 2)
	assert.Nil(t, v.requests[1].ConversationID)
	require.NotNil(t, c.Session().ConversationID)
	assert.Equal(t, "s-2", *c.Session().ConversationID)
}

func TestSend_StaleReplyIsDiscarded(t *testing.T) {
	v := &fakeVerifier{
		replies: []*models.VerifyResponse{{Response: "late", ConversationID: "s-1"}},
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c := New(nil, v)

	done := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "c-1")
		done <- err
	}()
	<-v.started

	c.mu.Lock()
	c.seq++
	c.mu.Unlock()
	close(v.release)

	assert.ErrorIs(t, <-done, apperr.ErrInvalidState)
	s := c.Session()
	assert.Len(t, s.Transcript, 2)
	assert.Nil(t, s.ConversationID)
	assert.False(t, c.Sending())
}

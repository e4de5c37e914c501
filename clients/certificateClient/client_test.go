package certificateClient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"certdesk/apperr"
	"certdesk/logger"
	"certdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(logger.Nop(), Config{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(logger.Nop(), Config{})
	assert.Error(t, err)
	_, err = New(nil, Config{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestGenerate_SendsDraftAndReturnsServiceRecord(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/certificates/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"certificate_id":"c-1","recipient_name":"Ada Lovelace","course_name":"Algorithms","issue_date":"2024-01-01","content":"Great work!","qr_code":"aGk="}`)
	})

	draft := models.NewDraft()
	draft.RecipientName = "Ada Lovelace"
	draft.CourseName = "Algorithms"
	draft.IssueDate = "2024-01-01"
	draft.Content = "Great work!"

	cert, err := c.Generate(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", got["recipient_name"])
	assert.Equal(t, "technical", got["course_type"])
	assert.Equal(t, "Great work!", got["content"])
	assert.Equal(t, true, got["include_appreciation"])

	assert.Equal(t, models.Certificate{
		CertificateID: "c-1",
		RecipientName: "Ada Lovelace",
		CourseName:    "Algorithms",
		IssueDate:     "2024-01-01",
		Content:       "Great work!",
		QRCode:        "aGk=",
	}, *cert)
}

func TestGenerate_FailureStatusIsServiceError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	cert, err := c.Generate(context.Background(), models.NewDraft())
	assert.Nil(t, cert)
	require.Error(t, err)
	assert.True(t, apperr.IsService(err))
}

func TestGenerate_MissingIDIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"recipient_name":"Ada"}`)
	})

	_, err := c.Generate(context.Background(), models.NewDraft())
	assert.True(t, apperr.IsService(err))
}

func TestGenerate_TransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(logger.Nop(), Config{BaseURL: url})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), models.NewDraft())
	require.Error(t, err)
	assert.True(t, apperr.IsNetwork(err))
}

func TestFetchPDF(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/certificates/c-1/pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = io.WriteString(w, "%PDF-1.4 body")
		case "/certificates/empty/pdf":
			w.WriteHeader(http.StatusOK)
		case "/certificates/broken/pdf":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	body, err := c.FetchPDF(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(body))

	_, err = c.FetchPDF(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))

	_, err = c.FetchPDF(ctx, "empty")
	assert.True(t, apperr.IsService(err))

	_, err = c.FetchPDF(ctx, "broken")
	assert.True(t, apperr.IsService(err))
}

func TestFetchPDF_EmptyIDNeverCallsService(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.FetchPDF(context.Background(), "  ")
	assert.True(t, apperr.IsValidation(err))
	assert.False(t, called)
}

func TestVerify_SendsNullConversationForNewSession(t *testing.T) {
	var raw map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verify-certificate-chatbot", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"response":"Found it","conversation_id":"s-1","certificate_found":true,"owner_info":{"recipient_name":"Ada","course_name":"Algorithms","issue_date":"2024-01-01","certificate_id":"c-1"}}`)
	})

	out, err := c.Verify(context.Background(), models.VerifyRequest{Text: "c-1"})
	require.NoError(t, err)

	assert.Equal(t, "null", string(raw["conversation_id"]))
	assert.Equal(t, `"c-1"`, string(raw["text"]))
	_, hasCert := raw["certificate_id"]
	assert.False(t, hasCert)

	assert.Equal(t, "s-1", out.ConversationID)
	assert.True(t, out.CertificateFound)
	require.NotNil(t, out.OwnerInfo)
	assert.Equal(t, "Ada", out.OwnerInfo.RecipientName)
}

func TestVerify_EchoesConversationID(t *testing.T) {
	var req models.VerifyRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, _ = io.WriteString(w, `{"response":"ok","conversation_id":"s-1","certificate_found":false}`)
	})

	id := "s-1"
	_, err := c.Verify(context.Background(), models.VerifyRequest{Text: "hello", ConversationID: &id})
	require.NoError(t, err)
	require.NotNil(t, req.ConversationID)
	assert.Equal(t, "s-1", *req.ConversationID)
}

func TestVerify_CancelledContextIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Verify(ctx, models.VerifyRequest{Text: "x"})
	assert.True(t, apperr.IsNetwork(err))
}

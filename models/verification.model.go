package models

// VerifyRequest is sent to the verification chatbot endpoint.
// A nil ConversationID starts a new server-side session.
type VerifyRequest struct {
	Text           string  `json:"text"`
	ConversationID *string `json:"conversation_id"`
	CertificateID  string  `json:"certificate_id,omitempty"`
}

// OwnerInfo identifies the holder of a certificate found during verification
type OwnerInfo struct {
	RecipientName string `json:"recipient_name"`
	CourseName    string `json:"course_name"`
	IssueDate     string `json:"issue_date"`
	CertificateID string `json:"certificate_id"`
}

type VerifyResponse struct {
	Response         string     `json:"response"`
	ConversationID   string     `json:"conversation_id"`
	CertificateFound bool       `json:"certificate_found"`
	OwnerInfo        *OwnerInfo `json:"owner_info,omitempty"`
}

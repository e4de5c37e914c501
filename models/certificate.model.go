package models

import "strings"

// CourseType selects the tone of the generated appreciation text
type CourseType string

const (
	CourseTechnical    CourseType = "technical"
	CourseAcademic     CourseType = "academic"
	CourseProfessional CourseType = "professional"
)

// CourseTypes lists the accepted course types in display order
var CourseTypes = []CourseType{CourseTechnical, CourseAcademic, CourseProfessional}

func (t CourseType) Valid() bool {
	switch t {
	case CourseTechnical, CourseAcademic, CourseProfessional:
		return true
	}
	return false
}

// Certificate is either a draft (no CertificateID) or a record issued by the certificate service
type Certificate struct {
	CertificateID string `json:"certificate_id,omitempty" yaml:"certificate_id,omitempty"`
	RecipientName string `json:"recipient_name" yaml:"recipient_name"`
	CourseName    string `json:"course_name" yaml:"course_name"`
	IssueDate     string `json:"issue_date" yaml:"issue_date"`              // YYYY-MM-DD
	Content       string `json:"content" yaml:"content"`                    // newline separated paragraphs
	QRCode        string `json:"qr_code,omitempty" yaml:"qr_code,omitempty"` // base64 PNG
	QRCodeURL     string `json:"qr_code_url,omitempty" yaml:"qr_code_url,omitempty"`
}

// IsIssued reports whether the certificate service assigned an id
func (c *Certificate) IsIssued() bool {
	return c != nil && strings.TrimSpace(c.CertificateID) != ""
}

// CertificateDraft is the generate request sent to the certificate service
type CertificateDraft struct {
	RecipientName       string     `json:"recipient_name" validate:"required"`
	CourseName          string     `json:"course_name" validate:"required"`
	IssueDate           string     `json:"issue_date" validate:"required,datetime=2006-01-02"`
	CourseType          CourseType `json:"course_type" validate:"required,oneof=technical academic professional"`
	Content             string     `json:"content"`
	IncludeAppreciation bool       `json:"include_appreciation"`
}

// NewDraft returns an empty draft with the form defaults
func NewDraft() CertificateDraft {
	return CertificateDraft{
		CourseType:          CourseTechnical,
		IncludeAppreciation: true,
	}
}

// DraftPatch carries the form fields a user changed; nil fields are left untouched
type DraftPatch struct {
	RecipientName       *string     `json:"recipient_name" form:"recipient_name"`
	CourseName          *string     `json:"course_name" form:"course_name"`
	IssueDate           *string     `json:"issue_date" form:"issue_date"`
	CourseType          *CourseType `json:"course_type" form:"course_type"`
	IncludeAppreciation *bool       `json:"include_appreciation" form:"include_appreciation"`
}

// Apply copies the set fields of the patch onto the draft
func (p DraftPatch) Apply(d *CertificateDraft) {
	if p.RecipientName != nil {
		d.RecipientName = *p.RecipientName
	}
	if p.CourseName != nil {
		d.CourseName = *p.CourseName
	}
	if p.IssueDate != nil {
		d.IssueDate = *p.IssueDate
	}
	if p.CourseType != nil {
		d.CourseType = *p.CourseType
	}
	if p.IncludeAppreciation != nil {
		d.IncludeAppreciation = *p.IncludeAppreciation
	}
}

// DraftFrom rebuilds the editable form fields from an issued certificate
func DraftFrom(c Certificate, courseType CourseType, includeAppreciation bool) CertificateDraft {
	return CertificateDraft{
		RecipientName:       c.RecipientName,
		CourseName:          c.CourseName,
		IssueDate:           c.IssueDate,
		CourseType:          courseType,
		Content:             c.Content,
		IncludeAppreciation: includeAppreciation,
	}
}

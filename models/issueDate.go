package models

import (
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// IssueDateLayout is the ISO-8601 calendar date exchanged with the certificate service
const IssueDateLayout = "2006-01-02"

var issueDateParser = &now.Config{
	TimeLocation: time.UTC,
	TimeFormats: []string{
		"2006-1-2",
		"2006/1/2",
		"2006.1.2",
		time.RFC3339,
	},
}

// NormalizeIssueDate rewrites the date forms a user may type into YYYY-MM-DD.
// Input that cannot be parsed is returned trimmed but otherwise unchanged so validation can report it.
func NormalizeIssueDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	t, err := issueDateParser.With(time.Now().In(time.UTC)).Parse(raw)
	if err != nil {
		return raw
	}
	return t.Format(IssueDateLayout)
}

// CertificateFileName is the name a downloaded certificate document is saved under
func CertificateFileName(certificateID string) string {
	return "certificate_" + certificateID + ".pdf"
}

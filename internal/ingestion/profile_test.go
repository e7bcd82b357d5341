package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "first line", text: "Jane Doe\nSoftware Engineer", want: "Jane Doe"},
		{name: "skips headings", text: "RESUME\nContact: jane@example.com\nPriya Sharma\n", want: "Priya Sharma"},
		{name: "initial", text: "J. Smith\nDeveloper", want: "J. Smith"},
		{name: "title case fallback", text: "curriculum vitae of Arjun Mehta engineer", want: "Arjun Mehta"},
		{name: "nothing", text: "1234 5678\n@@@", want: NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractName(tt.text))
		})
	}
}

func TestExtractMobile(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "Call +91 9876543210 anytime", want: "+919876543210"},
		{text: "Phone: 9876543210", want: "9876543210"},
		{text: "Tel +1 415-555-0123", want: "+14155550123"},
		{text: "Office 415 555 0123", want: "4155550123"},
		{text: "no digits here", want: NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMobile(tt.text))
		})
	}
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "jane.doe+jobs@example.co.uk", extractEmail("mail: jane.doe+jobs@example.co.uk, phone"))
	assert.Equal(t, NotFound, extractEmail("jane at example dot com"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Jane Doe Go, Kubernetes caf", cleanText("Jane   Doe\n\n Go, Kubernetes ★ café"))
}

func TestBuildResumeProfile(t *testing.T) {
	p := BuildResumeProfile("jane.pdf", "Jane Doe\njane@example.com\n+91 9876543210\nGo developer")

	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, "+919876543210", p.Mobile)
	assert.Equal(t, "jane@example.com", p.Email)

	block := p.String()
	assert.Contains(t, block, "FILE: jane.pdf\n")
	assert.Contains(t, block, "CANDIDATE INFORMATION:\nName: Jane Doe\nMobile: +919876543210\nEmail: jane@example.com\n")
	assert.Contains(t, block, "RESUME CONTENT:\nJane Doe jane@example.com +91 9876543210 Go developer\n")
}

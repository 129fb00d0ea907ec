package mailer

import (
	"strings"
	"testing"
)

func TestBuildInvitationEmail(t *testing.T) {
	msg := BuildInvitationEmail(InvitationEmailData{
		SiteName:    "TenantKit",
		OrgName:     "Acme Corp",
		InviterName: "Alice",
		Role:        "admin",
		AcceptLink:  "https://example.com/invitations/abc123/accept",
		ExpiresIn:   "7 days",
	})

	if msg.To != "" {
		t.Errorf("To = %q, want empty (set by caller)", msg.To)
	}
	if !strings.Contains(msg.Subject, "Acme Corp") || !strings.Contains(msg.Subject, "TenantKit") {
		t.Errorf("subject missing org or site name: %q", msg.Subject)
	}

	for _, body := range []string{msg.TextBody, msg.HTMLBody} {
		for _, want := range []string{"Alice", "Acme Corp", "admin", "https://example.com/invitations/abc123/accept", "7 days"} {
			if !strings.Contains(body, want) {
				t.Errorf("body missing %q", want)
			}
		}
	}
}

func TestBuildInvitationEmail_EscapesHTML(t *testing.T) {
	msg := BuildInvitationEmail(InvitationEmailData{
		SiteName:    "TenantKit",
		OrgName:     `<script>alert("x")</script>`,
		InviterName: "Alice",
		Role:        "member",
		AcceptLink:  "https://example.com/accept",
		ExpiresIn:   "1 day",
	})

	if strings.Contains(msg.HTMLBody, "<script>") {
		t.Error("org name was not escaped in the HTML body")
	}
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME("noreply@example.com", Email{
		To:       "invitee@example.com",
		Subject:  "Hello",
		TextBody: "plain text part",
		HTMLBody: "<p>html part</p>",
	}))

	for _, want := range []string{
		"From: noreply@example.com\r\n",
		"To: invitee@example.com\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: multipart/alternative",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Type: text/html; charset=utf-8",
		"plain text part",
		"<p>html part</p>",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}

	// The text part comes first so capable clients prefer the HTML part.
	if strings.Index(raw, "plain text part") > strings.Index(raw, "<p>html part</p>") {
		t.Error("text part should precede the HTML part")
	}

	// The closing boundary terminates the message.
	if !strings.HasSuffix(raw, "--"+mimeBoundary+"--\r\n") {
		t.Errorf("message not terminated by closing boundary")
	}
}

func TestBuildMIME_SubjectEncoding(t *testing.T) {
	raw := string(buildMIME("noreply@example.com", Email{
		To:      "a@example.com",
		Subject: "Invitación à déjeuner",
	}))

	// Non-ASCII subjects are Q-encoded per RFC 2047.
	if !strings.Contains(raw, "=?utf-8?q?") {
		t.Errorf("non-ASCII subject was not Q-encoded:\n%s", raw)
	}
}

package utils

import (
	"html/template"
	"strings"
)

var verifyCodeTmpl = template.Must(template.New("verify_code").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Email verification</h2>
  <p>Enter the code below to verify your address. It is valid for 10 minutes.</p>
  <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
  <p style="color: #888; font-size: 12px;">If you did not request this, you can safely ignore this mail.</p>
</body>
</html>`))

var inquiryAnsweredTmpl = template.Must(template.New("inquiry_answered").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <h2>Your inquiry has a new reply</h2>
  <p>A reply was posted to your inquiry "{{.Subject}}".</p>
  <blockquote style="border-left: 3px solid #ddd; padding-left: 12px; color: #555;">{{.Preview}}</blockquote>
  <p>Visit the inquiries page of your account to read the full conversation.</p>
</body>
</html>`))

// SendVerificationCodeMail renders and sends the email verification template.
func SendVerificationCodeMail(to, code string) error {
	var b strings.Builder
	if err := verifyCodeTmpl.Execute(&b, struct{ Code string }{Code: code}); err != nil {
		return err
	}
	return SendHTMLMail(to, "Your verification code", b.String())
}

// SendInquiryAnsweredMail notifies an inquiry owner about a new admin reply.
// Preview is truncated so full answers do not leak into notification mail.
func SendInquiryAnsweredMail(to, subject, answer string) error {
	preview := answer
	if runes := []rune(preview); len(runes) > 120 {
		preview = string(runes[:120]) + "…"
	}
	var b strings.Builder
	err := inquiryAnsweredTmpl.Execute(&b, struct{ Subject, Preview string }{Subject: subject, Preview: preview})
	if err != nil {
		return err
	}
	return SendHTMLMail(to, "New reply to your inquiry", b.String())
}

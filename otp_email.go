package auth

import (
	"github.com/flosch/pongo2/v6"
)

// DefaultVerificationSubject is the subject of the OTP email.
const DefaultVerificationSubject = "Verification Code for SMIT Enrollment"

const defaultVerificationTemplate = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #0d6efd;">Email Verification</h2>
  <p>Hello {{ name }},</p>
  <p>Use the following code to verify your email address:</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">{{ otp }}</p>
  <p>If you did not request this code, you can ignore this email.</p>
</div>`

// VerificationEmail renders the OTP notification sent at registration.
type VerificationEmail struct {
	Subject  string
	template *pongo2.Template
}

// NewVerificationEmail compiles a pongo2 template. The template receives
// name, email and otp.
func NewVerificationEmail(subject, source string) (*VerificationEmail, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, err
	}
	if subject == "" {
		subject = DefaultVerificationSubject
	}
	return &VerificationEmail{Subject: subject, template: tpl}, nil
}

// DefaultVerificationEmail returns the built-in OTP email.
func DefaultVerificationEmail() *VerificationEmail {
	return &VerificationEmail{
		Subject:  DefaultVerificationSubject,
		template: pongo2.Must(pongo2.FromString(defaultVerificationTemplate)),
	}
}

// Render builds the notification for user carrying otp.
func (v *VerificationEmail) Render(user *User, otp int) (Notification, error) {
	body, err := v.template.Execute(pongo2.Context{
		"name":  user.Name,
		"email": user.Email,
		"otp":   otp,
	})
	if err != nil {
		return Notification{}, err
	}
	return Notification{
		To:      user.Email,
		Subject: v.Subject,
		Body:    body,
		HTML:    true,
	}, nil
}

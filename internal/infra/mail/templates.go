package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	subjectVerification  = "Verify Your Email Address"
	subjectPasswordReset = "Reset Your Password"
	subjectTwoFactorCode = "Your Login Verification Code"
)

const layout = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">{{template "body" .}}</div>`

const verificationBody = `{{define "body"}}
<h2>Welcome, {{.Name}}!</h2>
<p>Thank you for signing up. Please verify your email address by clicking the button below:</p>
<p style="margin: 30px 0;">
  <a href="{{.URL}}" style="background-color: #1677FF; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Verify Email</a>
</p>
<p style="color: #9CA3AF; font-size: 14px; margin-top: 30px;">This link will expire in {{.Expiry}}. If you didn't create an account, you can safely ignore this email.</p>
{{end}}`

const passwordResetBody = `{{define "body"}}
<h2>Hello, {{.Name}}</h2>
<p>We received a request to reset your password. Click the button below to create a new password:</p>
<p style="margin: 30px 0;">
  <a href="{{.URL}}" style="background-color: #1677FF; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Reset Password</a>
</p>
<p style="color: #9CA3AF; font-size: 14px; margin-top: 30px;">This link will expire in {{.Expiry}}. If you didn't request a password reset, you can safely ignore this email.</p>
{{end}}`

const twoFactorBody = `{{define "body"}}
<h2>Hello, {{.Name}}</h2>
<p>Your verification code for logging in is:</p>
<p style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #1677FF; margin: 30px 0; text-align: center;">{{.Code}}</p>
<p style="color: #9CA3AF; font-size: 14px; margin-top: 30px;">This code will expire in {{.Expiry}}. If you didn't attempt to log in, please secure your account immediately.</p>
{{end}}`

var (
	verificationTemplate  = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(verificationBody))
	passwordResetTemplate = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(passwordResetBody))
	twoFactorTemplate     = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(twoFactorBody))
)

type templateData struct {
	Name   string
	URL    string
	Code   string
	Expiry string
}

func render(tmpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

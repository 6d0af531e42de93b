package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

const Welcome = "welcome"

var welcomeTpl = template.Must(template.New(Welcome).Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #333;">
    <h2>Welcome, {{.Username}}!</h2>
    <p>Your account has been created. You can now sign in, fill out your
    profile and upload documents.</p>
    <p style="color:#888;font-size:12px;">If you did not register this account,
    you can ignore this email.</p>
  </body>
</html>`))

// Render renders the named template to subject and HTML body.
func Render(name string, data map[string]any) (subject, html string, err error) {
	switch name {
	case Welcome:
		var buf bytes.Buffer
		if err := welcomeTpl.Execute(&buf, data); err != nil {
			return "", "", err
		}
		return "Welcome to accounthub", buf.String(), nil
	default:
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
}

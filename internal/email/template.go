package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>{{.AppName}} Verification Code</title></head>
<body>
<h2>Hello {{.Username}},</h2>
<p>Thank you for registering. Please use the following verification code to complete your registration:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px;">{{.Code}}</p>
<p>This code expires at {{.ExpiresAt}}.</p>
<p>If you did not request this code, please ignore this email.</p>
</body>
</html>
`))

// Renderer arma asunto y cuerpo HTML del correo de verificación.
type Renderer struct {
	AppName string
}

func NewRenderer(appName string) Renderer {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		appName = "SkillShare"
	}
	return Renderer{AppName: appName}
}

func (r Renderer) Subject() string {
	return fmt.Sprintf("%s Verification Code", r.AppName)
}

func (r Renderer) Body(msg VerificationMessage) (string, error) {
	var buf bytes.Buffer
	err := verificationTemplate.Execute(&buf, struct {
		AppName   string
		Username  string
		Code      string
		ExpiresAt string
	}{
		AppName:   r.AppName,
		Username:  msg.Username,
		Code:      msg.Code,
		ExpiresAt: msg.ExpiresAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

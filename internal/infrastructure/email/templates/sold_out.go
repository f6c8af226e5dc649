// Package templates renders alert email bodies
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// SoldOutProps describes a package that has just sold out.
type SoldOutProps struct {
	PackageName string
	PackageID   string
	Total       uint
	SoldAt      time.Time
	Remaining   []RemainingPackage
}

// RemainingPackage is a package that still has stock.
type RemainingPackage struct {
	Name      string
	Available uint
}

var soldOutTemplate = template.Must(template.New("soldOut").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>{{.PackageName}} sold out</title>
  </head>
  <body style="font-family: Helvetica, sans-serif; font-size: 16px; background-color: #f4f5f6; margin: 0; padding: 24px;">
    <div style="max-width: 600px; margin: 0 auto; background: #ffffff; border: 1px solid #eaebed; border-radius: 16px; padding: 24px;">
      <p style="margin: 0 0 16px 0;"><strong>{{.PackageName}}</strong> ({{.PackageID}}) sold its last of {{.Total}} units at {{.SoldAt.Format "2006-01-02 15:04:05 MST"}}.</p>
      {{- if .Remaining}}
      <p style="margin: 0 0 8px 0;">Still available:</p>
      <ul style="margin: 0 0 16px 0;">
        {{- range .Remaining}}
        <li>{{.Name}}: {{.Available}}</li>
        {{- end}}
      </ul>
      {{- else}}
      <p style="margin: 0 0 16px 0;">Every package is now sold out.</p>
      {{- end}}
    </div>
  </body>
</html>`))

// GetSoldOutEmailContent renders the HTML body of a sold-out alert.
func GetSoldOutEmailContent(props SoldOutProps) (string, error) {
	var buf bytes.Buffer
	if err := soldOutTemplate.Execute(&buf, props); err != nil {
		return "", fmt.Errorf("render sold-out email: %w", err)
	}
	return buf.String(), nil
}

// GetSoldOutSubject returns the subject line of a sold-out alert.
func GetSoldOutSubject(props SoldOutProps) string {
	return fmt.Sprintf("%s is sold out", props.PackageName)
}

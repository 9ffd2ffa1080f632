package service

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/dkrizic/memorylove/service/memory"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var templateFuncs = template.FuncMap{
	"longDate": longDate,
	"imageURL": imageURL,
	"inc":      func(i int) int { return i + 1 },
}

// ParseTemplates parses all embedded templates and returns a *template.Template.
// Logs any parse errors using slog.
func ParseTemplates(ctx context.Context) *template.Template {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse templates", "error", err)
		return nil
	}
	return tmpl
}

// longDate renders a createdAt timestamp as "14 de fevereiro de 2024".
// Unparseable values are shown as stored.
func longDate(createdAt string) string {
	t, err := time.Parse(memory.TimeLayout, createdAt)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return createdAt
		}
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}

// imageURL lets embedded data:image/ photos through html/template, which
// rejects data URLs by default.
func imageURL(s string) any {
	if strings.HasPrefix(s, "data:image/") {
		return template.URL(s)
	}
	return s
}

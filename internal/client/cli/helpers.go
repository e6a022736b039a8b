package cli

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// renderTemplate выполняет text/template и возвращает результат строкой
func renderTemplate(tmpl string, data any) (string, error) {
	t, err := template.New("out").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}

// splitList разбирает comma-separated список, отбрасывая пустые элементы
func splitList(value string) []string {
	if value == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	return items
}

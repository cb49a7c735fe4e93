// Package page renders a read-only HTML summary of a session's form: every
// labelled value, the current status and the request that would be sent.
package page

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/ziadkadry99/ecoform/internal/images"
	"github.com/ziadkadry99/ecoform/internal/schema"
)

const highlightStyle = "github"

// Data is everything shown on the page.
type Data struct {
	Session string
	Status  string
	Values  schema.Schema
	Images  []images.Report
}

// Markdown builds the page body as Markdown.
func Markdown(d Data) (string, error) {
	var b strings.Builder

	b.WriteString("# Параметры модели\n\n")
	if d.Session != "" {
		fmt.Fprintf(&b, "Сессия: `%s`\n\n", d.Session)
	}
	status := d.Status
	if status == "" {
		status = "нет"
	}
	fmt.Fprintf(&b, "**Статус:** %s\n\n", status)
	fmt.Fprintf(&b, "**t** = %s\n\n", d.Values.Time)

	b.WriteString("## Начальные значения\n\n")
	b.WriteString("| Показатель | Начальное значение | Предел |\n|---|---|---|\n")
	for i, label := range schema.CfLabels {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", label, d.Values.Init[i], d.Values.Restrictions[i])
	}

	b.WriteString("\n## Возмущения\n\n")
	b.WriteString("| Возмущение | a | b |\n|---|---|---|\n")
	for i, label := range schema.FaksLabels {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", label, d.Values.Faks[i][0], d.Values.Faks[i][1])
	}

	b.WriteString("\n## Уравнения\n\n")
	b.WriteString("| Уравнение | Коэффициенты |\n|---|---|\n")
	for _, eq := range schema.Equations {
		fmt.Fprintf(&b, "| %s | %s |\n", schema.EquationLabels[eq.Index], strings.Join(d.Values.Equations[eq.Index], ", "))
	}

	if len(d.Images) > 0 {
		b.WriteString("\n## Результаты\n\n")
		for _, r := range d.Images {
			if !r.Available {
				fmt.Fprintf(&b, "- %s: %s. %s\n", r.Page, r.Message, images.Hint)
				continue
			}
			for _, img := range r.Images {
				if img.Missing {
					fmt.Fprintf(&b, "- %s: %s\n", img.File, img.Message)
					continue
				}
				fmt.Fprintf(&b, "- ![%s](%s)\n", img.File, img.URL)
			}
		}
	}

	body, err := json.MarshalIndent(d.Values.Request(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}
	b.WriteString("\n## Запрос\n\n```json\n")
	b.Write(body)
	b.WriteString("\n```\n")

	return b.String(), nil
}

var (
	mdOnce sync.Once
	md     goldmark.Markdown

	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func markdown() goldmark.Markdown {
	mdOnce.Do(func() {
		md = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle(highlightStyle),
					highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		)
	})
	return md
}

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("span", "pre", "code", "div")
		p.AllowAttrs("id").OnElements("h1", "h2", "h3")
		policy = p
	})
	return policy
}

// RenderBody converts the page Markdown to sanitised HTML.
func RenderBody(d Data) (string, error) {
	src, err := Markdown(d)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := markdown().Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return sanitizer().Sanitize(buf.String()), nil
}

// HighlightCSS returns the stylesheet for the class-based code highlighting.
func HighlightCSS() (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(highlightStyle)); err != nil {
		return "", fmt.Errorf("writing highlight css: %w", err)
	}
	return buf.String(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>Параметры модели</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: .3rem .6rem; text-align: left; }
img { max-width: 100%; }
{{.CSS}}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Render returns the full HTML document.
func Render(d Data) ([]byte, error) {
	body, err := RenderBody(d)
	if err != nil {
		return nil, err
	}
	css, err := HighlightCSS()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		CSS  template.CSS
		Body template.HTML
	}{template.CSS(css), template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}
	return buf.Bytes(), nil
}

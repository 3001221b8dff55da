// Package templates embeds the HTML views and their helper functions.
package templates

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"blogicum/common"
	"blogicum/forms"
	"blogicum/media"
)

//go:embed html/*.html
var files embed.FS

// Raw HTML in user text is dropped; goldmark only passes it with WithUnsafe.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

var funcs = template.FuncMap{
	"now":           func() time.Time { return time.Now().UTC() },
	"markdown":      renderMarkdown,
	"date":          func(t time.Time) string { return t.UTC().Format("January 2, 2006, 15:04") },
	"pubDateLayout": func() string { return forms.PubDateLayout },
	"mediaURL":      media.URL,
	"truncateWords": truncateWords,
	"add":           func(a, b int) int { return a + b },
}

// Parse builds the template set; each file is addressed by its base name.
func Parse() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "html/*.html")
}

// Setup installs the templates on router.
func Setup(router *gin.Engine) error {
	tmpl, err := Parse()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}

// Render writes name with data plus the values every page uses.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["currentUser"] = common.CurrentUser(c)
	data["path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

func renderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(buf.String())
}

func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}

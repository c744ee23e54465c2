package api

import (
	"bytes"
	"errors"
	"html/template"
)

// Body fragments. The layout supplies the surrounding document.
var (
	rootBody = template.Must(template.New("root").Parse(
		`Serving contents of {{.Directory}}<ul>` +
			`{{range .Titles}}<li><a href="/{{.Key}}/">{{.DisplayTitle}}</a>: {{.IssueCount}} issues</li>{{end}}` +
			`</ul>`))

	titleBody = template.Must(template.New("title").Parse(
		`<h1>{{.DisplayTitle}}</h1><ul>` +
			`{{range .Issues}}<li><a href="/issue/{{$.Key}}/{{.FileKey}}/">{{.Name}}</a>{{with .Size}} ({{.}}){{end}}</li>{{end}}` +
			`</ul>`))

	issueBody = template.Must(template.New("issue").Parse(
		`<h1>Files in {{.TitleKey}}</h1><p>{{len .Pages}} pages</p><ul>` +
			`{{range .Pages}}<li><a href="/page/{{$.TitleKey}}/{{$.FileKey}}/{{.Position}}">{{.Label}}</a></li>{{end}}` +
			`</ul>`))

	errorFragment = template.Must(template.New("error").Parse(
		`<h1>{{.Heading}}</h1><p>{{.Message}}</p>`))
)

const rootTitle = "Comix Server"

var errNotListing = errors.New("response is not a listing")

// renderListing turns a listing response into a layout page
func renderListing(resp Response) (Page, error) {
	switch r := resp.(type) {
	case RootListing:
		body, err := execute(rootBody, r)
		return Page{Title: rootTitle, Body: body}, err
	case TitleListing:
		body, err := execute(titleBody, r)
		return Page{Title: r.DisplayTitle, Body: body}, err
	case IssueListing:
		body, err := execute(issueBody, r)
		return Page{Title: r.TitleKey, Body: body}, err
	}
	return Page{}, errNotListing
}

func execute(t *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func errorBody(heading, message string) template.HTML {
	body, err := execute(errorFragment, struct{ Heading, Message string }{heading, message})
	if err != nil {
		return template.HTML(template.HTMLEscapeString(heading))
	}
	return body
}

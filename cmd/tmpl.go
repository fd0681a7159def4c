package main

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed tmpl
var tmplFS embed.FS

type templ struct {
	data map[string]any
}

func newTempl(data map[string]any) *templ {
	return &templ{data: data}
}

// get renders the named file from the tmpl directory
func (t *templ) get(name string) ([]byte, error) {
	v, err := tmplFS.ReadFile("tmpl/" + name)
	if err != nil {
		return nil, errors.Wrapf(err, "template %s", name)
	}

	tm, err := template.New(name).Delims("{%", "%}").Parse(string(v))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing template %s", name)
	}

	var buf bytes.Buffer
	if err := tm.Execute(&buf, t.data); err != nil {
		return nil, errors.Wrapf(err, "rendering template %s", name)
	}
	return buf.Bytes(), nil
}

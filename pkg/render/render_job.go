package render

import (
	"html/template"
	"io"

	"github.com/yumyai/sangercheck/logger"
	"go.uber.org/zap"
)

var job_page_template *template.Template

// JobPageData describes the state of a comparison job for rendering.
type JobPageData struct {
	JobID                  string
	Status                 string
	Pairs                  int
	Report                 string
	ErrorMessage           string
	ShouldRefresh          bool
	RefreshIntervalSeconds int
}

// init initializes the templates used for rendering the HTML page.
func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
	    <title>Sanger read check</title>
	    <style>
        pre {
            white-space: pre-wrap;
            word-wrap: break-word;
        }
   		</style>
		{{ if .ShouldRefresh }}
        <script>
	        setTimeout(function () { window.location.reload(); }, {{ mul .RefreshIntervalSeconds 1000 }});
        </script>
		{{ end }}
	</head>
	<body>
		<h1>Sanger read check</h1>
		<p><strong>Job ID:</strong> {{ .JobID }}</p>
		<p><strong>Pairs:</strong> {{ .Pairs }}</p>
		<p><strong>Status:</strong> {{ .Status }}</p>
		{{ if .ErrorMessage }}
			<p style="color: red;">{{ .ErrorMessage }}</p>
		{{ else if .Report }}
    		<pre>{{ .Report }}</pre>
		{{ else }}
			<p>The comparison is still running. This page refreshes every {{ .RefreshIntervalSeconds }} seconds.</p>
		{{ end }}
	</body>
	</html>`

	job_page_template = template.New("job_page").Funcs(template.FuncMap{
		"mul": func(a, b int) int { return a * b },
	})
	job_page_template = template.Must(job_page_template.Parse(mainTmpl))
}

// Function to render the HTML page of one job
func RenderJobPage(w io.Writer, data JobPageData) error {
	logger.Debug("Rendering job page", zap.String("job_id", data.JobID), zap.String("status", data.Status))
	return job_page_template.Execute(w, data)
}

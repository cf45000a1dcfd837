package llm

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompts/review.tmpl
var reviewPromptText string

var reviewPrompt = template.Must(template.New("review").Parse(reviewPromptText))

type reviewPromptData struct {
	Resume            string
	JobDescription    string
	HasJobDescription bool
}

// BuildReviewPrompt renders the review instruction for a resume and an
// optional job description.
func BuildReviewPrompt(resume, jobDescription string) string {
	data := reviewPromptData{
		Resume:            resume,
		JobDescription:    jobDescription,
		HasJobDescription: strings.TrimSpace(jobDescription) != "",
	}
	var b strings.Builder
	if err := reviewPrompt.Execute(&b, data); err != nil {
		// The template only references string and bool fields.
		panic(err)
	}
	return strings.TrimSpace(b.String())
}

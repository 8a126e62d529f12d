package site

import (
	"bytes"
	"fmt"
	"html/template"

	"portfolioX/internal/branding"
	"portfolioX/internal/portfolio"
)

var markupTemplate = template.Must(template.New("index.html").Parse(markupTemplateString))

type markupView struct {
	FullName       string
	Title          string
	Summary        string
	Email          string
	Phone          string
	Location       string
	ProfileImage   string
	Experience     []experienceView
	Education      []educationView
	Skills         []skillView
	Projects       []projectView
	SocialLinks    []portfolio.SocialLink
	StylesheetHref string
	BehaviorSrc    string
	GuardSrc       string
	FooterID       string
}

type experienceView struct {
	portfolio.Experience
	Logo string
}

type educationView struct {
	portfolio.Education
	Logo string
}

type skillView struct {
	Name  string
	Level string
}

type projectView struct {
	portfolio.Project
	Gallery []galleryImage
}

type galleryImage struct {
	Src string
	Alt string
}

// RenderMarkup renders index.html for record. All user text goes through
// html/template's contextual escaping; image references come from
// PlanImages so they match the archive entries exactly.
func RenderMarkup(record portfolio.Record) (string, error) {
	return RenderMarkupWithPlan(record, PlanImages(record))
}

// RenderMarkupWithPlan renders index.html using a precomputed plan.
func RenderMarkupWithPlan(record portfolio.Record, plan ImagePlan) (string, error) {
	view := buildMarkupView(record, plan)

	var buf bytes.Buffer
	if err := markupTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("execute markup template: %w", err)
	}
	return buf.String(), nil
}

func buildMarkupView(record portfolio.Record, plan ImagePlan) markupView {
	p := record.Personal
	view := markupView{
		FullName:       p.FullName(),
		Title:          p.Title,
		Summary:        p.Summary,
		Email:          p.Email,
		Phone:          p.Phone,
		Location:       p.Location,
		ProfileImage:   relative(plan.Profile),
		SocialLinks:    record.SocialLinks,
		StylesheetHref: relative(StylesheetPath),
		BehaviorSrc:    relative(BehaviorPath),
		GuardSrc:       relative(branding.ScriptPath),
		FooterID:       branding.FooterElementID,
	}

	for i, exp := range record.Experience {
		view.Experience = append(view.Experience, experienceView{
			Experience: exp,
			Logo:       relative(planEntry(plan.CompanyLogos, i)),
		})
	}

	for i, edu := range record.Education {
		view.Education = append(view.Education, educationView{
			Education: edu,
			Logo:      relative(planEntry(plan.InstitutionLogos, i)),
		})
	}

	for _, skill := range record.Skills {
		view.Skills = append(view.Skills, skillView{Name: skill.Name, Level: skill.Level.Label()})
	}

	for i, project := range record.Projects {
		pv := projectView{Project: project}
		if i < len(plan.ProjectImages) {
			for j, src := range plan.ProjectImages[i] {
				if src == "" {
					continue
				}
				pv.Gallery = append(pv.Gallery, galleryImage{
					Src: relative(src),
					Alt: fmt.Sprintf("%s image %d", project.Name, j+1),
				})
			}
		}
		view.Projects = append(view.Projects, pv)
	}

	return view
}

func planEntry(entries []string, i int) string {
	if i < len(entries) {
		return entries[i]
	}
	return ""
}

func relative(p string) string {
	if p == "" {
		return ""
	}
	return "./" + p
}

const markupTemplateString = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.FullName}} - Portfolio</title>
  <link rel="stylesheet" href="{{.StylesheetHref}}">
  <meta name="description" content="Professional portfolio of {{.FullName}}, {{.Title}}">
</head>
<body>
  <header>
    <div class="container">
      <div class="header-content">
        {{- if .ProfileImage}}
        <div class="profile-image"><img src="{{.ProfileImage}}" alt="{{.FullName}}" /></div>
        {{- end}}
        <div class="header-text">
          <h1>{{.FullName}}</h1>
          <p class="title">{{.Title}}</p>
        </div>
      </div>
    </div>
  </header>

  <main>
    <section class="container" id="about">
      <h2>About Me</h2>
      <p>{{.Summary}}</p>

      <div class="contact-info">
        <div class="contact-item">
          <strong>Email:</strong> {{.Email}}
        </div>
        <div class="contact-item">
          <strong>Phone:</strong> {{.Phone}}
        </div>
        <div class="contact-item">
          <strong>Location:</strong> {{.Location}}
        </div>
      </div>
    </section>
{{- if .Experience}}

    <section class="container" id="experience">
      <h2>Experience</h2>
      <div class="timeline">
        {{- range .Experience}}
        <div class="timeline-item">
          {{- if .Logo}}
          <div class="company-logo"><img src="{{.Logo}}" alt="{{.Company}}" /></div>
          {{- end}}
          <div class="timeline-content">
            <div class="timeline-item-header">
              <h3>{{.Position}}</h3>
              <p class="timeline-date">{{.StartDate}} - {{.EndDate}}</p>
            </div>
            <p class="timeline-company">{{.Company}}</p>
            <p>{{.Description}}</p>
          </div>
        </div>
        {{- end}}
      </div>
    </section>
{{- end}}
{{- if .Education}}

    <section class="container" id="education">
      <h2>Education</h2>
      <div class="timeline">
        {{- range .Education}}
        <div class="timeline-item">
          {{- if .Logo}}
          <div class="institution-logo"><img src="{{.Logo}}" alt="{{.Institution}}" /></div>
          {{- end}}
          <div class="timeline-content">
            <div class="timeline-item-header">
              <h3>{{.Degree}}{{if .Field}} in {{.Field}}{{end}}</h3>
              <p class="timeline-date">{{.StartDate}} - {{.EndDate}}</p>
            </div>
            <p class="timeline-company">{{.Institution}}</p>
          </div>
        </div>
        {{- end}}
      </div>
    </section>
{{- end}}
{{- if .Skills}}

    <section class="container" id="skills">
      <h2>Skills</h2>
      <div class="skills-container">
        {{- range .Skills}}
        <div class="skill-tag">{{.Name}}{{if .Level}} ({{.Level}}){{end}}</div>
        {{- end}}
      </div>
    </section>
{{- end}}
{{- if .Projects}}

    <section class="container" id="projects">
      <h2>Projects</h2>
      {{- range .Projects}}
      <div class="project-item">
        <h3>{{.Name}}</h3>
        {{- if .URL}}
        <a href="{{.URL}}" target="_blank" rel="noopener noreferrer" class="project-link">View Project</a>
        {{- end}}
        <p>{{.Description}}</p>
        {{- if .Gallery}}
        <div class="project-images">
          {{- range .Gallery}}
          <div class="project-image">
            <img src="{{.Src}}" alt="{{.Alt}}" />
          </div>
          {{- end}}
        </div>
        {{- end}}
      </div>
      {{- end}}
    </section>
{{- end}}
{{- if .SocialLinks}}

    <section class="container" id="contact">
      <h2>Contact</h2>
      <div class="social-links">
        {{- range .SocialLinks}}
        <a href="{{.URL}}" target="_blank" rel="noopener noreferrer" class="social-link">{{.Platform}}</a>
        {{- end}}
      </div>
    </section>
{{- end}}
  </main>

  <footer id="{{.FooterID}}"></footer>
  <script src="{{.GuardSrc}}"></script>
  <script src="{{.BehaviorSrc}}"></script>
</body>
</html>
`

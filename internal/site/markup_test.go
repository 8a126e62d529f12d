package site

import (
	"strings"
	"testing"

	"portfolioX/internal/branding"
	"portfolioX/internal/portfolio"
)

const tinyImage = "data:image/png;base64,iVBORw0KGgo="

func sampleRecord() portfolio.Record {
	return portfolio.Record{
		Personal: portfolio.PersonalInfo{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Title:     "Analyst",
			Email:     "ada@example.com",
			Phone:     "555-0100",
			Location:  "London",
			Summary:   "First programmer.",
		},
		Experience: []portfolio.Experience{
			{Company: "Analytical Engines", Position: "Lead Analyst", StartDate: "1842", EndDate: "1843"},
			{Company: "Tech Co.", Position: "Consultant", StartDate: "1843", EndDate: "1852", CompanyLogo: tinyImage},
		},
		Education: []portfolio.Education{
			{Institution: "Home School", Degree: "Mathematics", Field: "Calculus"},
		},
		Skills: []portfolio.Skill{
			{Name: "Notes", Level: portfolio.TextLevel("Expert")},
			{Name: "Loops", Level: portfolio.NumericLevel(5)},
			{Name: "Poetry"},
		},
		Projects: []portfolio.Project{
			{Name: "Note G", URL: "https://example.com/note-g", Description: "Bernoulli numbers.", Images: []string{tinyImage, "", tinyImage}},
		},
		SocialLinks: []portfolio.SocialLink{
			{Platform: "GitHub", URL: "https://github.com/ada"},
			{Platform: "LinkedIn", URL: "https://linkedin.com/in/ada"},
		},
		Theme: portfolio.Theme{ID: "modern", Name: "Modern", ColorHex: "#10b981"},
	}
}

func mustRender(t *testing.T, record portfolio.Record) string {
	t.Helper()
	markup, err := RenderMarkup(record)
	if err != nil {
		t.Fatalf("render markup: %v", err)
	}
	return markup
}

func TestRenderMarkupIsDeterministic(t *testing.T) {
	record := sampleRecord()
	first := mustRender(t, record)
	for i := 0; i < 5; i++ {
		if again := mustRender(t, record); again != first {
			t.Fatalf("render %d differs from first render", i)
		}
	}

	css1, err := RenderStylesheet(record.Theme.ColorHex)
	if err != nil {
		t.Fatalf("render stylesheet: %v", err)
	}
	css2, _ := RenderStylesheet(record.Theme.ColorHex)
	if css1 != css2 || RenderBehavior() != RenderBehavior() {
		t.Fatalf("stylesheet or behavior not deterministic")
	}
}

func TestRenderMarkupPreservesOrder(t *testing.T) {
	markup := mustRender(t, sampleRecord())

	assertOrder(t, markup, "Lead Analyst", "Consultant")
	assertOrder(t, markup, "Notes (Expert)", "Loops (Master)", "Poetry")
	assertOrder(t, markup, ">GitHub<", ">LinkedIn<")
	assertOrder(t, markup,
		`id="about"`, `id="experience"`, `id="education"`, `id="skills"`,
		`id="projects"`, `id="contact"`, `id="`+branding.FooterElementID+`"`)
}

func TestRenderMarkupOmitsEmptySections(t *testing.T) {
	record := sampleRecord()
	record.Experience = nil
	record.Education = []portfolio.Education{}
	record.Skills = nil
	record.Projects = nil
	record.SocialLinks = nil

	markup := mustRender(t, record)
	for _, heading := range []string{"<h2>Experience</h2>", "<h2>Education</h2>", "<h2>Skills</h2>", "<h2>Projects</h2>", "<h2>Contact</h2>"} {
		if strings.Contains(markup, heading) {
			t.Errorf("expected %s to be omitted", heading)
		}
	}
	if !strings.Contains(markup, "<h2>About Me</h2>") {
		t.Errorf("about section must always render")
	}
}

func TestRenderMarkupReferencesLayout(t *testing.T) {
	markup := mustRender(t, sampleRecord())
	for _, want := range []string{
		`href="./assets/styles.css"`,
		`src="./assets/script.js"`,
		`src="./protected/branding.js"`,
		`<footer id="portfolio-footer"></footer>`,
	} {
		if !strings.Contains(markup, want) {
			t.Errorf("markup missing %s", want)
		}
	}
}

func TestRenderMarkupImagePathsMatchPlan(t *testing.T) {
	record := sampleRecord()
	markup := mustRender(t, record)
	plan := PlanImages(record)

	if plan.CompanyLogos[1] != "images/company-tech-co..jpg" {
		t.Fatalf("unexpected company logo path %q", plan.CompanyLogos[1])
	}
	if plan.CompanyLogos[0] != "" {
		t.Fatalf("experience without logo must have no path")
	}
	for _, asset := range plan.Assets() {
		if !strings.Contains(markup, `src="./`+asset.Path+`"`) {
			t.Errorf("markup does not reference %s", asset.Path)
		}
	}
	if strings.Contains(markup, "project-1-2.jpg") {
		t.Errorf("empty project image must not be referenced")
	}
	if strings.Contains(markup, "profile.jpg") {
		t.Errorf("profile image must not be referenced without data")
	}
}

func TestRenderMarkupEscapesUserText(t *testing.T) {
	record := sampleRecord()
	record.Personal.Summary = `<script>alert("x")</script>`
	record.SocialLinks = []portfolio.SocialLink{{Platform: "Evil", URL: "javascript:alert(1)"}}

	markup := mustRender(t, record)
	if strings.Contains(markup, `<script>alert`) {
		t.Fatalf("summary was not escaped")
	}
	if !strings.Contains(markup, "&lt;script&gt;") {
		t.Fatalf("expected escaped summary in markup")
	}
	if strings.Contains(markup, `href="javascript:`) {
		t.Fatalf("javascript url must be neutralised")
	}
}

func TestRenderStylesheetUsesColorVerbatim(t *testing.T) {
	css, err := RenderStylesheet("#10b981")
	if err != nil {
		t.Fatalf("render stylesheet: %v", err)
	}
	if !strings.Contains(css, "--primary-color: #10b981;") {
		t.Fatalf("stylesheet missing primary color")
	}

	css, _ = RenderStylesheet("not-a-color")
	if !strings.Contains(css, "--primary-color: not-a-color;") {
		t.Fatalf("invalid colors must propagate verbatim")
	}
}

func assertOrder(t *testing.T, s string, parts ...string) {
	t.Helper()
	last := -1
	for _, part := range parts {
		idx := strings.Index(s, part)
		if idx < 0 {
			t.Fatalf("%q not found", part)
		}
		if idx <= last {
			t.Fatalf("%q appears out of order", part)
		}
		last = idx
	}
}

package site

import (
	"bytes"
	"fmt"
	"text/template"
)

// text/template on purpose: the accent colour is written verbatim, no CSS
// escaping or validation.
var stylesheetTemplate = template.Must(template.New("styles.css").Parse(stylesheetTemplateString))

// RenderStylesheet fills the fixed stylesheet with the theme colour.
func RenderStylesheet(colorHex string) (string, error) {
	var buf bytes.Buffer
	data := struct{ PrimaryColor string }{PrimaryColor: colorHex}
	if err := stylesheetTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute stylesheet template: %w", err)
	}
	return buf.String(), nil
}

// RenderBehavior returns the site's behaviour script. It does not depend on
// the record.
func RenderBehavior() string {
	return behaviorScript
}

const stylesheetTemplateString = `/* Base styles */
:root {
  --primary-color: {{.PrimaryColor}};
  --text-color: #333;
  --background-color: #fff;
  --light-bg: #f8f9fa;
  --border-color: #e9ecef;
}

* {
  margin: 0;
  padding: 0;
  box-sizing: border-box;
}

body {
  font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, 'Open Sans', 'Helvetica Neue', sans-serif;
  line-height: 1.6;
  color: var(--text-color);
  background-color: var(--background-color);
}

.container {
  width: 100%;
  max-width: 1200px;
  margin: 0 auto;
  padding: 0 20px;
}

/* Header */
header {
  background-color: var(--primary-color);
  color: white;
  padding: 60px 0;
}

.header-content {
  display: flex;
  align-items: center;
  justify-content: center;
  flex-direction: column;
  text-align: center;
}

.profile-image {
  width: 150px;
  height: 150px;
  border-radius: 50%;
  overflow: hidden;
  border: 4px solid rgba(255, 255, 255, 0.3);
  margin-bottom: 20px;
}

.profile-image img {
  width: 100%;
  height: 100%;
  object-fit: cover;
}

header h1 {
  font-size: 2.5rem;
  margin-bottom: 10px;
}

header .title {
  font-size: 1.2rem;
  opacity: 0.9;
}

/* Sections */
section {
  padding: 60px 0;
  border-bottom: 1px solid var(--border-color);
}

section:last-child {
  border-bottom: none;
}

h2 {
  font-size: 2rem;
  margin-bottom: 30px;
  color: var(--primary-color);
}

/* About section */
.contact-info {
  display: flex;
  flex-wrap: wrap;
  gap: 20px;
  margin-top: 20px;
}

.contact-item {
  flex: 1;
  min-width: 200px;
  background-color: var(--light-bg);
  padding: 15px;
  border-radius: 5px;
}

/* Timeline for experience and education */
.timeline {
  display: flex;
  flex-direction: column;
  gap: 30px;
}

.timeline-item {
  display: flex;
  gap: 20px;
  background-color: var(--light-bg);
  padding: 20px;
  border-radius: 5px;
  border-left: 4px solid var(--primary-color);
}

.company-logo, .institution-logo {
  width: 60px;
  height: 60px;
  flex-shrink: 0;
  border-radius: 5px;
  overflow: hidden;
  background-color: white;
  display: flex;
  align-items: center;
  justify-content: center;
  border: 1px solid var(--border-color);
}

.company-logo img, .institution-logo img {
  width: 100%;
  height: 100%;
  object-fit: contain;
}

.timeline-content {
  flex: 1;
}

.timeline-item-header {
  display: flex;
  justify-content: space-between;
  align-items: flex-start;
  margin-bottom: 10px;
  flex-wrap: wrap;
}

.timeline-item h3 {
  font-size: 1.2rem;
  color: var(--primary-color);
  margin-right: 15px;
}

.timeline-date {
  color: #6c757d;
  font-size: 0.9rem;
}

.timeline-company {
  font-weight: 500;
  margin-bottom: 10px;
}

/* Skills section */
.skills-container {
  display: flex;
  flex-wrap: wrap;
  gap: 10px;
}

.skill-tag {
  background-color: var(--primary-color);
  color: white;
  padding: 8px 15px;
  border-radius: 20px;
  font-size: 0.9rem;
}

/* Projects section */
.project-item {
  margin-bottom: 30px;
  padding: 20px;
  background-color: var(--light-bg);
  border-radius: 5px;
}

.project-item h3 {
  color: var(--primary-color);
  margin-bottom: 10px;
}

.project-link {
  display: inline-block;
  color: var(--primary-color);
  text-decoration: none;
  margin-bottom: 10px;
  font-weight: 500;
}

.project-link:hover {
  text-decoration: underline;
}

.project-images {
  display: flex;
  flex-wrap: wrap;
  gap: 10px;
  margin-top: 15px;
}

.project-image {
  width: 120px;
  height: 80px;
  border-radius: 5px;
  overflow: hidden;
  border: 1px solid var(--border-color);
}

.project-image img {
  width: 100%;
  height: 100%;
  object-fit: cover;
}

/* Social links */
.social-links {
  display: flex;
  flex-wrap: wrap;
  gap: 15px;
}

.social-link {
  display: inline-block;
  padding: 10px 20px;
  background-color: var(--primary-color);
  color: white;
  text-decoration: none;
  border-radius: 5px;
  transition: opacity 0.2s;
}

.social-link:hover {
  opacity: 0.9;
}

/* Footer */
footer {
  padding: 20px 0;
  background-color: var(--light-bg);
  text-align: center;
}

/* Responsive design */
@media (max-width: 768px) {
  header {
    padding: 40px 0;
  }
  
  header h1 {
    font-size: 2rem;
  }
  
  section {
    padding: 40px 0;
  }
  
  h2 {
    font-size: 1.5rem;
  }
  
  .timeline-item-header {
    flex-direction: column;
  }
  
  .timeline-date {
    margin-top: 5px;
  }

  .timeline-item {
    flex-direction: column;
  }

  .company-logo, .institution-logo {
    margin-bottom: 15px;
  }
}

@media (max-width: 480px) {
  header {
    padding: 30px 0;
  }
  
  header h1 {
    font-size: 1.8rem;
  }
  
  .contact-info {
    flex-direction: column;
  }
  
  .contact-item {
    min-width: 100%;
  }
  
  .social-links {
    flex-direction: column;
  }
  
  .social-link {
    width: 100%;
    text-align: center;
  }

  .project-images {
    justify-content: center;
  }
}
`

const behaviorScript = `// Marks the section currently in view with an "active" class.
document.addEventListener('DOMContentLoaded', function () {
  var sections = document.querySelectorAll('section');

  function markActive() {
    var scrollPosition = window.scrollY;
    sections.forEach(function (section) {
      var top = section.offsetTop - 100;
      var bottom = top + section.offsetHeight;
      if (scrollPosition >= top && scrollPosition < bottom) {
        section.classList.add('active');
      } else {
        section.classList.remove('active');
      }
    });
  }

  window.addEventListener('scroll', markActive);
  markActive();
});
`

package site

import (
	"fmt"

	"portfolioX/internal/portfolio"
)

// Archive layout shared by the renderer and the archive assembler.
const (
	MarkupPath     = "index.html"
	StylesheetPath = "assets/styles.css"
	BehaviorPath   = "assets/script.js"
	ImagesDir      = "images"
)

// ImageKind 标识图片来源字段。
type ImageKind string

const (
	KindProfile         ImageKind = "profile"
	KindCompanyLogo     ImageKind = "company_logo"
	KindInstitutionLogo ImageKind = "institution_logo"
	KindProjectImage    ImageKind = "project_image"
)

// ImageAsset is one non-empty image field of the record together with the
// archive path the markup references it by.
type ImageAsset struct {
	Path   string
	Kind   ImageKind
	Label  string
	Source string
}

// ImagePlan maps every image field of a record to its archive path.
// Entries are "" where the record has no image. It is the single source of
// filenames for both the markup and the archive, so the two cannot drift.
type ImagePlan struct {
	Profile          string
	CompanyLogos     []string
	InstitutionLogos []string
	ProjectImages    [][]string

	assets []ImageAsset
}

// Assets returns the images to package, in archive order.
func (p ImagePlan) Assets() []ImageAsset {
	out := make([]ImageAsset, len(p.assets))
	copy(out, p.assets)
	return out
}

// PlanImages assigns archive paths to every non-empty image field.
//
// Company and institution logos are named after the slugified entity name.
// When two entities share a slug, the first keeps the plain name and later
// ones get "-2", "-3", ... appended so nothing is overwritten.
func PlanImages(record portfolio.Record) ImagePlan {
	plan := ImagePlan{
		CompanyLogos:     make([]string, len(record.Experience)),
		InstitutionLogos: make([]string, len(record.Education)),
		ProjectImages:    make([][]string, len(record.Projects)),
	}
	used := make(map[string]struct{})

	if portfolio.HasImage(record.Personal.ProfileImage) {
		plan.Profile = imagePath("profile.jpg")
		used[plan.Profile] = struct{}{}
		plan.assets = append(plan.assets, ImageAsset{
			Path:   plan.Profile,
			Kind:   KindProfile,
			Label:  "profile image",
			Source: record.Personal.ProfileImage,
		})
	}

	for i, exp := range record.Experience {
		if !portfolio.HasImage(exp.CompanyLogo) {
			continue
		}
		p := uniquePath(used, "company-"+Slugify(exp.Company))
		plan.CompanyLogos[i] = p
		plan.assets = append(plan.assets, ImageAsset{
			Path:   p,
			Kind:   KindCompanyLogo,
			Label:  exp.Company,
			Source: exp.CompanyLogo,
		})
	}

	for i, edu := range record.Education {
		if !portfolio.HasImage(edu.InstitutionLogo) {
			continue
		}
		p := uniquePath(used, "institution-"+Slugify(edu.Institution))
		plan.InstitutionLogos[i] = p
		plan.assets = append(plan.assets, ImageAsset{
			Path:   p,
			Kind:   KindInstitutionLogo,
			Label:  edu.Institution,
			Source: edu.InstitutionLogo,
		})
	}

	for i, project := range record.Projects {
		paths := make([]string, len(project.Images))
		for j, img := range project.Images {
			if !portfolio.HasImage(img) {
				continue
			}
			p := imagePath(fmt.Sprintf("project-%d-%d.jpg", i+1, j+1))
			used[p] = struct{}{}
			paths[j] = p
			plan.assets = append(plan.assets, ImageAsset{
				Path:   p,
				Kind:   KindProjectImage,
				Label:  fmt.Sprintf("%s image %d", project.Name, j+1),
				Source: img,
			})
		}
		plan.ProjectImages[i] = paths
	}

	return plan
}

func uniquePath(used map[string]struct{}, base string) string {
	candidate := imagePath(base + ".jpg")
	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken {
			used[candidate] = struct{}{}
			return candidate
		}
		candidate = imagePath(fmt.Sprintf("%s-%d.jpg", base, n))
	}
}

func imagePath(name string) string {
	return ImagesDir + "/" + name
}

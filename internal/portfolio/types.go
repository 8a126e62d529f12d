package portfolio

import "strings"

// Record 是导出流水线消费的简历快照。
// 由编辑端整体构造后按值传入，导出期间视为不可变。
type Record struct {
	Personal    PersonalInfo `json:"personal" yaml:"personal"`
	Experience  []Experience `json:"experience" yaml:"experience"`
	Education   []Education  `json:"education" yaml:"education"`
	Skills      []Skill      `json:"skills" yaml:"skills"`
	Projects    []Project    `json:"projects" yaml:"projects"`
	SocialLinks []SocialLink `json:"socialLinks" yaml:"socialLinks"`
	Theme       Theme        `json:"theme" yaml:"theme"`
}

// PersonalInfo 描述页头与联系方式。ProfileImage 为可选的 data URI。
type PersonalInfo struct {
	FirstName    string `json:"firstName" yaml:"firstName"`
	LastName     string `json:"lastName" yaml:"lastName"`
	Title        string `json:"title" yaml:"title"`
	Email        string `json:"email" yaml:"email"`
	Phone        string `json:"phone" yaml:"phone"`
	Location     string `json:"location" yaml:"location"`
	Summary      string `json:"summary" yaml:"summary"`
	ProfileImage string `json:"profileImage,omitempty" yaml:"profileImage,omitempty"`
}

// FullName joins first and last name the way the page header shows it.
func (p PersonalInfo) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Experience 表示一段工作经历。
type Experience struct {
	Company     string `json:"company" yaml:"company"`
	Position    string `json:"position" yaml:"position"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate" yaml:"endDate"`
	Description string `json:"description" yaml:"description"`
	CompanyLogo string `json:"companyLogo,omitempty" yaml:"companyLogo,omitempty"`
}

// Education 表示一段教育经历。
type Education struct {
	Institution     string `json:"institution" yaml:"institution"`
	Degree          string `json:"degree" yaml:"degree"`
	Field           string `json:"field" yaml:"field"`
	StartDate       string `json:"startDate" yaml:"startDate"`
	EndDate         string `json:"endDate" yaml:"endDate"`
	InstitutionLogo string `json:"institutionLogo,omitempty" yaml:"institutionLogo,omitempty"`
}

// Skill 的 Level 可能是自由文本，也可能是 1-5 的整数。
type Skill struct {
	Name  string     `json:"name" yaml:"name"`
	Level SkillLevel `json:"level" yaml:"level"`
}

// Project 表示一个作品，Images 为有序的 data URI 列表。
type Project struct {
	Name        string   `json:"name" yaml:"name"`
	URL         string   `json:"url" yaml:"url"`
	Description string   `json:"description" yaml:"description"`
	Images      []string `json:"images" yaml:"images"`
}

// SocialLink 表示一个社交链接。
type SocialLink struct {
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

// Theme 描述站点主题。ColorHex 不做校验，原样写入样式表。
type Theme struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	ColorHex string `json:"colorHex" yaml:"colorHex"`
}

// HasImage reports whether an optional image field carries data.
// Empty and whitespace-only values both mean "no image".
func HasImage(value string) bool {
	return strings.TrimSpace(value) != ""
}

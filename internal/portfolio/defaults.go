package portfolio

// Themes 返回编辑器提供的预设主题。
func Themes() []Theme {
	return []Theme{
		{ID: "classic", Name: "Classic", ColorHex: "#3b82f6"},
		{ID: "modern", Name: "Modern", ColorHex: "#10b981"},
		{ID: "minimal", Name: "Minimal", ColorHex: "#6b7280"},
		{ID: "bold", Name: "Bold", ColorHex: "#ef4444"},
		{ID: "elegant", Name: "Elegant", ColorHex: "#8b5cf6"},
		{ID: "professional", Name: "Professional", ColorHex: "#0f172a"},
	}
}

// ThemeByID 按 ID 查找预设主题。
func ThemeByID(id string) (Theme, bool) {
	for _, theme := range Themes() {
		if theme.ID == id {
			return theme, true
		}
	}
	return Theme{}, false
}

// DefaultRecord 返回新用户进入编辑器时看到的示例简历。
func DefaultRecord() Record {
	theme, _ := ThemeByID("modern")
	return Record{
		Personal: PersonalInfo{
			FirstName: "Diya",
			LastName:  "Adhikari",
			Title:     "Senior Software Engineer",
			Email:     "diya.adhikari@example.com",
			Phone:     "+977 9841234567",
			Location:  "Kathmandu, Nepal",
			Summary:   "Experienced software engineer with a passion for creating innovative solutions to complex problems. Skilled in full-stack development with expertise in React, Node.js, and cloud technologies. Committed to delivering high-quality applications that meet client needs and business objectives.",
		},
		Experience: []Experience{
			{
				Company:     "Leapfrog Technology",
				Position:    "Senior Software Engineer",
				StartDate:   "01/2020",
				EndDate:     "Present",
				Description: "Lead development of enterprise web applications using React and Node.js. Collaborate with international clients to deliver scalable solutions. Mentor junior developers and conduct code reviews to ensure code quality and best practices.",
			},
			{
				Company:     "Fusemachines Nepal",
				Position:    "Software Developer",
				StartDate:   "03/2017",
				EndDate:     "12/2019",
				Description: "Developed AI-powered web applications using React, Python, and TensorFlow. Worked in an agile environment to deliver features on time. Improved application performance by 35% through code optimization and efficient database queries.",
			},
		},
		Education: []Education{
			{
				Institution: "Tribhuvan University",
				Degree:      "Master of Science",
				Field:       "Computer Engineering",
				StartDate:   "09/2015",
				EndDate:     "05/2017",
			},
			{
				Institution: "Kathmandu University",
				Degree:      "Bachelor of Engineering",
				Field:       "Computer Science",
				StartDate:   "09/2011",
				EndDate:     "05/2015",
			},
		},
		Skills: []Skill{
			{Name: "JavaScript", Level: TextLevel("Expert")},
			{Name: "React", Level: TextLevel("Expert")},
			{Name: "Node.js", Level: TextLevel("Advanced")},
			{Name: "Python", Level: TextLevel("Advanced")},
			{Name: "TensorFlow", Level: TextLevel("Intermediate")},
			{Name: "AWS", Level: TextLevel("Intermediate")},
		},
		Projects: []Project{
			{
				Name:        "Nepal Tourism Portal",
				URL:         "https://github.com/diyaadhikari/tourism-portal",
				Description: "Built a comprehensive tourism portal for Nepal using React, Node.js, and MongoDB. Implemented features like virtual tours, booking system, and local guide connections to promote tourism in Nepal.",
				Images:      []string{},
			},
			{
				Name:        "Nepali Language NLP Tool",
				URL:         "https://github.com/diyaadhikari/nepali-nlp",
				Description: "Developed a natural language processing tool for Nepali language using Python and TensorFlow. Created modules for text classification, sentiment analysis, and machine translation to bridge the technology gap for Nepali language.",
				Images:      []string{},
			},
		},
		SocialLinks: []SocialLink{
			{Platform: "LinkedIn", URL: "https://linkedin.com/in/diyaadhikari"},
			{Platform: "GitHub", URL: "https://github.com/diyaadhikari"},
			{Platform: "Portfolio", URL: "https://diyaadhikari.com.np"},
		},
		Theme: theme,
	}
}

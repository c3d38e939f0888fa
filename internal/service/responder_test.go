package service

import (
	"portfolio-chat-go/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *model.User {
	return &model.User{
		ID:    1,
		Name:  "Jane",
		Title: "Full Stack Developer",
		Email: "jane@x.com",
		Bio:   "Builds things for the web.",
		Skills: []model.Skill{
			{Name: "React", Category: "Frontend", Level: "Expert"},
			{Name: "Python", Category: "Language", Level: "Advanced"},
			{Name: "Next.js", Category: "Frontend", Level: "Advanced"},
		},
		Experiences: []model.Experience{
			{Company: "Tech Corp", Position: "Senior Developer", Duration: "2022 - Present", Description: "Leads the platform team.", Current: true},
			{Company: "StartupXYZ", Position: "Developer", Duration: "2020 - 2022", Description: "Built the MVP.", Current: false},
			{Company: "Digital Inc", Position: "Junior Developer", Duration: "2019 - 2020", Description: "Frontend work.", Current: false},
			{Company: "Old Shop", Position: "Intern", Duration: "2018 - 2019", Description: "Internship.", Current: false},
		},
		Projects: []model.Project{
			{Name: "Chatbot Platform", Description: "An AI chatbot.", Technologies: []string{"Python", "React"}, Featured: true, LiveURL: "https://chat.example.com", GithubURL: "https://github.com/jane/chatbot"},
			{Name: "Side Tool", Description: "A small utility.", Technologies: []string{"Go"}, Featured: false},
		},
	}
}

func TestResponderSkillsGroupedByCategory(t *testing.T) {
	r := NewResponder()

	reply := r.Reply(testProfile(), nil, "What are your skills?")

	assert.Contains(t, reply, "**Frontend**: React (Expert), Next.js (Advanced)")
	assert.Contains(t, reply, "**Language**: Python (Advanced)")
	assert.Contains(t, reply, "Jane has expertise in various technologies")
}

func TestResponderRulePrecedence(t *testing.T) {
	r := NewResponder()

	// 同时命中 skills 与 hello 时，顺序靠前的 skills 规则胜出
	reply := r.Reply(testProfile(), nil, "hi, tell me about your skills")

	assert.Contains(t, reply, "expertise in various technologies")
	assert.NotContains(t, reply, "I'm Jane's AI assistant")
}

func TestResponderExperience(t *testing.T) {
	r := NewResponder()

	reply := r.Reply(testProfile(), nil, "Tell me about your work")

	assert.Contains(t, reply, "Jane has 4 professional experiences")
	assert.Contains(t, reply, "**Currently**: Senior Developer at Tech Corp (2022 - Present)")
	assert.Contains(t, reply, "**Previous roles**:")
	assert.Contains(t, reply, "• Developer at StartupXYZ (2020 - 2022)")
	assert.Contains(t, reply, "• Junior Developer at Digital Inc (2019 - 2020)")
	// 非当前经历最多列出前两条
	assert.NotContains(t, reply, "Old Shop")
}

func TestResponderProjectsOnlyFeatured(t *testing.T) {
	r := NewResponder()

	reply := r.Reply(testProfile(), nil, "what have you built")

	assert.Contains(t, reply, "Jane has built 2 projects")
	assert.Contains(t, reply, "**Chatbot Platform**")
	assert.Contains(t, reply, "Technologies: Python, React")
	assert.Contains(t, reply, "Live: https://chat.example.com")
	assert.Contains(t, reply, "GitHub: https://github.com/jane/chatbot")
	assert.NotContains(t, reply, "Side Tool")
}

func TestResponderProjectOmitsAbsentURLs(t *testing.T) {
	r := NewResponder()
	profile := testProfile()
	profile.Projects = []model.Project{
		{Name: "Bare Project", Description: "No links.", Technologies: []string{"Go"}, Featured: true},
	}

	reply := r.Reply(profile, nil, "projects")

	assert.Contains(t, reply, "**Bare Project**")
	assert.NotContains(t, reply, "Live:")
	assert.NotContains(t, reply, "GitHub:")
}

func TestResponderContact(t *testing.T) {
	r := NewResponder()

	reply := r.Reply(testProfile(), nil, "contact")

	assert.Contains(t, reply, "Jane")
	assert.Contains(t, reply, "jane@x.com")
}

func TestResponderGreetingAndAbout(t *testing.T) {
	r := NewResponder()

	greeting := r.Reply(testProfile(), nil, "hello there")
	assert.Contains(t, greeting, "Hello! I'm Jane's AI assistant")

	about := r.Reply(testProfile(), nil, "who are you")
	assert.Contains(t, about, "Jane is a Full Stack Developer")
	assert.Contains(t, about, "Builds things for the web.")
}

func TestResponderMissingProfile(t *testing.T) {
	r := NewResponder()

	reply := r.Reply(nil, nil, "hello")

	assert.Equal(t, replyProfileMissing, reply)
}

func TestResponderFallbackProbesRecentProjects(t *testing.T) {
	r := NewResponder()
	recent := []model.Message{
		{Role: model.RoleAssistant, Content: "Here are the featured ones"},
		{Role: model.RoleUser, Content: "Tell me about your projects"},
	}

	reply := r.Reply(testProfile(), recent, "anything else?")

	assert.Contains(t, reply, "more details about any specific project")
}

func TestResponderFallbackGeneric(t *testing.T) {
	r := NewResponder()

	reply := r.Reply(testProfile(), nil, "what is the meaning of life")

	assert.Contains(t, reply, "That's an interesting question!")
	assert.Contains(t, reply, "Jane")
}

func TestResponderIsDeterministic(t *testing.T) {
	r := NewResponder()
	recent := []model.Message{{Role: model.RoleUser, Content: "hello"}}

	first := r.Reply(testProfile(), recent, "skills please")
	for i := 0; i < 5; i++ {
		require.Equal(t, first, r.Reply(testProfile(), recent, "skills please"))
	}
}

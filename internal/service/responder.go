// Package service 包含了应用的业务逻辑层。
package service

import (
	"fmt"
	"portfolio-chat-go/internal/model"
	"portfolio-chat-go/pkg/log"
	"strings"
)

// 档案缺失与内部异常时的固定回复。
const (
	replyProfileMissing = "I'm sorry, I couldn't find the portfolio information right now. Please try again later."
	replyInternalError  = "I'm sorry, I encountered an error while processing your question. Please try again."
)

// rule 是一条 (触发词集合, 回复生成函数) 规则。
// 规则按切片顺序自上而下求值，第一条命中的规则胜出，
// 因此同时命中多条规则的输入有确定的归属（例如 "hi, tell me about your skills" 归 skills）。
type rule struct {
	triggers []string
	respond  func(profile *model.User) string
}

// Responder 实现了从访客输入到回复文本的纯函数映射。
// 没有任何副作用，相同的 (输入, 档案, 历史) 永远产生相同的输出。
type Responder struct {
	rules []rule
}

// NewResponder 创建一个新的 Responder，并装配固定顺序的规则表。
func NewResponder() *Responder {
	return &Responder{
		rules: []rule{
			{triggers: []string{"skills", "technology", "tech"}, respond: skillsReply},
			{triggers: []string{"experience", "work", "job"}, respond: experienceReply},
			{triggers: []string{"projects", "portfolio", "built"}, respond: projectsReply},
			{triggers: []string{"contact", "hire", "email"}, respond: contactReply},
			{triggers: []string{"hello", "hi", "hey"}, respond: greetingReply},
			{triggers: []string{"about", "who"}, respond: aboutReply},
		},
	}
}

// Reply 根据访客输入、档案快照与最近的消息上下文（从新到旧）生成回复。
// 任何内部异常都被降级为固定的道歉文案，不会越过本方法的边界。
func (r *Responder) Reply(profile *model.User, recent []model.Message, utterance string) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("生成回复时发生异常: %v", rec)
			reply = replyInternalError
		}
	}()

	if profile == nil {
		return replyProfileMissing
	}

	lowered := strings.ToLower(utterance)
	for _, rule := range r.rules {
		if containsAny(lowered, rule.triggers) {
			return rule.respond(profile)
		}
	}
	return fallbackReply(profile, recent)
}

// containsAny 判断 lowered 是否包含任意一个触发词（子串匹配）。
func containsAny(lowered string, triggers []string) bool {
	for _, t := range triggers {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}

// skillsReply 按技能分类逐行列出技能与掌握程度。
// 分类顺序取首次出现的顺序，Go 的 map 不保序，这里用切片显式记录。
func skillsReply(profile *model.User) string {
	categories := make([]string, 0, len(profile.Skills))
	byCategory := make(map[string][]string)
	for _, skill := range profile.Skills {
		if _, seen := byCategory[skill.Category]; !seen {
			categories = append(categories, skill.Category)
		}
		byCategory[skill.Category] = append(byCategory[skill.Category], fmt.Sprintf("%s (%s)", skill.Name, skill.Level))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s has expertise in various technologies:\n\n", profile.Name)
	for _, category := range categories {
		fmt.Fprintf(&b, "**%s**: %s\n", category, strings.Join(byCategory[category], ", "))
	}
	b.WriteString("\nI'm particularly strong in React, TypeScript, and Node.js, and I'm always learning new technologies!")
	return b.String()
}

// experienceReply 汇报工作经历：当前在职的一条优先，随后最多两条历史经历。
func experienceReply(profile *model.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d professional experiences:\n\n", profile.Name, len(profile.Experiences))

	for _, exp := range profile.Experiences {
		if exp.Current {
			fmt.Fprintf(&b, "**Currently**: %s at %s (%s)\n", exp.Position, exp.Company, exp.Duration)
			fmt.Fprintf(&b, "%s\n\n", exp.Description)
			break
		}
	}

	pastCount := 0
	for _, exp := range profile.Experiences {
		if exp.Current {
			continue
		}
		if pastCount == 0 {
			b.WriteString("**Previous roles**:\n")
		}
		fmt.Fprintf(&b, "• %s at %s (%s)\n", exp.Position, exp.Company, exp.Duration)
		pastCount++
		if pastCount == 2 {
			break
		}
	}

	return b.String()
}

// projectsReply 汇报项目总数并逐个展示精选项目。
func projectsReply(profile *model.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has built %d projects. Here are the featured ones:\n\n", profile.Name, len(profile.Projects))

	for _, project := range profile.Projects {
		if !project.Featured {
			continue
		}
		fmt.Fprintf(&b, "**%s**\n", project.Name)
		fmt.Fprintf(&b, "%s\n", project.Description)
		fmt.Fprintf(&b, "Technologies: %s\n", strings.Join(project.Technologies, ", "))
		if project.LiveURL != "" {
			fmt.Fprintf(&b, "Live: %s\n", project.LiveURL)
		}
		if project.GithubURL != "" {
			fmt.Fprintf(&b, "GitHub: %s\n", project.GithubURL)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func contactReply(profile *model.User) string {
	return fmt.Sprintf("I'd love to hear from you! You can reach %s at %s. I'm always open to discussing new opportunities, collaborations, or just chatting about technology!", profile.Name, profile.Email)
}

func greetingReply(profile *model.User) string {
	return fmt.Sprintf("Hello! I'm %s's AI assistant. I can help you learn about my skills, experience, projects, or how to get in touch. What would you like to know?", profile.Name)
}

func aboutReply(profile *model.User) string {
	return fmt.Sprintf("%s is a %s. %s\n\nI love building innovative solutions and I'm always excited to take on new challenges. What specific aspect would you like to know more about?", profile.Name, profile.Title, profile.Bio)
}

// fallbackReply 在没有规则命中时，回看最近最多 3 条访客消息：
// 提到过 project 则追问项目细节，否则给出通用的引导文案。
func fallbackReply(profile *model.User, recent []model.Message) string {
	probed := 0
	for _, msg := range recent {
		if msg.Role != model.RoleUser {
			continue
		}
		if strings.Contains(strings.ToLower(msg.Content), "project") {
			return "Would you like to know more details about any specific project? I can tell you about the technologies used, challenges faced, or the impact of the work."
		}
		probed++
		if probed == 3 {
			break
		}
	}
	return fmt.Sprintf("That's an interesting question! I can help you learn about %s's skills, experience, projects, or how to get in touch. I can also provide more specific details about any particular area you're curious about. What would you like to explore?", profile.Name)
}

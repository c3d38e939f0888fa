// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"portfolio-chat-go/internal/model"
	"portfolio-chat-go/internal/repository"
)

// PortfolioService 定义了展示层消费的只读查询。
type PortfolioService interface {
	// GetPortfolio 返回完整的档案快照，档案尚未录入时返回 (nil, nil)。
	GetPortfolio(ctx context.Context) (*model.User, error)
	// GetFeaturedProjects 返回精选项目列表。
	GetFeaturedProjects(ctx context.Context) ([]model.Project, error)
	// GetSkillsByCategory 返回按分类分组的技能。
	GetSkillsByCategory(ctx context.Context) (map[string][]model.Skill, error)
	// GetTranscript 返回 sessionID 对应的完整对话记录，会话不存在时返回 (nil, nil)。
	GetTranscript(ctx context.Context, sessionID string) (*model.Conversation, error)
}

type portfolioService struct {
	portfolioRepo    repository.PortfolioRepository
	conversationRepo repository.ConversationRepository
}

// NewPortfolioService 创建一个新的 PortfolioService 实例。
func NewPortfolioService(portfolioRepo repository.PortfolioRepository, conversationRepo repository.ConversationRepository) PortfolioService {
	return &portfolioService{
		portfolioRepo:    portfolioRepo,
		conversationRepo: conversationRepo,
	}
}

// GetPortfolio 返回档案快照。
func (s *portfolioService) GetPortfolio(ctx context.Context) (*model.User, error) {
	return s.portfolioRepo.GetProfile(ctx)
}

// GetFeaturedProjects 返回精选项目。
func (s *portfolioService) GetFeaturedProjects(ctx context.Context) ([]model.Project, error) {
	return s.portfolioRepo.FindFeaturedProjects(ctx)
}

// GetSkillsByCategory 把技能按分类分组返回。
func (s *portfolioService) GetSkillsByCategory(ctx context.Context) (map[string][]model.Skill, error) {
	skills, err := s.portfolioRepo.FindSkills(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]model.Skill)
	for _, skill := range skills {
		grouped[skill.Category] = append(grouped[skill.Category], skill)
	}
	return grouped, nil
}

// GetTranscript 返回会话的完整对话记录，供页面重载时恢复历史。
func (s *portfolioService) GetTranscript(ctx context.Context, sessionID string) (*model.Conversation, error) {
	conv, err := s.conversationRepo.FindBySessionID(ctx, sessionID)
	if errors.Is(err, repository.ErrConversationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

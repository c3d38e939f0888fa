package service

import (
	"context"
	"portfolio-chat-go/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioServiceGroupsSkillsByCategory(t *testing.T) {
	ctx := context.Background()
	portfolioRepo := &stubPortfolioRepo{
		skills: []model.Skill{
			{Name: "React", Category: "Frontend", Level: "Expert"},
			{Name: "Next.js", Category: "Frontend", Level: "Advanced"},
			{Name: "Python", Category: "Language", Level: "Advanced"},
		},
	}
	svc := NewPortfolioService(portfolioRepo, newMemoryConversationRepo())

	grouped, err := svc.GetSkillsByCategory(ctx)
	require.NoError(t, err)

	require.Len(t, grouped, 2)
	assert.Len(t, grouped["Frontend"], 2)
	assert.Len(t, grouped["Language"], 1)
	assert.Equal(t, "Python", grouped["Language"][0].Name)
}

func TestPortfolioServiceTranscript(t *testing.T) {
	ctx := context.Background()
	convRepo := newMemoryConversationRepo()
	svc := NewPortfolioService(&stubPortfolioRepo{}, convRepo)

	// 不存在的会话返回 nil 而不是错误，页面首次加载时会话尚未建立
	conv, err := svc.GetTranscript(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, conv)

	created, err := convRepo.GetOrCreateBySessionID(ctx, "s1")
	require.NoError(t, err)
	_, err = convRepo.AppendMessage(ctx, created.ID, model.RoleUser, "hello")
	require.NoError(t, err)

	conv, err = svc.GetTranscript(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "hello", conv.Messages[0].Content)
}

// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"portfolio-chat-go/internal/model"
	"portfolio-chat-go/pkg/log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// profileCacheKey 是档案快照在 Redis 中的缓存键。
const profileCacheKey = "portfolio:profile"

// PortfolioRepository 接口定义了站点主人档案数据的只读访问。
type PortfolioRepository interface {
	// GetProfile 返回完整的档案快照（含技能、经历、项目）。
	// 档案尚未录入时返回 (nil, nil)。
	GetProfile(ctx context.Context) (*model.User, error)
	// FindFeaturedProjects 返回所有精选项目，按创建时间从新到旧。
	FindFeaturedProjects(ctx context.Context) ([]model.Project, error)
	// FindSkills 返回全部技能，按分类升序、等级降序。
	FindSkills(ctx context.Context) ([]model.Skill, error)
}

// gormPortfolioRepository 是 PortfolioRepository 的 GORM 实现，
// 档案快照经由 Redis 做带 TTL 的读穿缓存。
type gormPortfolioRepository struct {
	db       *gorm.DB
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewPortfolioRepository 创建一个新的 PortfolioRepository 实例。
// rdb 为 nil 时跳过缓存，直接查库。
func NewPortfolioRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) PortfolioRepository {
	return &gormPortfolioRepository{db: db, rdb: rdb, cacheTTL: cacheTTL}
}

// GetProfile 返回档案快照，优先命中 Redis 缓存。
func (r *gormPortfolioRepository) GetProfile(ctx context.Context) (*model.User, error) {
	if r.rdb != nil {
		cached, err := r.rdb.Get(ctx, profileCacheKey).Result()
		if err == nil {
			var user model.User
			if unmarshalErr := json.Unmarshal([]byte(cached), &user); unmarshalErr == nil {
				return &user, nil
			}
			// 缓存内容损坏时回落到数据库
			log.Warnf("档案缓存解析失败，回源查询数据库")
		} else if err != redis.Nil {
			log.Warnf("读取档案缓存失败: %v", err)
		}
	}

	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Skills").
		Preload("Experiences", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date DESC")
		}).
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	if r.rdb != nil {
		if data, marshalErr := json.Marshal(&user); marshalErr == nil {
			if setErr := r.rdb.Set(ctx, profileCacheKey, data, r.cacheTTL).Err(); setErr != nil {
				log.Warnf("写入档案缓存失败: %v", setErr)
			}
		}
	}
	return &user, nil
}

// FindFeaturedProjects 返回精选项目列表。
func (r *gormPortfolioRepository) FindFeaturedProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query featured projects: %w", err)
	}
	return projects, nil
}

// FindSkills 返回全部技能记录。
func (r *gormPortfolioRepository) FindSkills(ctx context.Context) ([]model.Skill, error) {
	var skills []model.Skill
	err := r.db.WithContext(ctx).
		Order("category ASC, level DESC").
		Find(&skills).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	return skills, nil
}

// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// User 对应 'users' 表，即站点主人的档案。
// 整个服务只存在一条 User 记录，作为 Response Engine 的只读快照来源。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Bio       string    `gorm:"type:text;not null" json:"bio"`
	Avatar    string    `gorm:"type:varchar(255)" json:"avatar"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Skills      []Skill      `gorm:"foreignKey:UserID" json:"skills"`
	Experiences []Experience `gorm:"foreignKey:UserID" json:"experiences"`
	Projects    []Project    `gorm:"foreignKey:UserID" json:"projects"`
}

func (User) TableName() string {
	return "users"
}

// Skill 对应 'skills' 表中的一项技能。
type Skill struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"index;not null" json:"userId"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Category string `gorm:"type:varchar(100);not null" json:"category"`
	Level    string `gorm:"type:varchar(50);not null" json:"level"`
}

func (Skill) TableName() string {
	return "skills"
}

// Experience 对应 'experiences' 表中的一段工作经历。
type Experience struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index;not null" json:"userId"`
	Company     string `gorm:"type:varchar(255);not null" json:"company"`
	Position    string `gorm:"type:varchar(255);not null" json:"position"`
	Duration    string `gorm:"type:varchar(100);not null" json:"duration"`
	Description string `gorm:"type:text;not null" json:"description"`
	// Current 表示是否为当前在职经历。
	Current   bool      `gorm:"not null;default:false" json:"current"`
	StartDate time.Time `gorm:"not null" json:"startDate"`
	// EndDate 使用指针以接受 NULL 值，当前在职经历没有结束日期。
	EndDate *time.Time `json:"endDate"`
}

func (Experience) TableName() string {
	return "experiences"
}

// Project 对应 'projects' 表中的一个作品项目。
type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index;not null" json:"userId"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
	// Technologies 以 JSON 数组的形式存储在单列中。
	Technologies []string  `gorm:"serializer:json;type:text" json:"technologies"`
	GithubURL    string    `gorm:"type:varchar(255)" json:"githubUrl,omitempty"`
	LiveURL      string    `gorm:"type:varchar(255)" json:"liveUrl,omitempty"`
	Featured     bool      `gorm:"not null;default:false" json:"featured"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Project) TableName() string {
	return "projects"
}

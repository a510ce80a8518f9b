package model

import "time"

// User 作者 / 浏览者（账号本身由外部认证服务维护）
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"type:varchar(64);uniqueIndex"`
	Name      string    `json:"name" gorm:"type:varchar(128)"`
	Email     string    `json:"-" gorm:"type:varchar(255)"`
	Image     string    `json:"image,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

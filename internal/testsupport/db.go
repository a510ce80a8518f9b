// Package testsupport 测试用的内存数据库与数据构造
package testsupport

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/community-feed/internal/model"
)

// OpenDB 每个测试独占一个已迁移的 sqlite 内存库
func OpenDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	// :memory: 按连接隔离
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(model.All()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Fixture 直接用 gorm 写入数据
type Fixture struct {
	tb   testing.TB
	db   *gorm.DB
	Base time.Time
	seq  int
}

func NewFixture(tb testing.TB, db *gorm.DB) *Fixture {
	return &Fixture{tb: tb, db: db, Base: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *Fixture) create(v any) {
	f.tb.Helper()
	if err := f.db.Omit(clause.Associations).Create(v).Error; err != nil {
		f.tb.Fatalf("create %T: %v", v, err)
	}
}

func (f *Fixture) User(id string) *model.User {
	u := &model.User{ID: id, Username: id, Name: id, Email: id + "@example.com", CreatedAt: f.Base}
	f.create(u)
	return u
}

func (f *Fixture) Community(name string) *model.Subreddit {
	s := &model.Subreddit{ID: "sr-" + name, Name: name, CreatedAt: f.Base, UpdatedAt: f.Base}
	f.create(s)
	return s
}

func (f *Fixture) Follow(u *model.User, s *model.Subreddit) {
	f.create(&model.Subscription{UserID: u.ID, SubredditID: s.ID})
}

// Post 创建时间为 Base + minutes 分钟
func (f *Fixture) Post(author *model.User, s *model.Subreddit, minutes int) *model.Post {
	f.seq++
	return f.PostAt(fmt.Sprintf("post-%03d", f.seq), author, s, f.Base.Add(time.Duration(minutes)*time.Minute))
}

func (f *Fixture) PostAt(id string, author *model.User, s *model.Subreddit, at time.Time) *model.Post {
	p := &model.Post{
		ID:          id,
		Title:       "title " + id,
		CreatedAt:   at,
		UpdatedAt:   at,
		AuthorID:    author.ID,
		SubredditID: s.ID,
	}
	f.create(p)
	return p
}

func (f *Fixture) Vote(u *model.User, p *model.Post, t model.VoteType) {
	f.create(&model.Vote{UserID: u.ID, PostID: p.ID, Type: t})
}

func (f *Fixture) Comment(u *model.User, p *model.Post) {
	f.seq++
	f.create(&model.Comment{ID: fmt.Sprintf("comment-%03d", f.seq), Text: "nice", CreatedAt: f.Base, AuthorID: u.ID, PostID: p.ID})
}

func IDs(posts []*model.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

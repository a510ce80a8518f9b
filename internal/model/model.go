package model

// All 返回需要迁移的全部实体
func All() []any {
	return []any{&User{}, &Subreddit{}, &Subscription{}, &Post{}, &Vote{}, &Comment{}}
}

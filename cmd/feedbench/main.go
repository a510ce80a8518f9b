// feedbench 灌入一批社区、帖子、投票和评论，然后测量三种范围下的分页读延迟，
// 以及用增量加载器把一个首页完整滚到底的耗时。
//
// 参数通过环境变量调整：USERS COMMUNITIES POSTS VOTES FOLLOWS LIMIT PAGES ROUNDS
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/community-feed/config"
	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/internal/feedclient"
	"github.com/d60-Lab/community-feed/internal/model"
	"github.com/d60-Lab/community-feed/internal/repository"
	"github.com/d60-Lab/community-feed/internal/service"
	"github.com/d60-Lab/community-feed/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func env(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	check(database.Migrate(db))
	ctx := context.Background()

	USERS := env("USERS", 200)
	COMMUNITIES := env("COMMUNITIES", 20)
	POSTS := env("POSTS", 5000)
	VOTES := env("VOTES", 4) // 每帖平均票数
	FOLLOWS := env("FOLLOWS", 5)
	LIMIT := env("LIMIT", 20)
	PAGES := env("PAGES", 10)
	ROUNDS := env("ROUNDS", 20)

	// clean tables for a reproducible run (ok for local bench)
	for _, t := range []string{"comments", "votes", "posts", "subscriptions", "subreddits", "users"} {
		_ = db.Exec("DELETE FROM " + t).Error
	}

	seeds := repository.NewSeedRepository(db)
	subreddits := repository.NewSubredditRepository(db)
	subs := repository.NewSubscriptionRepository(db)
	postRepo := repository.NewPostRepository(db)
	rng := rand.New(rand.NewSource(1))

	st := time.Now()
	users := make([]*model.User, USERS)
	for i := range users {
		id := uuid.New().String()
		users[i] = &model.User{ID: id, Username: "u" + id[:8], Name: "user " + id[:8], Email: id[:8] + "@example.com"}
	}
	check(seeds.CreateUsers(ctx, users))

	communities := make([]*model.Subreddit, COMMUNITIES)
	for i := range communities {
		communities[i] = &model.Subreddit{ID: uuid.New().String(), Name: fmt.Sprintf("community%d", i), CreatorID: &users[i%USERS].ID}
		check(subreddits.Create(ctx, communities[i]))
	}
	for _, u := range users {
		for j := 0; j < FOLLOWS && j < COMMUNITIES; j++ {
			check(subs.Create(ctx, u.ID, communities[rng.Intn(COMMUNITIES)].ID))
		}
	}

	base := time.Now().Add(-time.Duration(POSTS) * time.Minute)
	posts := make([]*model.Post, POSTS)
	for i := range posts {
		posts[i] = &model.Post{
			ID:          uuid.New().String(),
			Title:       fmt.Sprintf("post %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			AuthorID:    users[rng.Intn(USERS)].ID,
			SubredditID: communities[rng.Intn(COMMUNITIES)].ID,
		}
	}
	check(postRepo.Create(ctx, posts))

	var comments []*model.Comment
	for _, p := range posts {
		for v := rng.Intn(2 * VOTES); v > 0; v-- {
			t := model.VoteUp
			if rng.Intn(4) == 0 {
				t = model.VoteDown
			}
			check(seeds.UpsertVote(ctx, &model.Vote{UserID: users[rng.Intn(USERS)].ID, PostID: p.ID, Type: t}))
		}
		if rng.Intn(3) == 0 {
			comments = append(comments, &model.Comment{ID: uuid.New().String(), Text: "nice", AuthorID: users[rng.Intn(USERS)].ID, PostID: p.ID})
		}
	}
	check(seeds.CreateComments(ctx, comments))
	fmt.Printf("USERS=%d COMMUNITIES=%d POSTS=%d VOTES~%d FOLLOWS=%d LIMIT=%d PAGES=%d ROUNDS=%d\n",
		USERS, COMMUNITIES, POSTS, VOTES, FOLLOWS, LIMIT, PAGES, ROUNDS)
	fmt.Printf("Seed: %v (comments=%d)\n", time.Since(st), len(comments))

	svc := service.NewFeedService(postRepo, subs, cfg.Feed.MaxLimit)
	viewer := feed.Viewer{ID: users[0].ID}
	name := communities[0].Name
	cases := []struct {
		label  string
		viewer feed.Viewer
		filter feed.Filter
	}{
		{"global", feed.AnonymousViewer, feed.Filter{}},
		{"followed", viewer, feed.Filter{}},
		{"explicit", viewer, feed.Filter{CommunityName: &name}},
	}

	followed := must(subs.ListSubscriptions(ctx, viewer.ID, 0, COMMUNITIES))
	fmt.Printf("user0 follows %d communities\n", len(followed))

	for _, c := range cases {
		scope := must(feed.DecideScope(c.filter, c.viewer, func() ([]string, error) { return subs.ListSubredditIDs(ctx, c.viewer.ID) }))
		fmt.Printf("Scope %-8s matches %d posts\n", c.label, must(postRepo.Count(ctx, scope)))

		var first, deep []time.Duration
		for r := 0; r < ROUNDS; r++ {
			for p := feed.FirstPage; p <= PAGES; p++ {
				req := feed.Params{Limit: LIMIT, Page: p}.PageRequest()
				st := time.Now()
				_, err := svc.Resolve(ctx, c.viewer, c.filter, req)
				check(err)
				d := time.Since(st)
				if p == feed.FirstPage {
					first = append(first, d)
				} else {
					deep = append(deep, d)
				}
			}
		}
		fmt.Printf("Resolve %-8s first page: p50=%v p95=%v | pages 2..%d: p50=%v p95=%v p99=%v\n",
			c.label, pct(first, 0.5), pct(first, 0.95), PAGES, pct(deep, 0.5), pct(deep, 0.95), pct(deep, 0.99))
	}

	// 首页 + 增量加载滚到底
	initial := service.NewInitialLoader(svc, subreddits, LIMIT)
	st = time.Now()
	seed, err := initial.Home(ctx, viewer)
	check(err)
	loader := feedclient.NewLoaderFromSeed(feedclient.LocalFetcher(svc, viewer), seed, feedclient.WithFetchTimeout(cfg.Feed.FetchTimeout))
	defer loader.Close()
	requests := 0
	for loader.State() != feedclient.StateExhausted {
		check(loader.FetchNext(ctx))
		requests++
	}
	fmt.Printf("Scroll home feed (user0, page size %d): %v, posts=%d requests=%d\n", initial.PageSize(), time.Since(st), loader.Len(), requests)
}

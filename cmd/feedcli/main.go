// feedcli 在终端里滚动远端 feed：先取首页种子，然后每次“看到最后一条”时
// 触发增量加载，直到出现不满一页的结果。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/community-feed/internal/feed"
	"github.com/d60-Lab/community-feed/internal/feedclient"
	"github.com/d60-Lab/community-feed/pkg/logger"
)

func main() {
	if err := logger.Init("info", "console"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		logger.Error("feedcli failed", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("feedcli", flag.ContinueOnError)
	base := fs.String("base", "http://localhost:8080", "feed server base URL")
	community := fs.String("r", "", "community name; empty for the home feed")
	token := fs.String("token", "", "bearer token")
	session := fs.String("session", "", "session_token cookie value")
	viewerID := fs.String("viewer", "", "user id used to mark the viewer's own votes")
	maxPages := fs.Int("pages", 10, "stop after this many pages")
	timeout := fs.Duration("timeout", feedclient.DefaultFetchTimeout, "per-page fetch timeout")
	retries := fs.Int("retries", 3, "attempts per page before giving up")
	backoff := fs.Duration("backoff", 500*time.Millisecond, "wait before a retry, multiplied by the attempt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := []feedclient.HTTPOption{feedclient.WithHTTPClient(&http.Client{Timeout: *timeout})}
	if *token != "" {
		opts = append(opts, feedclient.WithBearer(*token))
	}
	if *session != "" {
		opts = append(opts, feedclient.WithSessionCookie(&http.Cookie{Name: "session_token", Value: *session}))
	}
	fetcher := feedclient.NewHTTPFetcher(*base, opts...)

	var name *string
	if *community != "" {
		name = community
	}
	seed, err := fetcher.Seed(ctx, name)
	if err != nil {
		return fmt.Errorf("load first page: %w", err)
	}

	loader := feedclient.NewLoaderFromSeed(fetcher, seed,
		feedclient.WithFetchTimeout(*timeout),
		feedclient.WithOnError(func(page int, err error) {
			logger.Warn("could not fetch more posts",
				zap.Int("page", page), zap.Bool("retryable", feedclient.Retryable(err)), zap.Error(err))
		}),
	)
	defer loader.Close()

	viewer := feed.Viewer{ID: *viewerID}
	printed := show(out, loader.Items(viewer), 0)

	attempts := 0
	for pages := 1; pages < *maxPages && loader.State() != feedclient.StateExhausted; {
		if !loader.Visible(ctx, printed-1) {
			break
		}
		loader.Wait()
		if err := loader.Err(); err != nil {
			attempts++
			if attempts >= *retries || !feedclient.Retryable(err) {
				return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
			}
			select {
			case <-time.After(time.Duration(attempts) * *backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		attempts = 0
		pages++
		printed = show(out, loader.Items(viewer), printed)
	}
	fmt.Fprintf(out, "-- %d posts, state %s\n", loader.Len(), loader.State())
	return nil
}

// show 输出 from 之后的新条目，返回已输出数量
func show(out io.Writer, items []feed.Item, from int) int {
	for i := from; i < len(items); i++ {
		it := items[i]
		community := ""
		if it.Post.Subreddit.Name != "" {
			community = "r/" + it.Post.Subreddit.Name + " "
		}
		mark := " "
		if v := it.Score.ViewerVote; v != nil {
			mark = map[bool]string{true: "^", false: "v"}[v.Type.Value() > 0]
		}
		fmt.Fprintf(out, "%3d %s%+4d  %s%s  (%d comments, %s)\n",
			i+1, mark, it.Score.Net, community, it.Post.Title, it.CommentCount, it.Post.CreatedAt.Format(time.RFC3339))
	}
	return len(items)
}

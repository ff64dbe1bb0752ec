package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"whatsup/internal/api"
	"whatsup/internal/cmdlog"
	"whatsup/internal/config"
	"whatsup/internal/logging"
	"whatsup/internal/metrics"
	"whatsup/internal/model"
	"whatsup/internal/session"
	"whatsup/internal/store/sessiondb"
	"whatsup/internal/theme"
	"whatsup/internal/util"
	"whatsup/internal/view"
	"whatsup/internal/web"
)

func main() {
	godotenv.Load()
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "serve":
		cmdServe()
	case "login":
		cmdLogin()
	case "logout":
		cmdLogout()
	case "whoami":
		cmdWhoami()
	case "feed":
		cmdFeed()
	case "profile":
		cmdProfile()
	case "post":
		cmdPost()
	case "posts":
		cmdPosts()
	case "follow":
		cmdFollow()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: whatsup <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init      Create a config file at ./whatsup.yaml")
	fmt.Println("  serve     Run the local web UI")
	fmt.Println("  login     Log in and persist the session")
	fmt.Println("  logout    Clear the persisted session")
	fmt.Println("  whoami    Show the logged-in user")
	fmt.Println("  feed      Print your feed")
	fmt.Println("  profile   Print a profile (yours by default)")
	fmt.Println("  post      Publish a post")
	fmt.Println("  posts     Print a user's posts")
	fmt.Println("  follow    Toggle following a user")
}

// setup wires the client, the session store, and the manager; the client
// reads its token from the manager on every request.
func setup(ctx context.Context, cfgPath string) (config.Config, *sessiondb.DB, *api.Client, *session.Manager, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, nil, nil, nil, err
		}
		// no config file yet: defaults plus env are enough to run
		cfg = config.Default()
		cfg.ResolveEnv()
	}
	db, err := sessiondb.Open(cfg.Storage.DBPath)
	if err != nil {
		return cfg, nil, nil, nil, err
	}
	client := api.New(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	mgr, err := session.New(ctx, db, client)
	if err != nil {
		_ = db.Close()
		return cfg, nil, nil, nil, err
	}
	client.SetTokenSource(mgr)
	return cfg, db, client, mgr, nil
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./whatsup.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	_ = cmdlog.Run("init", func() error {
		if err := config.Save(*path, config.Default()); err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		abs, _ := filepath.Abs(*path)
		theme.PrintBanner()
		fmt.Println("Config written to:", abs)
		return nil
	})
}

func cmdServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "./whatsup.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	ctx := context.Background()
	cfg, db, client, mgr, err := setup(ctx, *cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer db.Close()
	metrics.StartServer(cfg.Metrics.Addr)
	srv := web.NewServer(cfg.Web, mgr, client)
	theme.PrintBanner()
	logging.Info("serve", map[string]any{"listen": cfg.Web.Listen, "backend": cfg.API.BaseURL})
	server := &http.Server{
		Addr:              cfg.Web.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 3 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdLogin() {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	cfgPath := fs.String("config", "./whatsup.yaml", "config path")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password (prompted when omitted)")
	_ = fs.Parse(os.Args[2:])
	_ = cmdlog.Run("login", func() error {
		ctx := context.Background()
		_, db, _, mgr, err := setup(ctx, *cfgPath)
		if err != nil {
			return err
		}
		defer db.Close()
		u := *username
		if u == "" {
			u = prompt("Username: ")
		}
		p := *password
		if p == "" {
			p = prompt("Password: ")
		}
		if err := mgr.Login(ctx, u, p); err != nil {
			var authErr *api.AuthError
			if errors.As(err, &authErr) {
				fmt.Println(authErr.Message)
			} else {
				fmt.Println("login failed:", err)
			}
			return err
		}
		fmt.Println("Logged in as", mgr.Username())
		return nil
	})
}

func cmdLogout() {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	cfgPath := fs.String("config", "./whatsup.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	_ = cmdlog.Run("logout", func() error {
		ctx := context.Background()
		_, db, _, mgr, err := setup(ctx, *cfgPath)
		if err != nil {
			return err
		}
		defer db.Close()
		mgr.Logout(ctx)
		fmt.Println("Logged out.")
		return nil
	})
}

func cmdWhoami() {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	cfgPath := fs.String("config", "./whatsup.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	_ = cmdlog.Run("whoami", func() error {
		ctx := context.Background()
		_, db, _, mgr, err := setup(ctx, *cfgPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if !mgr.IsAuthenticated() {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Println("Logged in as", mgr.Username())
		return nil
	})
}

func cmdFeed() {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	cfgPath := fs.String("config", "./whatsup.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	_ = cmdlog.Run("feed", func() error {
		ctx := context.Background()
		_, db, client, mgr, err := setup(ctx, *cfgPath)
		if err != nil {
			return err
		}
		defer db.Close()
		v := view.NewFeedView(mgr, client)
		v.Load(ctx)
		switch v.State() {
		case view.StateIdle:
			fmt.Println("You need to be logged in to see the feed.")
		case view.StateError:
			fmt.Println(v.ErrorMessage())
		default:
			posts := v.Posts()
			if len(posts) == 0 {
				fmt.Println("No posts yet.")
			}
			for _, p := range posts {
				printPost(p)
			}
		}
		return nil
	})
}

func cmdProfile() {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	cfgPath := fs.String("config", "./whatsup.yaml", "config path")
	username := fs.String("username", "", "profile to show (yours when omitted)")
	_ = fs.Parse(os.Args[2:])
	_ = cmdlog.Run("profile", func() error {
		ctx := context.Background()
		_, db, client, mgr, err := setup(ctx, *cfgPath)
		if err != nil {
			return err
		}
		defer db.Close()
		v := view.NewProfileView(mgr, client)
		v.Load(ctx, *username)
		switch v.State() {
		case view.StateIdle:
			fmt.Println("You need to be logged in to see profiles.")
		case view.StateError:
			fmt.Println(v.ErrorMessage())
		default:
			p := v.Profile()
			fmt.Printf("@%s  following=%d followers=%d\n", p.Username, p.FollowingCount, p.FollowersCount)
			if p.Bio != "" {
				fmt.Println(p.Bio)
			}
			if !v.IsMe() {
				if v.IsFollowing() {
					fmt.Println("[following]")
				} else {
					fmt.Println("[not following]")
				}
			}
			fmt.Printf("Posts (%d):\n", len(p.Posts))
			for _, post := range p.Posts {
				printPost(post)
			}
		}
		return nil
	})
}

func cmdPost() {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	cfgPath := fs.String("config", "./whatsup.yaml", "config path")
	content := fs.String("content", "", "post content")
	_ = fs.Parse(os.Args[2:])
	_ = cmdlog.Run("post", func() error {
		if util.IsBlank(*content) {
			fmt.Println("Nothing to post.")
			return nil
		}
		ctx := context.Background()
		_, db, client, _, err := setup(ctx, *cfgPath)
		if err != nil {
			return err
		}
		defer db.Close()
		p, err := client.CreatePost(ctx, *content, nil)
		if err != nil {
			fmt.Println("could not publish the post")
			return err
		}
		fmt.Println("Posted:", p.ID)
		return nil
	})
}

func cmdPosts() {
	fs := flag.NewFlagSet("posts", flag.ExitOnError)
	cfgPath := fs.String("config", "./whatsup.yaml", "config path")
	username := fs.String("username", "", "whose posts to list")
	_ = fs.Parse(os.Args[2:])
	_ = cmdlog.Run("posts", func() error {
		if *username == "" {
			fmt.Println("--username required")
			return errors.New("missing username")
		}
		ctx := context.Background()
		_, db, client, _, err := setup(ctx, *cfgPath)
		if err != nil {
			return err
		}
		defer db.Close()
		posts, err := client.UserPosts(ctx, *username)
		if err != nil {
			fmt.Println("could not load the posts")
			return err
		}
		if len(posts) == 0 {
			fmt.Println("No posts yet.")
		}
		for _, p := range posts {
			printPost(p)
		}
		return nil
	})
}

func cmdFollow() {
	fs := flag.NewFlagSet("follow", flag.ExitOnError)
	cfgPath := fs.String("config", "./whatsup.yaml", "config path")
	username := fs.String("username", "", "user to follow/unfollow")
	_ = fs.Parse(os.Args[2:])
	_ = cmdlog.Run("follow", func() error {
		if *username == "" {
			fmt.Println("--username required")
			return errors.New("missing username")
		}
		ctx := context.Background()
		_, db, client, mgr, err := setup(ctx, *cfgPath)
		if err != nil {
			return err
		}
		defer db.Close()
		v := view.NewProfileView(mgr, client)
		v.Load(ctx, *username)
		if err := v.ToggleFollow(ctx); err != nil {
			fmt.Println("could not change the follow")
			return err
		}
		if v.IsFollowing() {
			fmt.Println("Now following", *username)
		} else {
			fmt.Println("No longer following", *username)
		}
		return nil
	})
}

func printPost(p model.Post) {
	fmt.Printf("@%s · %s\n", p.Author, p.CreatedAt.Format(time.RFC822))
	if p.ParentPreview != nil {
		fmt.Printf("  ↳ repost of @%s: %s\n", p.ParentPreview.Author, util.Truncate(p.ParentPreview.Content, 60))
	}
	fmt.Printf("  %s\n", p.Content)
	fmt.Printf("  ♥ %d  💬 %d  🔁 %d\n", p.LikeCount, p.CommentCount, p.RetweetCount)
}

func prompt(label string) string {
	fmt.Print(label)
	r := bufio.NewReader(os.Stdin)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

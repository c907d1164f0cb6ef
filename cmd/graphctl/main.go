package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/socialsync-hq/fbgraph/internal/config"
	"github.com/socialsync-hq/fbgraph/internal/enrich"
	"github.com/socialsync-hq/fbgraph/internal/storage"
	"github.com/socialsync-hq/fbgraph/pkg/graph"
	"github.com/socialsync-hq/fbgraph/pkg/httpclient"
)

const usage = `usage: graphctl <command> [flags]

commands:
  profile         fetch the authenticated user's profile (GET /me)
  likes           list the authenticated user's likes (GET /me/likes)
  permissions     list permissions granted by a user (GET /{user}/permissions)
  page            fetch a page node (GET /{page})
  page-likes      print a page's like count
  exchange-token  exchange a short-lived token for a long-lived one
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "graphctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	settings := graph.NewSettings(cfg.GraphURL, cfg.ClientID, cfg.AppSecret)
	client := graph.NewClient(settings, httpclient.NewRestyClient(cfg.HTTPTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "profile":
		return runProfile(ctx, client, cfg, args[1:])
	case "likes":
		return runLikes(ctx, client, cfg, args[1:])
	case "permissions":
		return runPermissions(ctx, client, cfg, args[1:])
	case "page":
		return runPage(ctx, client, cfg, args[1:])
	case "page-likes":
		return runPageLikes(ctx, client, cfg, args[1:])
	case "exchange-token":
		return runExchangeToken(ctx, client, cfg, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// tokenFlag registers the shared --token flag on a flag set.
func tokenFlag(fs *flag.FlagSet) *string {
	return fs.String("token", "", "access token (defaults to the access_token setting)")
}

func resolveToken(flagValue string, cfg *config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.AccessToken != "" {
		return cfg.AccessToken, nil
	}
	if tok := cachedLongLivedToken(cfg); tok != "" {
		return tok, nil
	}
	return "", fmt.Errorf("no access token: pass --token, set access_token, or cache one with exchange-token --cache")
}

// cachedLongLivedToken reads a previously cached exchange token, if any.
func cachedLongLivedToken(cfg *config.Config) string {
	store, err := openStore(cfg)
	if err != nil {
		return ""
	}
	defer store.Close()

	token, found, err := store.CachedToken(storage.LongLivedTokenKey)
	if err != nil || !found {
		return ""
	}
	return token
}

func openStore(cfg *config.Config) (storage.Store, error) {
	return storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TokenTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func splitFields(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	return strings.Split(csv, ",")
}

func runProfile(ctx context.Context, client *graph.Client, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	token := tokenFlag(fs)
	fields := fs.String("fields", "id,name", "comma-separated profile fields")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tok, err := resolveToken(*token, cfg)
	if err != nil {
		return err
	}

	res, err := client.Profile(ctx, splitFields(*fields), tok)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runLikes(ctx context.Context, client *graph.Client, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("likes", flag.ContinueOnError)
	token := tokenFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	tok, err := resolveToken(*token, cfg)
	if err != nil {
		return err
	}

	res, err := client.MyLikes(ctx, tok)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runPermissions(ctx context.Context, client *graph.Client, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("permissions", flag.ContinueOnError)
	token := tokenFlag(fs)
	user := fs.String("user", "me", "user id to inspect")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tok, err := resolveToken(*token, cfg)
	if err != nil {
		return err
	}

	res, err := client.Permissions(ctx, *user, tok)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runPage(ctx context.Context, client *graph.Client, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("page", flag.ContinueOnError)
	token := tokenFlag(fs)
	id := fs.String("id", "", "page id (required)")
	fields := fs.String("fields", "id,name,likes,link", "comma-separated page fields")
	og := fs.Bool("og", false, "scrape OG metadata from the page's public link")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("page: --id is required")
	}

	tok, err := resolveToken(*token, cfg)
	if err != nil {
		return err
	}

	res, err := client.Page(ctx, *id, tok, splitFields(*fields))
	if err != nil {
		return err
	}

	if *og {
		if link := res.String("link"); link != "" {
			meta, err := enrich.NewScraper(nil).PageMeta(ctx, link, nil)
			if err != nil {
				fmt.Fprintf(os.Stderr, "graphctl: og scrape failed: %v\n", err)
			} else {
				name, about, picture := enrich.Merge(
					res.String("name"), res.String("about"), res.String("picture"), meta)
				res["name"] = name
				res["about"] = about
				res["picture"] = picture
			}
		}
	}

	return printJSON(res)
}

func runPageLikes(ctx context.Context, client *graph.Client, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("page-likes", flag.ContinueOnError)
	token := tokenFlag(fs)
	id := fs.String("id", "", "page id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("page-likes: --id is required")
	}

	tok, err := resolveToken(*token, cfg)
	if err != nil {
		return err
	}

	likes, err := client.PageLikes(ctx, *id, tok)
	if err != nil {
		return err
	}
	fmt.Println(likes)
	return nil
}

func runExchangeToken(ctx context.Context, client *graph.Client, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("exchange-token", flag.ContinueOnError)
	token := tokenFlag(fs)
	cache := fs.Bool("cache", false, "store the long-lived token in local storage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tok, err := resolveToken(*token, cfg)
	if err != nil {
		return err
	}

	res, err := client.LongLivedAccessToken(ctx, tok)
	if err != nil {
		return err
	}

	if *cache {
		longLived := res.String("access_token")
		if longLived == "" {
			return fmt.Errorf("exchange response carried no access_token")
		}
		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer store.Close()
		if err := store.StoreToken(storage.LongLivedTokenKey, longLived, 0); err != nil {
			return fmt.Errorf("cache token: %w", err)
		}
	}

	return printJSON(res)
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
	"github.com/sakif/bloom/internal/server"
	"github.com/sakif/bloom/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write demo members and content into the store",
	Long: `Write the five demo members (u1..u5) into the configured store.

Members are upserted, so running seed twice is harmless. Featured links and
sample posts are only added when asked for and are added again on every run.

Examples:
  bloom seed
  bloom seed --posts
  bloom seed --featured https://example.com/showcase --featured https://example.com/fair`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringSlice("featured", nil, "featured link to add to the home page carousel (repeatable)")
	seedCmd.Flags().Bool("posts", false, "add one sample post per demo member")
}

// demoUsers are the members every fresh install starts with.
var demoUsers = []model.UserRecord{
	{UID: "u1", DisplayName: "CreativeCat", PhotoURL: "https://picsum.photos/id/1025/100/100", Bio: "Painting my world one color at a time. Exploring new mediums and sharing my journey with the world. Join me!"},
	{UID: "u2", DisplayName: "LensLife", PhotoURL: "https://picsum.photos/id/1011/100/100", Bio: "Capturing moments through my lens. Life is beautiful, and I want to show you my perspective."},
	{UID: "u3", DisplayName: "WordWeaver", PhotoURL: "https://picsum.photos/id/237/100/100", Bio: "Spinning tales and weaving words. I write short stories, poetry, and occasionally ramble about books."},
	{UID: "u4", DisplayName: "MelodyMaker", PhotoURL: "https://picsum.photos/id/1084/100/100", Bio: "Crafting sounds and chasing melodies. I produce electronic music and DJ on weekends."},
	{UID: "u5", DisplayName: "HandmadeHeart", PhotoURL: "https://picsum.photos/id/1078/100/100", Bio: "Knitting, stitching, and creating with love. All things crafty and cozy."},
}

// demoPosts pairs each demo member with a first project.
var demoPosts = []service.CreatePostInput{
	{UserID: "u1", Category: "Painting", Caption: "Finished my latest watercolor of a castle by the sea."},
	{UserID: "u2", Category: "Photography", Caption: "Golden hour over the harbour, shot on a 50mm prime."},
	{UserID: "u3", Category: "Writing", Caption: "A short story about a lighthouse keeper who collects lost letters."},
	{UserID: "u4", Category: "Music", Caption: "New ambient track built from field recordings of the rain."},
	{UserID: "u5", Category: "Crafts", Caption: "My first attempt at pottery. It's a bit wobbly, but it's mine!"},
}

type seedOptions struct {
	Featured []string
	Posts    bool
}

type seedResult struct {
	Users, Featured, Posts int
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	featured, err := cmd.Flags().GetStringSlice("featured")
	if err != nil {
		return err
	}
	posts, err := cmd.Flags().GetBool("posts")
	if err != nil {
		return err
	}

	store, err := server.OpenStore(cmd.Context(), cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	result, err := seed(cmd.Context(), store, seedOptions{Featured: featured, Posts: posts}, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d members, %d featured links, %d posts.\n", result.Users, result.Featured, result.Posts)
	return nil
}

// seed writes the demo content through the same services the web app uses,
// so featured links and posts get the usual validation.
func seed(ctx context.Context, store repository.Store, opts seedOptions, logger *slog.Logger) (seedResult, error) {
	var result seedResult

	for _, u := range demoUsers {
		if err := store.Upsert(ctx, &u); err != nil {
			return result, fmt.Errorf("seeding member %s: %w", u.UID, err)
		}
		result.Users++
	}

	featured := service.NewFeaturedService(store, nil, logger)
	for _, link := range opts.Featured {
		if _, err := featured.Add(ctx, link); err != nil {
			return result, fmt.Errorf("adding featured link %q: %w", link, err)
		}
		result.Featured++
	}

	if opts.Posts {
		posts := service.NewPostService(store, store, nil, nil, logger)
		for _, in := range demoPosts {
			if _, err := posts.Create(ctx, in); err != nil {
				return result, fmt.Errorf("adding sample post for %s: %w", in.UserID, err)
			}
			result.Posts++
		}
	}

	logger.Info("store seeded",
		slog.Int("users", result.Users),
		slog.Int("featured", result.Featured),
		slog.Int("posts", result.Posts),
	)
	return result, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/postsync/internal/app"
	"github.com/bft-labs/postsync/internal/cliconfig"
	"github.com/bft-labs/postsync/internal/configwatch"
	"github.com/bft-labs/postsync/internal/domain"
	"github.com/bft-labs/postsync/internal/fakeapi"
	"github.com/bft-labs/postsync/pkg/log"
)

// settle waits for an operation to be applied to the store.
func settle(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// session starts a store, loads the collection and hands it to fn.
func (c *cli) session(ctx context.Context, fn func(s *app.Store, posts domain.Posts) error) error {
	s := c.newStore()
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Close()

	if err := settle(ctx, s.FetchAll()); err != nil {
		return err
	}
	snap := s.Snapshot()
	if snap.Error != nil {
		return snap.Error
	}
	return fn(s, snap.Posts)
}

// apply runs one operation and returns the store's error slot if it was set.
func apply(ctx context.Context, s *app.Store, done <-chan struct{}) (app.Snapshot, error) {
	if err := settle(ctx, done); err != nil {
		return app.Snapshot{}, err
	}
	snap := s.Snapshot()
	if snap.Error != nil {
		return snap, snap.Error
	}
	return snap, nil
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the remote collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.session(cmd.Context(), func(s *app.Store, posts domain.Posts) error {
				return printPosts(cmd.OutOrStdout(), c.cfg.Output, posts)
			})
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	var title, body string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.session(cmd.Context(), func(s *app.Store, _ domain.Posts) error {
				snap, err := apply(cmd.Context(), s, s.Create(title, body))
				if err != nil {
					return err
				}
				return printPosts(cmd.OutOrStdout(), c.cfg.Output, snap.Posts[:1])
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&body, "body", "", "post body")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var (
		id          int
		title, body string
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace the title and body of a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.session(cmd.Context(), func(s *app.Store, posts domain.Posts) error {
				i := posts.IndexOf(id)
				if i < 0 {
					return fmt.Errorf("post %d not found", id)
				}
				post := posts[i]
				if !cmd.Flags().Changed("title") {
					title = post.Title
				}
				if !cmd.Flags().Changed("body") {
					body = post.Body
				}

				snap, err := apply(cmd.Context(), s, s.Update(post, title, body))
				if err != nil {
					return err
				}
				if j := snap.Posts.IndexOf(id); j >= 0 {
					return printPosts(cmd.OutOrStdout(), c.cfg.Output, snap.Posts[j:j+1])
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "post id")
	cmd.Flags().StringVar(&title, "title", "", "new title (default: keep)")
	cmd.Flags().StringVar(&body, "body", "", "new body (default: keep)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	var id int
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.session(cmd.Context(), func(s *app.Store, posts domain.Posts) error {
				post := domain.Post{ID: id}
				if i := posts.IndexOf(id); i >= 0 {
					post = posts[i]
				}
				snap, err := apply(cmd.Context(), s, s.Delete(post))
				if err != nil {
					return err
				}
				c.logger.Info("post deleted", log.Int("id", id), log.Int("remaining", len(snap.Posts)))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "post id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (c *cli) watchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print every change to the collection until interrupted",
		Long: "Fetches the collection and prints a summary line per change. When the config " +
			"file changes, the base URL is reloaded and the collection fetched again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := c.newStore()
			if err := s.Start(ctx); err != nil {
				return err
			}
			defer s.Close()

			updates, cancel := s.Subscribe()
			defer cancel()

			if cliconfig.FileExists(c.cfgPath) {
				w := configwatch.New(c.cfgPath, configwatch.DefaultDebounce, func() {
					c.reload(s)
				}, c.logger)
				go func() {
					if err := w.Run(ctx); err != nil {
						c.logger.Warn("config watcher stopped", log.Err(err))
					}
				}()
			}

			var tick <-chan time.Time
			if interval > 0 {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				tick = ticker.C
			}

			s.FetchAll()
			out := cmd.OutOrStdout()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-tick:
					s.FetchAll()
				case snap, ok := <-updates:
					if !ok {
						return nil
					}
					printSummary(out, snap)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "refetch the collection at this interval (0 disables)")
	return cmd
}

// reload re-reads configuration sources and re-points the gateway.
func (c *cli) reload(s *app.Store) {
	cfg := c.cfg
	if err := cliconfig.Load(&cfg, c.cfgPath, c.changed); err != nil {
		c.logger.Error("reload config", log.Err(err))
		return
	}
	if err := cfg.Validate(); err != nil {
		c.logger.Error("reload config", log.Err(err))
		return
	}
	if cfg.BaseURL != c.gateway.BaseURL() {
		c.logger.Info("base url changed", log.String("from", c.gateway.BaseURL()), log.String("to", cfg.BaseURL))
		c.gateway.SetBaseURL(cfg.BaseURL)
	}
	s.FetchAll()
}

func (c *cli) fakeServerCmd() *cobra.Command {
	var (
		addr string
		seed int
	)
	cmd := &cobra.Command{
		Use:   "fake-server",
		Short: "Serve an in-memory posts collection for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			srv := &http.Server{
				Addr:              addr,
				Handler:           fakeapi.New(fakeapi.Seed(seed), c.logger),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			c.logger.Info("fake api listening",
				log.String("addr", addr),
				log.String("collection", fakeapi.CollectionPath),
				log.Int("posts", seed),
			)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&seed, "seed", 100, "number of posts to start with")
	return cmd
}

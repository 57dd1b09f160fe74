package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/foodwizard/bot/core/bootstrap"
	"github.com/foodwizard/bot/core/logger"
	tg "github.com/foodwizard/bot/core/telegram"
	"github.com/foodwizard/bot/core/telegram/helpers"
	"github.com/foodwizard/bot/core/telegram/middleware"
	"github.com/foodwizard/bot/core/telegram/router"
	"github.com/foodwizard/bot/internal/ai"
	"github.com/foodwizard/bot/internal/analytics"
	"github.com/foodwizard/bot/internal/bot"
	"github.com/foodwizard/bot/internal/images"
	"github.com/foodwizard/bot/internal/imagestore"
	"github.com/foodwizard/bot/internal/recipes"
	"github.com/foodwizard/bot/internal/session"
	"github.com/foodwizard/bot/internal/storage"
	"github.com/foodwizard/bot/internal/users"

	tele "gopkg.in/telebot.v4"
)

// imageCachePruneAge is how long unused generated images stay cached.
const imageCachePruneAge = 30 * 24 * time.Hour

// App holds everything built during bootstrap and produces the run
// options for the shared Telegram runner.
type App struct {
	cfg *Config
	db  *sqlx.DB
	rdb *redis.Client

	store    *storage.Store
	sessions session.Manager
	bot      *bot.Bot

	stopSweep context.CancelFunc
}

// Bootstrap initializes logging, storage and every service, returning
// an App ready to produce Telegram run options.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	store := storage.New(res.DB)

	usersSvc := users.NewService(store)
	if err := usersSvc.WarmBanList(ctx); err != nil {
		logger.Warn(ctx, "service.users", "ban_list.warm_failed", slog.String("err", err.Error()))
	}

	sessCfg := session.Config{
		HistoryCap: cfg.Cache.HistoryCap,
		IdleTTL:    cfg.cacheTTL(),
	}

	var (
		sessions session.Manager
		rdb      *redis.Client
	)
	switch cfg.Cache.Backend {
	case CacheBackendRedis:
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			_ = res.DB.Close()
			return nil, fmt.Errorf("app: parse redis url: %w", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = res.DB.Close()
			return nil, fmt.Errorf("app: redis ping: %w", err)
		}
		sessions = session.NewRedis(rdb, store, sessCfg)
	default:
		sessions = session.NewMemory(store, sessCfg)
	}

	aiClient, err := ai.New(cfg.AI, nil)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	var imgSvc *images.Service
	if cfg.Images.Enabled {
		imgSvc, err = buildImagePipeline(ctx, cfg, store)
		if err != nil {
			_ = res.DB.Close()
			return nil, err
		}
	}

	b := bot.New(bot.Deps{
		Sessions:  sessions,
		Users:     usersSvc,
		Recipes:   recipes.NewService(store),
		Analytics: analytics.NewService(store),
		AI:        aiClient,
		Images:    imgSvc,
		AdminIDs:  cfg.Core.Telegram.AdminIDs,
	})

	return &App{
		cfg:      cfg,
		db:       res.DB,
		rdb:      rdb,
		store:    store,
		sessions: sessions,
		bot:      b,
	}, nil
}

func buildImagePipeline(ctx context.Context, cfg *Config, store *storage.Store) (*images.Service, error) {
	providers := []images.Provider{}
	if cfg.Images.HuggingFaceToken != "" {
		providers = append(providers, images.NewHuggingFace(cfg.Images.HuggingFaceToken, nil))
	}
	providers = append(providers, images.NewPollinations(nil))

	uploaders := []imagestore.Uploader{}
	if cfg.Storage.S3.Bucket != "" {
		s3up, err := imagestore.NewS3(ctx, cfg.Storage.S3)
		if err != nil {
			return nil, err
		}
		uploaders = append(uploaders, s3up)
	}
	local, err := imagestore.NewLocal(cfg.Storage.Local)
	if err != nil {
		return nil, err
	}
	uploaders = append(uploaders, local)

	return images.NewService(
		images.NewChain(providers...),
		imagestore.NewChain(uploaders...),
		store,
	), nil
}

// TelegramRunOptions wires the registry, middlewares and routes.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	a.bot.Register(reg)

	fsm := a.bot.FSM()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminIDs: a.cfg.Core.Telegram.AdminIDs,
		OnAdminReject: func(c tele.Context) error {
			return helpers.SendText(c, "Эта команда только для администраторов.")
		},
	})
	routes = append(routes, router.TextRoutes(fsm, reg, router.TextOptions{
		Voice:           a.bot.HandleVoice,
		UnknownDocument: a.bot.UnknownDocument,
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	// The ban gate goes first so banned users never reach the rate
	// limiter or handlers.
	middlewares := append([]tg.Middleware{
		{
			Name: "ban_gate",
			Use: middleware.BanGateMiddleware(middleware.BanOptions{
				IsBanned: a.bot.IsBanned,
				OnReject: a.bot.RejectBanned,
			}),
		},
	}, tg.DefaultMiddlewares(&a.cfg.Core, nil)...)

	return tg.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: middlewares,
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.startMaintenance(ctx)
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			a.Close()
			return nil
		},
	}, nil
}

// startMaintenance runs the periodic session sweep and, once a day,
// prunes stale entries from the image cache.
func (a *App) startMaintenance(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	a.stopSweep = cancel

	interval := a.cfg.sweepInterval()
	pruneEvery := int(24 * time.Hour / interval)
	if pruneEvery < 1 {
		pruneEvery = 1
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		ticks := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.sessions.Sweep(ctx)
				ticks++
				if ticks%pruneEvery == 0 {
					if n, err := a.store.PruneImageCache(ctx, imageCachePruneAge); err != nil {
						logger.Warn(ctx, "img", "cache.prune_failed", slog.String("err", err.Error()))
					} else if n > 0 {
						logger.Info(ctx, "img", "cache.pruned", slog.Int64("removed", n))
					}
				}
			}
		}
	}()
}

// Close releases infrastructure. Safe to call more than once.
func (a *App) Close() {
	if a.stopSweep != nil {
		a.stopSweep()
		a.stopSweep = nil
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
		a.rdb = nil
	}
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

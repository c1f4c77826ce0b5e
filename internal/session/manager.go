package session

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/growtech/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ManagerParams struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

func NewManager(p ManagerParams) (*scs.SessionManager, error) {
	sm := scs.New()
	sm.Lifetime = p.Config.Session.Lifetime
	sm.Cookie.Name = p.Config.Session.CookieName
	sm.Cookie.Secure = p.Config.Session.Secure
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
		p.Log.Error("session error", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}

	if p.Config.Session.Store == config.StoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     p.Config.Redis.Addr,
			Password: p.Config.Redis.Password,
			DB:       p.Config.Redis.DB,
		})
		sm.Store = NewRedisStore(client, "growtech:session:")

		p.LC.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				return client.Ping(pingCtx).Err()
			},
			OnStop: func(_ context.Context) error {
				return client.Close()
			},
		})
		p.Log.Info("using redis session store", zap.String("addr", p.Config.Redis.Addr))
	}

	return sm, nil
}

package identity

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/cnst"
)

// Identity issues the visitor session id. The id is read from the store once
// per process, created when missing, and mirrored into the cookie jar.
type Identity struct {
	logger *zap.Logger
	store  Store
	jar    http.CookieJar
	site   *url.URL

	mu sync.Mutex
	id string
}

// New creates an Identity. jar and site may be nil to skip the cookie mirror.
func New(store Store, jar http.CookieJar, site *url.URL, logger *zap.Logger) *Identity {
	return &Identity{
		logger: logger.Named("identity"),
		store:  store,
		jar:    jar,
		site:   site,
	}
}

// SessionID returns the session id, creating and persisting one on first use.
// Store failures are logged and an id that lives only in this process is used.
func (i *Identity) SessionID(ctx context.Context) string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.id != "" {
		return i.id
	}

	id, err := i.store.Get(ctx, cnst.SessionKey)
	switch {
	case err == nil && id != "":
		i.logger.Debug("reusing session id", zap.String("session_id", id))
	case err == nil || errors.Is(err, ErrNotFound):
		id = uuid.NewString()
		if err := i.store.Set(ctx, cnst.SessionKey, id); err != nil {
			i.logger.Warn("failed to persist session id, using ephemeral id", zap.Error(err))
		} else {
			i.logger.Info("created session id", zap.String("session_id", id))
		}
	default:
		id = uuid.NewString()
		i.logger.Warn("failed to read session id, using ephemeral id", zap.Error(err))
	}

	i.id = id
	i.mirrorCookie(id)
	return id
}

func (i *Identity) mirrorCookie(id string) {
	if i.jar == nil || i.site == nil {
		return
	}
	i.jar.SetCookies(i.site, []*http.Cookie{{
		Name:   cnst.SessionKey,
		Value:  id,
		Path:   cnst.SessionCookiePath,
		MaxAge: cnst.SessionCookieMaxAge,
	}})
}

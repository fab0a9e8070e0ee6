package auth

import (
	"time"

	"github.com/joeydtaylor/steeze-session/pkg/session/cache"
	"go.uber.org/zap"
)

type Middleware struct {
	cfg       Config
	store     *cache.Store
	verifier  *Verifier
	refresher *Refresher
	profiles  *Profiles
	public    map[string]struct{}
	now       func() time.Time
	log       *zap.Logger
}

func New(client IdentityClient, store *cache.Store, cfg Config, log *zap.Logger) *Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	public := make(map[string]struct{}, len(cfg.PublicPaths))
	for _, p := range cfg.PublicPaths {
		public[p] = struct{}{}
	}
	return &Middleware{
		cfg:       cfg,
		store:     store,
		verifier:  NewVerifier(client, store, cfg.VerifyTTL, log),
		refresher: NewRefresher(client, log),
		profiles:  NewProfiles(client, store, cfg.ProfileTTL),
		public:    public,
		now:       time.Now,
		log:       log,
	}
}

// setClock replaces the clock of every component; tests only.
func (m *Middleware) setClock(now func() time.Time) {
	m.now = now
	m.verifier.now = now
	m.profiles.now = now
}

func (m *Middleware) Config() Config { return m.cfg }

func (m *Middleware) IsPublic(path string) bool {
	_, ok := m.public[path]
	return ok
}

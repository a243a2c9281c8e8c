package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Tiliavir/standup/internal/api"
	"github.com/Tiliavir/standup/internal/datecalc"
	"github.com/Tiliavir/standup/internal/model"
	"github.com/Tiliavir/standup/internal/orchestrator"
	"github.com/Tiliavir/standup/internal/storage"
	"github.com/Tiliavir/standup/internal/store"
)

// session bundles what a command needs to talk to the service.
type session struct {
	orch  *orchestrator.Orchestrator
	cache *storage.Cache
	loc   *time.Location
}

// openSession builds the client, the entry container seeded from the local
// cache, and the orchestrator driving both.
func openSession(ctx context.Context) (*session, error) {
	loc, err := datecalc.Location(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	policy, err := store.ParseStalePolicy(cfg.Sync.StalePolicy)
	if err != nil {
		return nil, err
	}
	refetch, err := refetchPolicy(cfg.Sync.RefetchAfterWrite)
	if err != nil {
		return nil, err
	}

	client, err := newClient(ctx)
	if err != nil {
		return nil, err
	}

	cache := storage.OpenCache(storage.CacheDir(baseDir), logger)
	cached, err := cache.Load(ctx, model.ListFilter{})
	if err != nil {
		logger.Warn("reading entry cache", "error", err)
	}
	container := store.New(store.WithStalePolicy(policy), store.WithEntries(cached))
	container.Subscribe(cache.Observe)

	return &session{
		orch:  orchestrator.New(client, container, orchestrator.WithPolicy(refetch), orchestrator.WithLogger(logger)),
		cache: cache,
		loc:   loc,
	}, nil
}

// newClient returns an authenticated client when a token is stored and a
// plain one otherwise, which is what a local dev server expects.
func newClient(ctx context.Context) (*api.Client, error) {
	tokenPath := api.TokenPath(baseDir)
	tok, err := api.LoadToken(tokenPath)
	switch {
	case errors.Is(err, api.ErrNoToken):
		logger.Debug("no stored token, sending unauthenticated requests")
		return api.NewClient(cfg.API.BaseURL,
			api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
			api.WithLogger(logger),
		), nil
	case err != nil:
		return nil, err
	}
	oauthCfg := api.OAuthConfig(cfg.Auth.ClientID, cfg.Auth.DeviceAuthURL, cfg.Auth.TokenURL, cfg.Auth.Scopes)
	return api.NewAuthenticatedClient(ctx, cfg.API.BaseURL, tok, oauthCfg, tokenPath, cfg.API.Timeout, api.WithLogger(logger)), nil
}

// refetchPolicy turns sync.refetch_after_write into the complete refetch
// policy. The listed writes re-read the focused entry and the collection;
// an empty list disables refetching.
func refetchPolicy(names []string) (orchestrator.Policy, error) {
	policy := orchestrator.Policy{}
	for _, name := range names {
		op, ok := store.ParseOp(name)
		if !ok || !op.IsWrite() {
			return nil, fmt.Errorf("sync.refetch_after_write: %q is not a write operation (want create, update, delete or toggleHighlight)", name)
		}
		policy[op] = orchestrator.Refetch{Focused: true, List: true}
	}
	return policy, nil
}

func (s *session) store() *store.Container { return s.orch.Store() }

func (s *session) now() time.Time { return time.Now().In(s.loc) }

// check converts a failed completion into an error for cobra to print.
func check(done orchestrator.Completion) error {
	if done.OK() {
		return nil
	}
	return errors.New(done.Err)
}

package main

import (
	"bmxshop/internal/api"
	"bmxshop/internal/cart"
	"bmxshop/internal/config"
	"bmxshop/internal/history"
	"bmxshop/internal/localstore"
	"bmxshop/internal/payment"
	"bmxshop/internal/session"
	"fmt"

	"go.uber.org/zap"
)

// shopApp wires the client stack together: config, on-disk state, the API
// client, and the stores layered on top of them. Commands build one per
// invocation and close it when done.
type shopApp struct {
	cfg     config.Config
	logger  *zap.Logger
	storage *localstore.Store
	client  *api.Client
	session *session.Manager
	cart    *cart.Store
	history *history.Store
	payment payment.Provider
}

func openApp() (*shopApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if stateDir != "" {
		cfg.Storage.Dir = stateDir
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	storage, err := localstore.Open(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state dir: %w", err)
	}

	client := api.New(cfg.API, log)
	mgr := session.NewManager(client, storage, log)
	client.SetCredentialSource(mgr)

	orders, err := history.Open(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open order history: %w", err)
	}

	return &shopApp{
		cfg:     cfg,
		logger:  log,
		storage: storage,
		client:  client,
		session: mgr,
		cart:    cart.NewStore(storage, log),
		history: orders,
		payment: payment.ForConfig(cfg.Payment),
	}, nil
}

func (a *shopApp) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close order history", zap.Error(err))
		}
	}
}

// requireSession returns the active session or a friendly error for
// commands that only make sense when signed in.
func (a *shopApp) requireSession() (session.Session, error) {
	sess, ok := a.session.Current()
	if !ok {
		return session.Session{}, fmt.Errorf("not signed in (run 'bmxshop login')")
	}
	return sess, nil
}

func (a *shopApp) requireAdmin() (session.Session, error) {
	sess, err := a.requireSession()
	if err != nil {
		return session.Session{}, err
	}
	if !sess.IsAdmin() {
		return session.Session{}, fmt.Errorf("%s is not an admin account", sess.Email)
	}
	return sess, nil
}

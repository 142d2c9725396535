package portal

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/wintercup/portal/internal/cache"
	"github.com/wintercup/portal/internal/domain"
	"github.com/wintercup/portal/internal/events"
	"github.com/wintercup/portal/internal/gateway"
	"github.com/wintercup/portal/internal/infra"
	"github.com/wintercup/portal/internal/session"
	"github.com/wintercup/portal/internal/storage"
	"github.com/wintercup/portal/internal/submission"
)

// Cache and form topics published on the event bus.
const (
	TopicTournaments = "tournaments"
	TopicVipServers  = "vip_servers"
	TopicMyReports   = "my_reports"
)

// Portal is one client instance: session, collections and create forms
// wired to a single gateway and local store.
type Portal struct {
	logger *slog.Logger

	store    storage.Store
	producer *infra.KafkaProducer
	sink     *events.ProducerSink
	cancel   context.CancelFunc

	Gateway *gateway.Client
	Bus     *events.Bus
	Session *session.Store

	Tournaments *cache.Cache[domain.Tournament]
	VipServers  *cache.Cache[domain.VipServer]
	MyReports   *cache.Cache[domain.ReportRecord]

	TournamentForm *submission.Controller[submission.TournamentDraft]
	VipServerForm  *submission.Controller[submission.VipServerDraft]
	ReportForm     *submission.Controller[submission.ReportDraft]
}

// New assembles a Portal from cfg. The caller must Close it.
func New(ctx context.Context, cfg *infra.Config, notifier domain.Notifier, logger *slog.Logger) (*Portal, error) {
	policy, err := cache.ParsePolicy(cfg.CachePolicy)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, storage.Options{
		Backend:     cfg.Storage,
		SQLiteDSN:   cfg.SQLiteDSN,
		RedisURL:    cfg.RedisURL,
		RedisPrefix: cfg.RedisPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	p := &Portal{logger: logger, store: store}

	// Event fan-out, mirrored to Kafka when enabled
	p.producer = infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	var sinks []events.Sink
	if p.producer.Enabled() {
		sinkCtx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		p.sink = events.NewProducerSink(p.producer, cfg.EventsTopic, 0, logger)
		p.sink.Start(sinkCtx)
		sinks = append(sinks, p.sink)
	}
	p.Bus = events.NewBus(0, logger, sinks...)

	p.Gateway = gateway.NewClient(gateway.Endpoints{
		RobloxAuth:   cfg.RobloxAuthURL,
		TelegramAuth: cfg.TelegramAuthURL,
		Tournaments:  cfg.TournamentsURL,
		VipServers:   cfg.VipServersURL,
		Reports:      cfg.ReportsURL,
	}, cfg.HTTPTimeout, logger)

	p.Session = session.NewStore(store, p.Gateway, notifier, p.Bus, logger)

	// Collections
	p.Tournaments = cache.New[domain.Tournament](TopicTournaments, p.Gateway.ListTournaments, policy, p.Bus, logger)
	p.VipServers = cache.New[domain.VipServer](TopicVipServers, p.Gateway.ListVipServers, policy, p.Bus, logger)
	p.MyReports = cache.New[domain.ReportRecord](TopicMyReports, p.fetchMyReports, policy, p.Bus, logger)

	// Create forms
	endpoints := p.Gateway.Endpoints()
	p.TournamentForm = submission.New(submission.Config[submission.TournamentDraft]{
		Topic:     TopicTournaments,
		Endpoint:  endpoints.Tournaments,
		Default:   submission.DefaultTournamentDraft,
		Session:   p.Session,
		Poster:    p.Gateway,
		Refresher: p.Tournaments,
		Notifier:  notifier,
		Events:    p.Bus,
		Logger:    logger,
	})
	p.VipServerForm = submission.New(submission.Config[submission.VipServerDraft]{
		Topic:     TopicVipServers,
		Endpoint:  endpoints.VipServers,
		Default:   submission.DefaultVipServerDraft,
		Session:   p.Session,
		Poster:    p.Gateway,
		Refresher: p.VipServers,
		Notifier:  notifier,
		Events:    p.Bus,
		Logger:    logger,
	})
	p.ReportForm = submission.New(submission.Config[submission.ReportDraft]{
		Topic:     TopicMyReports,
		Endpoint:  endpoints.Reports,
		Default:   submission.DefaultReportDraft,
		Session:   p.Session,
		Poster:    p.Gateway,
		Refresher: p.MyReports,
		Notifier:  notifier,
		Events:    p.Bus,
		Logger:    logger,
	})

	return p, nil
}

// fetchMyReports lists the signed-in user's reports; anonymous sees none.
func (p *Portal) fetchMyReports(ctx context.Context) ([]domain.ReportRecord, error) {
	id, ok := p.Session.Identity()
	if !ok {
		return []domain.ReportRecord{}, nil
	}
	return p.Gateway.ListReports(ctx, id.ID)
}

// Start restores the persisted session and loads every collection in
// parallel. Fetch failures leave the affected collection Empty and are
// only logged.
func (p *Portal) Start(ctx context.Context) error {
	if _, err := p.Session.RestoreFromPersistence(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	p.Reload(ctx)
	return nil
}

// Reload refetches every collection concurrently and waits for all of them.
func (p *Portal) Reload(ctx context.Context) {
	var g errgroup.Group
	for _, load := range []func(context.Context) error{
		p.Tournaments.Load,
		p.VipServers.Load,
		p.MyReports.Load,
	} {
		g.Go(func() error {
			_ = load(ctx)
			return nil
		})
	}
	_ = g.Wait()
}

// Login authenticates and refreshes the per-user collection.
func (p *Portal) Login(ctx context.Context, cred session.ProviderCredential) (domain.Identity, error) {
	id, err := p.Session.Authenticate(ctx, cred)
	if err != nil {
		return domain.Identity{}, err
	}
	_ = p.MyReports.Load(ctx)
	return id, nil
}

// Logout clears the session and the per-user collection.
func (p *Portal) Logout(ctx context.Context) error {
	if err := p.Session.Logout(ctx); err != nil {
		return err
	}
	_ = p.MyReports.Load(ctx)
	return nil
}

// Close flushes pending events and releases the local store.
func (p *Portal) Close() error {
	p.Bus.Close()
	if p.sink != nil {
		p.sink.Stop()
		p.cancel()
	}
	if err := p.producer.Close(); err != nil {
		p.logger.Warn("kafka producer close failed", "error", err)
	}
	return p.store.Close()
}

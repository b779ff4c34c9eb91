package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/controller"
	"github.com/api-sage/bank-ledger/src/internal/adapter/http/middleware"
	"github.com/api-sage/bank-ledger/src/internal/adapter/http/router"
	"github.com/api-sage/bank-ledger/src/internal/adapter/notification"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/implementations"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/bank-ledger/src/internal/config"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/metrics"
	"github.com/api-sage/bank-ledger/src/internal/usecase/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type stores struct {
	accounts     repo_interfaces.AccountRepository
	transactions repo_interfaces.TransactionRepository
	customers    repo_interfaces.CustomerRepository
	ledger       repo_interfaces.LedgerCommitter
	alerts       repo_interfaces.AlertRepository
}

// Container holds every wired component. Build it once per process and Close it on shutdown.
type Container struct {
	Config   config.Config
	Clock    domain.Clock
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Transactions *services.TransactionService
	Interest     *services.InterestService
	Sweeps       *services.SweepService
	Accounts     *services.AccountService
	Customers    *services.CustomerService

	closers []func() error
}

type Option func(*buildOptions)

type buildOptions struct {
	clock    domain.Clock
	notifier domain.Notifier
	pinCost  int
}

// WithClock replaces the system clock.
func WithClock(clock domain.Clock) Option {
	return func(o *buildOptions) { o.clock = clock }
}

// WithNotifier replaces the configured notification sinks.
func WithNotifier(notifier domain.Notifier) Option {
	return func(o *buildOptions) { o.notifier = notifier }
}

// WithPinCost sets the bcrypt cost for transaction PINs.
func WithPinCost(cost int) Option {
	return func(o *buildOptions) { o.pinCost = cost }
}

func Build(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	options := buildOptions{clock: domain.SystemClock{Location: cfg.Location()}}
	for _, opt := range opts {
		opt(&options)
	}

	c := &Container{
		Config:   cfg,
		Clock:    options.clock,
		Registry: prometheus.NewRegistry(),
	}
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.New(c.Registry)

	st, err := c.openStores(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	notifier := options.notifier
	if notifier == nil {
		notifier = c.notifier()
	}

	locks := services.NewAccountLocks()
	factory := domain.NewTransactionFactory(c.Clock)
	policy := cfg.Policy

	c.Customers = services.NewCustomerService(st.customers, c.Clock, options.pinCost)
	fees := services.NewFeePolicy(st.transactions, policy.FreeTransactionLimit, policy.TransactionFee)
	c.Transactions = services.NewTransactionService(st.accounts, st.ledger, fees, factory, c.Clock, locks, c.Metrics, c.Customers)
	c.Interest = services.NewInterestService(c.Transactions)
	c.Sweeps = services.NewSweepService(st.accounts, st.transactions, st.alerts, c.Interest, notifier, c.Clock, locks, c.Metrics, services.SweepPolicy{
		LowBalanceThreshold:       policy.LowBalanceThreshold,
		LargeTransactionThreshold: policy.LargeTransactionThreshold,
		VelocityLimit:             policy.VelocityLimit,
		VelocityWindow:            policy.VelocityWindow(),
		InactivityPeriodMonths:    policy.InactivityPeriodMonths,
	})
	c.Accounts = services.NewAccountService(st.accounts, st.transactions, st.customers, c.Clock, locks)

	logger.Info("app container built", logger.Fields{
		"storageMode": string(cfg.StorageMode),
		"timezone":    cfg.Timezone,
		"kafka":       len(cfg.KafkaBrokers) > 0,
	})

	return c, nil
}

func (c *Container) openStores(ctx context.Context) (stores, error) {
	switch c.Config.StorageMode {
	case config.StorageMemory:
		store := memory.NewStore()
		return stores{accounts: store, transactions: store, customers: store, ledger: store, alerts: store}, nil
	case config.StoragePostgres:
		db, err := implementations.Open(ctx, c.Config.DatabaseDSN)
		if err != nil {
			return stores{}, err
		}
		c.closers = append(c.closers, db.Close)
		if err := implementations.RunMigrations(ctx, db, c.Config.MigrationsDir); err != nil {
			return stores{}, fmt.Errorf("run migrations: %w", err)
		}
		return sqlStores(db, implementations.DialectPostgres), nil
	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, c.Config.SQLitePath)
		if err != nil {
			return stores{}, err
		}
		c.closers = append(c.closers, db.Close)
		return sqlStores(db, implementations.DialectSQLite), nil
	default:
		return stores{}, fmt.Errorf("unsupported storage mode %q", c.Config.StorageMode)
	}
}

func sqlStores(db *sql.DB, dialect implementations.Dialect) stores {
	return stores{
		accounts:     implementations.NewAccountRepository(db, dialect),
		transactions: implementations.NewTransactionRepository(db, dialect),
		customers:    implementations.NewCustomerRepository(db, dialect),
		ledger:       implementations.NewLedgerRepository(db, dialect),
		alerts:       implementations.NewAlertRepository(db, dialect),
	}
}

func (c *Container) notifier() domain.Notifier {
	sinks := notification.FanoutNotifier{notification.LogNotifier{}}
	if len(c.Config.KafkaBrokers) > 0 {
		kafka := notification.NewKafkaNotifier(c.Config.KafkaBrokers, c.Config.KafkaNotificationTopic, c.Clock)
		c.closers = append(c.closers, kafka.Close)
		sinks = append(sinks, kafka)
	}
	return sinks
}

// Handler returns the HTTP surface over the container's services.
func (c *Container) Handler() http.Handler {
	return router.New(router.Options{
		AuthMiddleware: middleware.BasicAuth(c.Config.ChannelID, c.Config.ChannelKey),
		Gatherer:       c.Registry,
		RequestTimeout: 30 * time.Second,
	},
		controller.NewCustomerController(c.Customers, c.Accounts),
		controller.NewAccountController(c.Accounts),
		controller.NewTransactionController(c.Transactions),
		controller.NewJobsController(c.Sweeps, c.Interest),
	)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

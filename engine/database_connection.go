package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/algotrader-go/algotrader/database"
	dbPSQL "github.com/algotrader-go/algotrader/database/drivers/postgres"
	dbsqlite3 "github.com/algotrader-go/algotrader/database/drivers/sqlite3"
	"github.com/algotrader-go/algotrader/engine/subsystem"
	"github.com/algotrader-go/algotrader/log"
)

// DatabaseConnectionManagerName is an exported subsystem name
const DatabaseConnectionManagerName = "database"

const databaseCheckInterval = 2 * time.Second

// DatabaseConnectionManager holds the database connection, creates the
// schema on start and keeps checking the connection while running
type DatabaseConnectionManager struct {
	started  int32
	shutdown chan struct{}
	cfg      database.Config
	dbConn   *database.Instance
}

// SetupDatabaseConnectionManager creates a new database manager
func SetupDatabaseConnectionManager(cfg *database.Config) (*DatabaseConnectionManager, error) {
	if cfg == nil {
		return nil, subsystem.ErrNilConfig
	}
	return &DatabaseConnectionManager{
		cfg:    *cfg,
		dbConn: database.DB,
	}, nil
}

// IsRunning safely checks whether the subsystem is running
func (m *DatabaseConnectionManager) IsRunning() bool {
	if m == nil {
		return false
	}
	return atomic.LoadInt32(&m.started) == 1
}

// Start connects to the configured database and creates the schema
func (m *DatabaseConnectionManager) Start(wg *sync.WaitGroup) (err error) {
	if m == nil {
		return fmt.Errorf("%s %w", DatabaseConnectionManagerName, subsystem.ErrNil)
	}
	if !atomic.CompareAndSwapInt32(&m.started, 0, 1) {
		return fmt.Errorf("%s %w", DatabaseConnectionManagerName, subsystem.ErrAlreadyStarted)
	}
	defer func() {
		if err != nil {
			atomic.CompareAndSwapInt32(&m.started, 1, 0)
		}
	}()

	log.Debugf(log.DatabaseMgr, "Database manager %s", subsystem.MsgStarting)
	if !m.cfg.Enabled {
		return database.ErrDatabaseSupportDisabled
	}
	if m.cfg.Driver == "" {
		return database.ErrNoDatabaseProvided
	}
	driver := database.NormaliseDriver(m.cfg.Driver)
	switch driver {
	case database.DBPostgreSQL:
		log.Debugf(log.DatabaseMgr, "Attempting to establish database connection to host %s/%s utilising %s driver",
			m.cfg.Host, m.cfg.Database, m.cfg.Driver)
		m.dbConn, err = dbPSQL.Connect(&m.cfg)
	case database.DBSQLite3:
		log.Debugf(log.DatabaseMgr, "Attempting to establish database connection to %s utilising %s driver",
			m.cfg.Database, m.cfg.Driver)
		m.dbConn, err = dbsqlite3.Connect(m.cfg.Database)
	default:
		return fmt.Errorf("%w: %q", database.ErrInvalidDriver, m.cfg.Driver)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", database.ErrFailedToConnect, err)
	}
	if err = m.dbConn.SetConfig(&m.cfg); err != nil {
		return err
	}
	m.dbConn.SetConnected(true)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err = database.CreateSchema(ctx, m.dbConn.GetSQL(), driver); err != nil {
		m.dbConn.SetConnected(false)
		return err
	}

	m.shutdown = make(chan struct{})
	wg.Add(1)
	go m.run(wg)
	return nil
}

// Stop closes the database connection
func (m *DatabaseConnectionManager) Stop() error {
	if m == nil {
		return fmt.Errorf("%s %w", DatabaseConnectionManagerName, subsystem.ErrNil)
	}
	if !atomic.CompareAndSwapInt32(&m.started, 1, 0) {
		return fmt.Errorf("%s %w", DatabaseConnectionManagerName, subsystem.ErrNotStarted)
	}
	log.Debugf(log.DatabaseMgr, "Database manager %s", subsystem.MsgShuttingDown)
	close(m.shutdown)
	if err := m.dbConn.CloseConnection(); err != nil {
		log.Errorf(log.DatabaseMgr, "Failed to close database: %v", err)
	}
	return nil
}

func (m *DatabaseConnectionManager) run(wg *sync.WaitGroup) {
	log.Debugf(log.DatabaseMgr, "Database manager %s", subsystem.MsgStarted)
	t := time.NewTicker(databaseCheckInterval)
	defer func() {
		t.Stop()
		wg.Done()
		log.Debugf(log.DatabaseMgr, "Database manager %s", subsystem.MsgShutdown)
	}()

	for {
		select {
		case <-m.shutdown:
			return
		case <-t.C:
			if err := m.checkConnection(); err != nil {
				log.Errorln(log.DatabaseMgr, err)
			}
		}
	}
}

// checkConnection pings the database, marking the instance disconnected on
// failure and connected again once the ping succeeds
func (m *DatabaseConnectionManager) checkConnection() error {
	if m == nil {
		return fmt.Errorf("%s %w", DatabaseConnectionManagerName, subsystem.ErrNil)
	}
	if atomic.LoadInt32(&m.started) == 0 {
		return fmt.Errorf("%s %w", DatabaseConnectionManagerName, subsystem.ErrNotStarted)
	}
	if !m.cfg.Enabled {
		return database.ErrDatabaseSupportDisabled
	}
	if err := m.dbConn.Ping(); err != nil {
		m.dbConn.SetConnected(false)
		return fmt.Errorf("%w: %w", database.ErrDatabaseNotConnected, err)
	}
	if !m.dbConn.IsConnected() {
		log.Infof(log.DatabaseMgr, "Database connection reestablished")
		m.dbConn.SetConnected(true)
	}
	return nil
}

// GetInstance returns the database instance when the manager is running
func (m *DatabaseConnectionManager) GetInstance() *database.Instance {
	if !m.IsRunning() {
		return nil
	}
	return m.dbConn
}

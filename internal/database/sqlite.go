package database

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
	_ "modernc.org/sqlite"
)

// SQLiteManager owns the wallet's local database
type SQLiteManager struct {
	dir    string
	cm     *utils.ConfigManager
	db     *sql.DB
	logger *utils.LogsManager
}

// NewSQLiteManager opens (or creates) the database file in the data dir and
// makes sure every table exists.
func NewSQLiteManager(cm *utils.ConfigManager, logger *utils.LogsManager) (*SQLiteManager, error) {
	sqlm := &SQLiteManager{
		dir:    utils.GetAppPaths("").DataDir,
		cm:     cm,
		logger: logger,
	}

	db, err := sqlm.createConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %v", err)
	}
	sqlm.db = db

	if err := sqlm.initTables(); err != nil {
		db.Close()
		return nil, err
	}

	return sqlm, nil
}

// NewSQLiteManagerWithDB wraps an already open connection, e.g. ":memory:" in tests
func NewSQLiteManagerWithDB(db *sql.DB, logger *utils.LogsManager) (*SQLiteManager, error) {
	sqlm := &SQLiteManager{db: db, logger: logger}
	if err := sqlm.initTables(); err != nil {
		return nil, err
	}
	return sqlm, nil
}

func (sqlm *SQLiteManager) initTables() error {
	if err := sqlm.InitEnvelopesTable(); err != nil {
		return fmt.Errorf("failed to initialize wallet envelopes table: %v", err)
	}
	if err := sqlm.InitAppSettingsTable(); err != nil {
		return fmt.Errorf("failed to initialize app settings table: %v", err)
	}
	return nil
}

func (sqlm *SQLiteManager) createConnection() (*sql.DB, error) {
	dbFileName := sqlm.cm.GetConfigWithDefault("database_file", "sentient-wallet.db")
	if runtime.GOOS == "windows" {
		dbFileName = filepath.FromSlash(dbFileName)
	}
	path := filepath.Join(sqlm.dir, dbFileName)

	db, err := sql.Open("sqlite",
		fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)", path))
	if err != nil {
		sqlm.logger.Error(fmt.Sprintf("Can not create database connection. (%s)", err.Error()), "database")
		return nil, err
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		sqlm.logger.Error(fmt.Sprintf("Failed to open database %s: %v", path, err), "database")
		return nil, err
	}

	sqlm.logger.Debug(fmt.Sprintf("Database opened at %s", path), "database")
	return db, nil
}

func (sqlm *SQLiteManager) Close() error {
	if sqlm.db != nil {
		return sqlm.db.Close()
	}
	return nil
}

package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/kaptain9960/payflow/internal/cache"

	"github.com/kaptain9960/payflow/config"

	_ "github.com/lib/pq"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con, Cache: nil}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, errors.Wrap(err, "failed to reach database")
	}
	err = createAccountTable(db)
	if err != nil {
		return nil, err
	}
	err = createTransactionTable(db)
	if err != nil {
		return nil, err
	}
	err = createCardTable(db)
	if err != nil {
		return nil, err
	}
	err = createInvoiceTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createTransactionTable creates a PostgreSQL table for the Transaction struct
func createTransactionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id SERIAL PRIMARY KEY,
			transaction_id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			source TEXT NOT NULL REFERENCES accounts(number),
			destination TEXT NOT NULL,
			amount NUMERIC(20,2) NOT NULL CHECK (amount > 0),
			currency TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating transactions table: %v", err)
	}
	return err
}

// createAccountTable creates a PostgreSQL table for the Account struct
func createAccountTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id SERIAL PRIMARY KEY,
			account_id TEXT NOT NULL UNIQUE,
			number TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			balance NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			currency TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating accounts table: %v", err)
	}
	return err
}

// createCardTable creates a PostgreSQL table for the CreditCard struct
func createCardTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS credit_cards (
			id SERIAL PRIMARY KEY,
			card_id TEXT NOT NULL UNIQUE,
			account_number TEXT NOT NULL REFERENCES accounts(number),
			masked_number TEXT NOT NULL,
			brand TEXT NOT NULL,
			balance NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			currency TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating credit_cards table: %v", err)
	}
	return err
}

// createInvoiceTable creates a PostgreSQL table for the Invoice struct.
// invoice_number is UNIQUE; the generator does not guarantee uniqueness, the
// creation path retries on a duplicate.
func createInvoiceTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS invoices (
			id SERIAL PRIMARY KEY,
			invoice_number TEXT NOT NULL UNIQUE,
			client_name TEXT NOT NULL,
			client_email TEXT NOT NULL,
			issue_date DATE NOT NULL,
			due_date DATE NOT NULL,
			description TEXT,
			amount NUMERIC(20,2) NOT NULL CHECK (amount > 0),
			currency TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Pending',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating invoices table: %v", err)
	}
	return err
}

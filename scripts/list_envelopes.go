package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/database"
	"github.com/Trustflow-Network-Labs/sentient-wallet/internal/utils"
)

func openEnvelopeStore(dbPath string) (*sql.DB, *database.SQLiteManager) {
	if dbPath == "" {
		dbPath = utils.GetAppPaths("").GetDataPath("sentient-wallet.db")
	}

	if _, err := os.Stat(dbPath); err != nil {
		fmt.Printf("Database not found at %s: %v\n", dbPath, err)
		os.Exit(1)
	}

	// Connect to database (using modernc.org/sqlite driver name)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		os.Exit(1)
	}

	sqlm, err := database.NewSQLiteManagerWithDB(db, nil)
	if err != nil {
		db.Close()
		fmt.Printf("Failed to prepare database: %v\n", err)
		os.Exit(1)
	}
	return db, sqlm
}

func RunListEnvelopes(args []string) {
	dbPath := ""
	if len(args) > 0 {
		dbPath = args[0]
	}

	db, sqlm := openEnvelopeStore(dbPath)
	defer sqlm.Close()

	rows, err := db.Query(`SELECT auth_address, address, iv, created_at, updated_at
	                       FROM wallet_envelopes ORDER BY created_at`)
	if err != nil {
		fmt.Printf("Failed to query envelopes: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	fmt.Println("=== Wallet Envelopes ===")
	for rows.Next() {
		var authAddress, address, iv string
		var createdAt, updatedAt int64
		if err := rows.Scan(&authAddress, &address, &iv, &createdAt, &updatedAt); err != nil {
			fmt.Printf("Failed to read envelope: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Auth address: %s\n", authAddress)
		fmt.Printf("Address:      %s\n", address)
		fmt.Printf("IV:           %s\n", iv)
		fmt.Printf("Created:      %s\n", time.Unix(createdAt, 0).Format(time.RFC3339))
		fmt.Printf("Updated:      %s\n", time.Unix(updatedAt, 0).Format(time.RFC3339))
		fmt.Println()
	}
	if err := rows.Err(); err != nil {
		fmt.Printf("Failed to read envelopes: %v\n", err)
		os.Exit(1)
	}

	count, err := sqlm.CountEnvelopes()
	if err != nil {
		fmt.Printf("Failed to count envelopes: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d envelope(s)\n", count)
}

func RunDeleteEnvelope(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: delete-envelope <auth_address> [db_path]")
		os.Exit(1)
	}
	dbPath := ""
	if len(args) > 1 {
		dbPath = args[1]
	}

	_, sqlm := openEnvelopeStore(dbPath)
	defer sqlm.Close()

	if err := sqlm.DeleteEnvelope(args[0]); err != nil {
		fmt.Printf("Failed to delete envelope: %v\n", err)
		os.Exit(1)
	}

	count, err := sqlm.CountEnvelopes()
	if err != nil {
		fmt.Printf("Failed to count envelopes: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted envelope for %s, %d envelope(s) remain\n", args[0], count)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"jsonserve/internal/server"
)

func main() {
	dbPath := os.Getenv("JSONSERVE_ACCESS_LOG_DB")
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}
	if dbPath == "" {
		dbPath = "./data/access.db"
	}
	if _, err := os.Stat(dbPath); err != nil {
		log.Fatalf("access log %s: %v", dbPath, err)
	}

	db, err := server.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' ORDER BY name;`)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	fmt.Println("Tables:")
	for rows.Next() {
		var name string
		_ = rows.Scan(&name)
		fmt.Println(" -", name)
	}
	rows.Close()

	sum, err := server.NewSQLiteAccessLog(db).Summary(context.Background(), 10)
	if err != nil {
		log.Fatalf("summary failed: %v", err)
	}
	fmt.Println("Requests:", sum.Total)
	fmt.Println("Not found:", sum.Misses)
	fmt.Println("Top paths:")
	for _, pc := range sum.Top {
		fmt.Printf(" %6d  /%s\n", pc.Count, pc.Path)
	}
}

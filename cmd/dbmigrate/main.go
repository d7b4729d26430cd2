package main

import (
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/algotrader-go/algotrader/config"
	"github.com/algotrader-go/algotrader/database"
	"github.com/algotrader-go/algotrader/database/repository"
	"github.com/algotrader-go/algotrader/engine"
)

var configFile string

func main() {
	fmt.Println("AlgoTrader database schema tool")
	fmt.Println()

	flag.StringVar(&configFile, "config", config.File, "config file to load")
	flag.Parse()

	conf := config.DefaultConfig()
	if err := conf.ReadConfigFromFile(configFile); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if !conf.Database.Enabled {
		fmt.Println("Database support is disabled")
		os.Exit(1)
	}

	dbm, err := engine.SetupDatabaseConnectionManager(&conf.Database)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	// starting the manager creates any missing tables
	var wg sync.WaitGroup
	if err = dbm.Start(&wg); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	drv := repository.GetSQLDialect()
	if drv == database.DBSQLite3 {
		fmt.Printf("Database file: %s\n", conf.Database.Database)
	} else {
		fmt.Printf("Connected to: %s\n", conf.Database.Host)
	}
	fmt.Println("Schema is up to date")

	if err = dbm.Stop(); err != nil {
		fmt.Println(err)
	}
	wg.Wait()
}

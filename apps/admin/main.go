package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	dig_container "github.com/lccc/gatelog/apps/api/di/dig"
	"github.com/lccc/gatelog/core"
	"github.com/lccc/gatelog/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// start CLI
	cli := commandLine{
		container: dig_container.New(),
		openDB: func() (*sqlx.DB, error) {
			return database.Open(conf)
		},
		out: os.Stdout,
	}
	if err := cli.run(context.Background(), os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

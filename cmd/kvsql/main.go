package main

import (
	"flag"
	"os"
	"time"

	"github.com/kvsql/kvsql/internal/auth"
	"github.com/kvsql/kvsql/internal/conn"
	"github.com/kvsql/kvsql/internal/kv/sortedkv"
	"github.com/kvsql/kvsql/internal/query"
	"github.com/kvsql/kvsql/pkg"
)

func main() {
	cwd, _ := os.Getwd()

	db_write_path := flag.String("db", cwd+"/db.kvsql", "path to save db data")
	in_mem := flag.Bool("m", false, "don't persist db")
	port := flag.Int("port", 7085, "listening port")
	write_interval := flag.Int("i", 1000, "snapshot interval in milliseconds")
	username := flag.String("user", os.Getenv("KVSQL_USER"), "root username")
	password := flag.String("pass", os.Getenv("KVSQL_PASS"), "root password")
	should_log := flag.Bool("log", true, "show logs")
	debug_logs := flag.Bool("dbg", false, "show debug logs")

	flag.Parse()

	if *should_log {
		if *debug_logs {
			pkg.SetLogLevel(pkg.LogLevelDebug)
		} else {
			pkg.SetLogLevel(pkg.LogLevelErrOnly)
		}
	} else {
		pkg.SetLogLevel(pkg.LogLevelNone)
	}

	var store *sortedkv.Store
	if *in_mem {
		store = sortedkv.New()
	} else {
		var err error
		store, err = sortedkv.Open(*db_write_path)
		if err != nil {
			pkg.FatalLog("failed to open db file;", err)
		}
	}

	interval := time.Duration(*write_interval) * time.Millisecond
	if *in_mem {
		interval = 0
	}

	srv := conn.NewServer(query.NewExecutor(store), store, interval)
	if *username != "" {
		srv.AddUser(auth.NewUser(*username, *password))
	}
	srv.Listen(*port)
}

package main

import (
	"flag"
	"fmt"
	"os"

	"blogchat/pkg/logger"
	"blogchat/pkg/store"
)

// Offline inspector for the message log. Opens the pebble store
// directly; do not run against a live server.
func main() {
	var (
		dbPath = flag.String("db", "", "path to the pebble store directory")
		room   = flag.String("room", "offtopic", "room to dump")
		limit  = flag.Int("limit", 50, "number of recent messages")
	)
	flag.Parse()
	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "--db required")
		os.Exit(2)
	}

	logger.Init()
	if err := store.Open(*dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	msgs, err := store.ListRecent(*room, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list messages: %v\n", err)
		os.Exit(1)
	}
	for _, m := range msgs {
		weather := ""
		if m.Weather != "" {
			weather = " [" + m.Weather + "]"
		}
		fmt.Printf("%s  %-20s %s%s\n", m.TS.Format("2006-01-02 15:04:05"), m.Username, m.Content, weather)
	}
	fmt.Printf("-- %d message(s) in %q\n", len(msgs), *room)
}

package main

import (
	"fmt"
	"io"
	"strings"

	"finance-manager/internal/config"

	"github.com/ternarybob/banner"
)

// printBanner writes the startup banner to w (stderr), keeping stdout for
// the menu itself.
func printBanner(w io.Writer, cfg *config.Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 56
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	fmt.Fprintf(w, "\n%s\n", hr)
	fmt.Fprintf(w, "%s  PERSONAL FINANCE MANAGER%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n", hr)

	kvPad := 12
	kvLines := [][2]string{
		{"Environment", cfg.Environment},
		{"Driver", cfg.Database.Driver},
		{"Database", redactDSN(cfg.Database)},
		{"Log level", cfg.Logging.Level},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "%s\n\n", hr)
}

// redactDSN hides the password of a postgres URL.
func redactDSN(db config.DatabaseConfig) string {
	if db.Driver != config.DriverPostgres {
		return db.DSN
	}
	scheme, rest, ok := strings.Cut(db.DSN, "://")
	if !ok {
		return "(postgres)"
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return db.DSN
	}
	user, _, _ := strings.Cut(creds, ":")
	return scheme + "://" + user + ":***@" + host
}

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"kydu/internal/platform/config"
	"kydu/internal/platform/logger"
	"kydu/internal/platform/store/migrate"
)

const usage = `usage: kydu-migrate [-url DSN] <command>

commands:
  up        apply every pending migration
  down N    roll back N migrations
  version   print the applied version
`

func main() {
	fURL := flag.String("url", "", "postgres url (default SERVICE_PGSQL_URL)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	l := logger.Get()

	url := *fURL
	if url == "" {
		url = config.New().Prefix("SERVICE_PGSQL_").MustString("URL")
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "up":
		if err := migrate.Up(url); err != nil {
			l.Fatal().Err(err).Msg("migrate up failed")
		}
		l.Info().Msg("migrations applied")
	case "down":
		if len(args) < 2 {
			flag.Usage()
			os.Exit(2)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			l.Fatal().Str("arg", args[1]).Msg("down needs a step count")
		}
		if err := migrate.Down(url, n); err != nil {
			l.Fatal().Err(err).Msg("migrate down failed")
		}
		l.Info().Int("steps", n).Msg("migrations rolled back")
	case "version":
		v, dirty, ok, err := migrate.Version(url)
		if err != nil {
			l.Fatal().Err(err).Msg("version lookup failed")
		}
		if !ok {
			fmt.Println("none")
			return
		}
		fmt.Printf("%d dirty=%t\n", v, dirty)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// Command game plays one session in the local terminal.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tomz197/orbitclicker/internal/client"
	"github.com/tomz197/orbitclicker/internal/config"
	"github.com/tomz197/orbitclicker/internal/observability"
	"github.com/tomz197/orbitclicker/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults and ORBIT_* env when empty)")
	player := flag.String("player", "0x0000000000000000000000000000000000000000", "player address recorded in the summary")
	logFile := flag.String("log", "orbitclicker.log", "log file; the terminal is used for the game")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg.Logging.Output = *logFile

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	catalogs, err := session.LoadCatalogs(cfg.Game)
	if err != nil {
		logger.Fatal("loading catalogs", zap.Error(err))
	}
	s, err := session.New(session.Options{
		Player:   *player,
		Game:     cfg.Game,
		Catalogs: catalogs,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("creating session", zap.Error(err))
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	c := client.New(s, bufio.NewReader(os.Stdin), os.Stdout, client.Options{Logger: logger})
	runErr := c.Run(ctx)
	cancel()
	<-done
	_ = term.Restore(fd, oldState)

	if runErr != nil {
		logger.Error("client error", zap.Error(runErr))
		fmt.Fprintf(os.Stderr, "game error: %v\n", runErr)
		os.Exit(1)
	}
	printSummary(s.Summary())
}

func printSummary(sum session.Summary) {
	hash, err := sum.Hash()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashing summary: %v\n", err)
		return
	}
	out, _ := json.MarshalIndent(sum, "", "  ")
	fmt.Printf("%s\nhash: %s\n", out, hash)
	if err := sum.Validate(); err != nil {
		fmt.Printf("not provable: %v\n", err)
	}
}

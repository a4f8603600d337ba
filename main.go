package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/abennett/roll/pkg"
	"github.com/abennett/roll/pkg/mcptool"
	"github.com/abennett/roll/pkg/server"
)

var serveCmd = &ffcli.Command{
	Name: "serve",
	Exec: serve,
}

var rollCmd = &ffcli.Command{
	Name:       "roll_remote",
	ShortUsage: "roll_remote <ws://host:port> <room> <username>",
	Exec:       rollRemote,
}

var mcpCmd = &ffcli.Command{
	Name: "serve_mcp",
	Exec: func(ctx context.Context, args []string) error {
		return mcptool.Serve(ctx, pkg.DefaultSource)
	},
}

func serve(ctx context.Context, args []string) error {
	cfg, err := server.ConfigFromEnv()
	if err != nil {
		return err
	}
	srv := server.NewServer()
	srv.DefaultNotation = cfg.DefaultNotation
	mux := server.NewMux(srv)
	slog.Info("serving", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, mux)
}

var diceRollCmd = &ffcli.Command{
	Name: "roll_local",
	Exec: func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			fmt.Println("a roll argument is required")
			return nil
		}
		expr, err := pkg.Parse(args[0])
		if err != nil {
			return err
		}
		result := pkg.Resolve(expr, pkg.DefaultSource)
		for _, term := range result.Terms {
			fmt.Println(term)
		}
		fmt.Printf("%s => %d\n", args[0], result.Total)
		return nil
	},
}

func main() {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(h))
	root := &ffcli.Command{
		ShortUsage: "roll <subcommand>",
		Subcommands: []*ffcli.Command{
			diceRollCmd,
			serveCmd,
			rollCmd,
			mcpCmd,
		},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}

	err := root.ParseAndRun(context.Background(), os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

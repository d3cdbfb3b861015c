package main

import (
	"github.com/matsen/papergraph/internal/config"
	"github.com/matsen/papergraph/internal/logger"
	"github.com/matsen/papergraph/internal/server"
	"github.com/matsen/papergraph/internal/viz"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: listen_addr from config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the graph over HTTP",
	Long: `Replay the library into memory and serve it over HTTP.

Endpoints:
  GET  /                         interactive visualization
  GET  /api/graph                full snapshot
  GET  /api/stats                node and edge counts
  GET  /api/search?q=...         search nodes
  GET  /api/nodes?kind=...       list nodes
  GET  /api/nodes/:id            one node (percent-encode "/")
  GET  /api/nodes/:id/neighbors  adjacent nodes and edges
  GET  /api/export               export JSON
  POST /api/import               replace the graph with an export
  POST /api/papers               add an analyzed paper (appended to papers.jsonl)
  POST /api/reset                clear the in-memory graph
  GET  /metrics                  Prometheus metrics
  GET  /healthcheck              liveness`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	addr := cfg.ListenAddr
	if serveAddr != "" {
		if err := config.ValidateListenAddr(serveAddr); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		addr = serveAddr
	}

	// Requests are logged at info unless --log-level is given.
	level := "info"
	if cmd.Root().PersistentFlags().Changed("log-level") {
		level = logLevel
	}
	log, err := logger.New(cfg.LogMode, level)
	if err != nil {
		exitWithError(ExitConfigError, "creating logger: %v", err)
	}
	defer log.Sync()

	g := buildGraph(mustReadEntries(repoRoot), log)
	stats := g.Stats()
	log.Info("graph loaded", "nodes", stats.Total.Nodes, "edges", stats.Total.Edges)

	srv := server.NewServer(server.RouterConfig{
		Graph:  g,
		Sink:   &jsonlSink{path: config.PapersPath(repoRoot)},
		Logger: log,
		Viz:    viz.DefaultOptions(),
	})
	if err := srv.Run(cmd.Context(), addr); err != nil {
		exitWithError(ExitError, "server: %v", err)
	}
	return nil
}

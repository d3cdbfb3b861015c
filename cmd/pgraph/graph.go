package main

import (
	"fmt"
	"os"

	"github.com/matsen/papergraph/internal/edge"
	"github.com/matsen/papergraph/internal/graph"
	"github.com/spf13/cobra"
)

var (
	nodesKind    string
	exportOutput string
	loadStrict   bool
)

func init() {
	nodesCmd.Flags().StringVarP(&nodesKind, "kind", "k", "", "Node kind: paper, author, topic, keyword, citation (default: all)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: stdout)")
	loadCmd.Flags().BoolVar(&loadStrict, "strict", false, "Exit with a data error when integrity problems are found")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(neighborsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(loadCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search graph nodes by label or abstract",
	Long: `Search the graph for nodes whose label or abstract contains the query,
ignoring case. An empty query lists every node.

Examples:
  pgraph search attention
  pgraph search "neural networks" --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List graph nodes, optionally of one kind",
	Args:  cobra.NoArgs,
	RunE:  runNodes,
}

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <node-id>",
	Short: "List the nodes one edge away from a node",
	Long: `List the nodes connected to a node by an edge in either direction,
along with the connecting edges.

Node ids are the kind plus the label with whitespace runs replaced by "_":
  pgraph neighbors author_Geoffrey_Hinton
  pgraph neighbors paper_1706.03762
  pgraph neighbors topic_Machine_Learning`,
	Args: cobra.ExactArgs(1),
	RunE: runNeighbors,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count graph nodes and edges by kind",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the graph as JSON",
	Long: `Write the whole graph (nodes, edges, metadata) as indented JSON.
The output can be checked with 'pgraph load' or posted to /api/import.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Validate an exported graph and report integrity problems",
	Long: `Import an exported graph into a scratch graph and report dangling
edges, duplicate ids, and malformed edges. The library is not modified.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

// NeighborsResult is the response for the neighbors command.
type NeighborsResult struct {
	Node      string       `json:"node"`
	Neighbors []graph.Node `json:"neighbors"`
	Edges     []edge.Edge  `json:"edges"`
}

// LoadResult is the response for the load command.
type LoadResult struct {
	Status string       `json:"status"` // clean or problems
	Stats  graph.Stats  `json:"stats"`
	Report graph.Report `json:"report"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	g := mustBuildGraph(mustFindRepository())

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	nodes := g.Search(query)
	if nodes == nil {
		nodes = []graph.Node{}
	}

	if humanOutput {
		printNodesHuman(nodes, "No nodes found")
	} else {
		outputJSON(nodes)
	}
	return nil
}

func runNodes(cmd *cobra.Command, args []string) error {
	var kind graph.Kind
	if nodesKind != "" {
		k, err := graph.ParseKind(nodesKind)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		kind = k
	}

	g := mustBuildGraph(mustFindRepository())
	var nodes []graph.Node
	if kind == "" {
		nodes = g.Snapshot().Nodes
	} else {
		nodes = g.FilterByKind(kind)
	}
	if nodes == nil {
		nodes = []graph.Node{}
	}

	if humanOutput {
		printNodesHuman(nodes, "No nodes")
	} else {
		outputJSON(nodes)
	}
	return nil
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	g := mustBuildGraph(mustFindRepository())

	id := args[0]
	if _, ok := g.Node(id); !ok {
		exitWithError(ExitNotFound, "node not found: %s", id)
	}

	result := NeighborsResult{Node: id, Neighbors: g.Neighbors(id), Edges: g.Edges(id)}
	if result.Edges == nil {
		result.Edges = []edge.Edge{}
	}

	if humanOutput {
		fmt.Printf("%s: %d neighbors\n\n", id, len(result.Neighbors))
		printNodesHuman(result.Neighbors, "(none)")
	} else {
		outputJSON(result)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	g := mustBuildGraph(mustFindRepository())
	stats := g.Stats()

	if humanOutput {
		printStatsHuman(stats)
	} else {
		outputJSON(stats)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	g := mustBuildGraph(mustFindRepository())

	data, err := g.Export()
	if err != nil {
		exitWithError(ExitError, "exporting graph: %v", err)
	}

	if exportOutput == "" {
		os.Stdout.Write(append(data, '\n'))
		return nil
	}
	if err := os.WriteFile(exportOutput, append(data, '\n'), 0644); err != nil {
		exitWithError(ExitError, "writing output file: %v", err)
	}
	if humanOutput {
		fmt.Printf("Graph written to %s\n", exportOutput)
	} else {
		outputJSON(StatusResponse{Status: "exported", Path: exportOutput})
	}
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError(ExitError, "reading file: %v", err)
	}

	result, err := loadExport(data)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		printLoadHuman(result)
	} else {
		outputJSON(result)
	}
	if loadStrict && result.Status != "clean" {
		os.Exit(ExitDataError)
	}
	return nil
}

// loadExport imports data into a scratch graph and checks it.
func loadExport(data []byte) (LoadResult, error) {
	g := graph.New(graph.WithLogger(appLog))
	if err := g.Import(data); err != nil {
		return LoadResult{}, err
	}

	report := g.Check()
	status := "clean"
	if !report.Clean() {
		status = "problems"
	}
	return LoadResult{Status: status, Stats: g.Stats(), Report: report}, nil
}

func printLoadHuman(r LoadResult) {
	fmt.Printf("%d nodes, %d edges: %s\n", r.Report.Nodes, r.Report.Edges, r.Status)
	for _, o := range r.Report.OrphanedEdges {
		fmt.Printf("  orphaned edge %s -> %s (%s)\n", o.SourceID, o.TargetID, o.Reason)
	}
	for id, n := range r.Report.DuplicateEdges {
		fmt.Printf("  duplicate edge %s (x%d)\n", id, n)
	}
	for id, n := range r.Report.DuplicateNodes {
		fmt.Printf("  duplicate node %s (x%d)\n", id, n)
	}
	for _, e := range r.Report.InvalidEdges {
		fmt.Printf("  invalid edge %s: %s\n", e.ID, e.Reason)
	}
}

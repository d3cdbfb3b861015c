package viz

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", "grid", or "concentric"
	Title  string // Page title; defaults to "Paper Knowledge Graph"
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Layout: "force"}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid", "concentric"}

// DefaultTitle is used when HTMLOptions.Title is empty.
const DefaultTitle = "Paper Knowledge Graph"

// GenerateHTML generates a self-contained HTML page for the graph.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if err := ValidateLayout(opts.Layout); err != nil {
		return "", err
	}

	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     title,
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
		Empty:     graph.IsEmpty(),
		NodeCount: len(graph.Nodes),
		EdgeCount: len(graph.Edges),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering visualization: %w", err)
	}
	return buf.String(), nil
}

// ValidateLayout checks if the layout option is valid. Empty means force.
func ValidateLayout(layout string) error {
	if layout == "" {
		return nil
	}
	for _, l := range ValidLayouts {
		if layout == l {
			return nil
		}
	}
	return fmt.Errorf("invalid layout %q: must be one of %s", layout, strings.Join(ValidLayouts, ", "))
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	GraphJSON template.JS
	Layout    string
	Empty     bool
	NodeCount int
	EdgeCount int
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle", "grid", "concentric":
		return layout
	default:
		return "cose"
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    * { box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #f5f5f5;
    }
    header {
      display: flex;
      gap: 1em;
      align-items: center;
      padding: 8px 12px;
      background: white;
      border-bottom: 1px solid #ddd;
      font-size: 13px;
    }
    header h1 { font-size: 15px; margin: 0; }
    header .counts { color: #777; }
    #search { margin-left: auto; padding: 4px 8px; width: 240px; }
    #cy { width: 100%; height: calc(100vh - 42px); background: white; }
    .empty-state { text-align: center; color: #666; padding-top: 30vh; }
    .empty-state code { background: #e0e0e0; padding: 2px 6px; border-radius: 3px; }
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 320px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .type { font-size: 10px; text-transform: uppercase; color: #888; margin-bottom: 4px; }
    #tooltip .label { font-weight: bold; margin-bottom: 4px; }
    #tooltip .detail { color: #555; margin: 2px 0; }
    #tooltip .summary { font-style: italic; color: #666; margin-top: 4px; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <span class="counts">{{.NodeCount}} nodes, {{.EdgeCount}} edges</span>
    <input id="search" type="search" placeholder="Highlight nodes by label">
  </header>
{{if .Empty}}
  <div class="empty-state">
    <h2>No graph data</h2>
    <p>Add papers using <code>pgraph add</code>, <code>pgraph add-pdf</code> or <code>pgraph arxiv add</code></p>
  </div>
{{else}}
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = "{{.Layout}}";

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          {
            selector: 'node',
            style: {
              'background-color': 'data(color)',
              'label': 'data(label)',
              'color': '#333',
              'font-size': '9px',
              'text-valign': 'bottom',
              'text-margin-y': '4px',
              'text-max-width': '120px',
              'text-wrap': 'ellipsis',
              'width': 'data(size)',
              'height': 'data(size)'
            }
          },
          { selector: 'node[type="author"]', style: { 'shape': 'ellipse' } },
          { selector: 'node[type="topic"]', style: { 'shape': 'diamond' } },
          { selector: 'node[type="keyword"]', style: { 'shape': 'round-rectangle', 'font-size': '8px' } },
          { selector: 'node[type="citation"]', style: { 'shape': 'triangle' } },
          {
            selector: 'edge',
            style: {
              'line-color': '#B0BEC5',
              'target-arrow-color': '#B0BEC5',
              'target-arrow-shape': 'triangle',
              'curve-style': 'bezier',
              'width': 'mapData(weight, 0, 5, 1, 6)'
            }
          },
          { selector: 'edge[type="authored_by"]', style: { 'line-color': '#4A90D9', 'target-arrow-color': '#4A90D9' } },
          { selector: 'edge[type="contains_topic"]', style: { 'line-color': '#9B59B6', 'target-arrow-color': '#9B59B6' } },
          { selector: 'edge[type="collaborates_with"]', style: { 'line-color': '#27AE60', 'target-arrow-color': '#27AE60' } },
          {
            selector: 'edge[type="similar_to"]',
            style: { 'line-color': '#E8923A', 'target-arrow-color': '#E8923A', 'line-style': 'dashed' }
          },
          { selector: 'edge[type="cites"]', style: { 'line-color': '#7F8C8D', 'target-arrow-color': '#7F8C8D' } },
          { selector: 'node.highlighted', style: { 'border-width': 3, 'border-color': '#ff6b6b' } },
          { selector: 'node.dimmed', style: { 'opacity': 0.25 } },
          { selector: 'edge.dimmed', style: { 'opacity': 0.15 } }
        ],
        layout: {
          name: layout,
          animate: false,
          nodeRepulsion: 9000,
          idealEdgeLength: 90,
          edgeElasticity: 100
        }
      });

      const tooltip = document.getElementById('tooltip');

      function escapeHtml(str) {
        if (str === undefined || str === null) return '';
        return String(str).replace(/&/g, '&amp;')
                          .replace(/</g, '&lt;')
                          .replace(/>/g, '&gt;')
                          .replace(/"/g, '&quot;');
      }

      function nodeTooltip(data) {
        let html = '<div class="type">' + data.type + '</div>';
        html += '<div class="label">' + escapeHtml(data.label) + '</div>';
        if (data.type === 'paper') {
          if (data.authors) html += '<div class="detail">' + escapeHtml(data.authors) + '</div>';
          if (data.year) html += '<div class="detail">Year: ' + data.year + '</div>';
          if (data.category) html += '<div class="detail">Category: ' + escapeHtml(data.category) + '</div>';
          if (data.citations) html += '<div class="detail">Citations: ' + data.citations + '</div>';
          if (data.summary) html += '<div class="summary">' + escapeHtml(data.summary) + '</div>';
        } else if (data.paperCount) {
          html += '<div class="detail">Papers: ' + data.paperCount + '</div>';
        }
        return html;
      }

      function edgeTooltip(data) {
        let html = '<div class="type">' + data.type + '</div>';
        html += '<div class="label">' + escapeHtml(data.source) + ' &rarr; ' + escapeHtml(data.target) + '</div>';
        html += '<div class="detail">Weight: ' + data.weight + '</div>';
        if (data.label) html += '<div class="summary">' + escapeHtml(data.label) + '</div>';
        return html;
      }

      function show(evt, html) {
        tooltip.innerHTML = html;
        tooltip.style.display = 'block';
        const pos = evt.renderedPosition || evt.position;
        tooltip.style.left = (pos.x + 15) + 'px';
        tooltip.style.top = (pos.y + 57) + 'px';
      }

      function hide() { tooltip.style.display = 'none'; }

      function clearMarks() { cy.elements().removeClass('highlighted dimmed'); }

      cy.on('mouseover', 'node', evt => show(evt, nodeTooltip(evt.target.data())));
      cy.on('mouseover', 'edge', evt => show(evt, edgeTooltip(evt.target.data())));
      cy.on('mouseout', 'node, edge', hide);

      cy.on('tap', 'node', function(evt) {
        clearMarks();
        const neighborhood = evt.target.closedNeighborhood();
        neighborhood.nodes().addClass('highlighted');
        cy.elements().not(neighborhood).addClass('dimmed');
      });

      cy.on('tap', function(evt) {
        if (evt.target === cy) clearMarks();
      });

      document.getElementById('search').addEventListener('input', function(evt) {
        clearMarks();
        const q = evt.target.value.trim().toLowerCase();
        if (!q) return;
        const hits = cy.nodes().filter(n => (n.data('label') || '').toLowerCase().includes(q));
        hits.addClass('highlighted');
        cy.elements().not(hits.closedNeighborhood()).addClass('dimmed');
      });
    })();
  </script>
{{end}}
</body>
</html>`

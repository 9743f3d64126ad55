package viewer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"

	sibyl "github.com/sibylscope/sibyl"
)

// Loader produces the current event stream, typically Backend.Load.
// The server calls it per request so a live trace file shows fresh
// events on refresh.
type Loader func() ([]sibyl.Event, error)

// Server exposes a trace over HTTP: raw events, the reconstructed
// tree, stats, and a small HTML page consuming them.
type Server struct {
	loader Loader
	router *mux.Router
}

// NewServer creates a viewer server over the given loader.
func NewServer(loader Loader) *Server {
	s := &Server{loader: loader, router: mux.NewRouter()}
	s.router.HandleFunc("/api/events", s.handleEvents).Methods(http.MethodGet)
	s.router.HandleFunc("/api/tree", s.handleTree).Methods(http.MethodGet)
	s.router.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Serve blocks listening on addr. With openBrowser set it also opens
// the default browser at the viewer page.
func Serve(addr string, loader Loader, openBrowser bool) error {
	s := NewServer(loader)
	if openBrowser {
		go func() {
			if err := browser.OpenURL("http://" + addr + "/"); err != nil {
				fmt.Fprintf(os.Stderr, "viewer: open browser: %v\n", err)
			}
		}()
	}
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.loader()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	events, err := s.loader()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	roots := BuildTree(events)
	if roots == nil {
		roots = []*Node{}
	}
	writeJSON(w, roots)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	events, err := s.loader()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, Summarize(events))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>sibyl trace viewer</title>
<style>
body { font-family: ui-monospace, monospace; margin: 2rem; background: #111; color: #ddd; }
h1 { font-size: 1.1rem; }
ul { list-style: none; padding-left: 1.2rem; border-left: 1px solid #333; }
.type-user { color: #7c7; }
.type-agent { color: #7cc; }
.type-llm { color: #cc7; }
.type-tool { color: #c77; }
.duration { color: #777; }
.details { color: #999; }
#stats { margin-bottom: 1.5rem; color: #aaa; }
</style>
</head>
<body>
<h1>sibyl trace viewer</h1>
<div id="stats"></div>
<div id="tree"></div>
<script>
function detailText(details) {
  const parts = [];
  for (const [k, v] of Object.entries(details || {})) {
    let s = typeof v === "string" ? v : JSON.stringify(v);
    if (s.length > 80) s = s.slice(0, 80) + "...";
    parts.push(k + "=" + s);
  }
  return parts.join(" ");
}
function renderNode(node) {
  const li = document.createElement("li");
  const ev = node.event;
  const label = document.createElement("span");
  label.className = "type-" + ev.type;
  label.textContent = ev.type + "/" + ev.action;
  li.appendChild(label);
  if (node.closer) {
    const d = document.createElement("span");
    d.className = "duration";
    const ms = new Date(node.closer.timestamp) - new Date(ev.timestamp);
    d.textContent = " (" + ms + "ms)";
    li.appendChild(d);
  }
  const det = document.createElement("span");
  det.className = "details";
  det.textContent = " " + detailText(ev.details);
  li.appendChild(det);
  if (node.children && node.children.length) {
    const ul = document.createElement("ul");
    for (const child of node.children) ul.appendChild(renderNode(child));
    li.appendChild(ul);
  }
  return li;
}
async function refresh() {
  const [tree, stats] = await Promise.all([
    fetch("/api/tree").then(r => r.json()),
    fetch("/api/stats").then(r => r.json()),
  ]);
  document.getElementById("stats").textContent =
    stats.total + " events, " + stats.errors + " errors";
  const root = document.createElement("ul");
  for (const node of tree) root.appendChild(renderNode(node));
  const container = document.getElementById("tree");
  container.replaceChildren(root);
}
refresh();
setInterval(refresh, 2000);
</script>
</body>
</html>
`

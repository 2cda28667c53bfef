// ABOUTME: Request handlers for the viewer API: person listing, diagram rendering, and canvas export.
// ABOUTME: Query parameters select traversal policy, generation bound, spouses, and orientation.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/treeline-tools/treeline/canvas"
	"github.com/treeline-tools/treeline/diagram"
	"github.com/treeline-tools/treeline/layout"
	"github.com/treeline-tools/treeline/traverse"
)

// personSummary is the list-endpoint shape for one record.
type personSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BirthDate string `json:"birthDate,omitempty"`
	DeathDate string `json:"deathDate,omitempty"`
	Sex       string `json:"sex,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "instance": s.instanceID})
}

func (s *Server) handlePersons(w http.ResponseWriter, r *http.Request) {
	summaries := make([]personSummary, 0, s.graph.Len())
	for _, id := range s.graph.IDs() {
		p, _ := s.graph.Get(id)
		summaries = append(summaries, personSummary{
			ID:        p.ID,
			Name:      p.Name,
			BirthDate: p.BirthDate,
			DeathDate: p.DeathDate,
			Sex:       p.Sex,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	key := cacheKey("tree", r.URL.RawQuery)
	if body, ok := s.cache.get(key); ok {
		writeJSONBody(w, body)
		return
	}

	d, ok := s.renderDiagram(w, r)
	if !ok {
		return
	}
	body, err := json.Marshal(d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.cache.put(key, body)
	writeJSONBody(w, body)
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	key := cacheKey("canvas", r.URL.RawQuery)
	if body, ok := s.cache.get(key); ok {
		writeJSONBody(w, body)
		return
	}

	d, ok := s.renderDiagram(w, r)
	if !ok {
		return
	}
	body, err := canvas.Marshal(canvas.FromDiagram(d, s.graph))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.cache.put(key, body)
	writeJSONBody(w, body)
}

// renderDiagram runs the full pipeline for one request. On failure it
// writes the error response and returns ok=false.
func (s *Server) renderDiagram(w http.ResponseWriter, r *http.Request) (*diagram.Diagram, bool) {
	q := r.URL.Query()

	rootID := q.Get("root")
	if rootID == "" {
		writeError(w, http.StatusBadRequest, "missing root parameter")
		return nil, false
	}

	policyStr := q.Get("policy")
	if policyStr == "" {
		policyStr = string(traverse.PolicyFull)
	}
	policy, err := traverse.ParsePolicy(policyStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	topts := traverse.Options{IncludeSpouses: q.Get("spouses") != "false"}
	if gens := q.Get("generations"); gens != "" {
		n, err := strconv.Atoi(gens)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid generations %q", gens))
			return nil, false
		}
		topts.MaxGenerations = n
	}

	lopts := layout.DefaultOptions()
	switch q.Get("orientation") {
	case "", string(layout.Vertical):
	case string(layout.Horizontal):
		lopts.Orientation = layout.Horizontal
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid orientation %q", q.Get("orientation")))
		return nil, false
	}

	res, err := traverse.Traverse(s.graph, rootID, policy, topts)
	if err != nil {
		if errors.Is(err, traverse.ErrRootNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}

	positions := layout.Layout(res, policy, lopts)

	d := diagram.Render(s.graph, positions, res.Edges, diagram.Options{
		NodeWidth:   lopts.NodeWidth,
		NodeHeight:  lopts.NodeHeight,
		Spacing:     lopts.Spacing,
		Orientation: lopts.Orientation,
		Metadata: map[string]any{
			"renderId":    uuid.New().String(),
			"root":        rootID,
			"policy":      string(policy),
			"generations": topts.MaxGenerations,
			"orientation": string(lopts.Orientation),
			"renderedAt":  time.Now().UTC().Format(time.RFC3339),
		},
	})
	return d, true
}

func writeJSONBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

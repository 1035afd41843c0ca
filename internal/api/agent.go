package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cartfill/cartfill/internal/types"
)

// Recommender runs the recommendation pipeline over one grocery list. It
// always returns a well-formed result.
type Recommender interface {
	Process(ctx context.Context, filename, groceryText string) types.AgentRecommendationList
}

// AgentHandler implements the agent API handlers
type AgentHandler struct {
	agent   Recommender
	version string
}

// NewAgentHandler creates a new AgentHandler
func NewAgentHandler(agent Recommender, version string) *AgentHandler {
	return &AgentHandler{agent: agent, version: version}
}

// Health returns the health status
func (h *AgentHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Recommend handles POST /api/v1/recommendations. Pipeline failures are not
// errors here: the response is 200 with an empty recommendation list. Only a
// malformed request yields a problem response.
func (h *AgentHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req types.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if strings.TrimSpace(req.GroceryText) == "" {
		WriteProblem(w, r, http.StatusBadRequest, "grocery_text must not be empty")
		return
	}

	result := h.agent.Process(r.Context(), req.Filename, req.GroceryText)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-opsgraph/pkg/intent"
	"github.com/dd0wney/cluso-opsgraph/pkg/logging"
	"github.com/dd0wney/cluso-opsgraph/pkg/retrieval"
)

// handleChat classifies the question, retrieves graph context, and runs the
// generator over the rendered context. The response always includes the
// context so callers can audit the grounding.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, "message is required and must be at most 2000 characters")
		return
	}

	start := time.Now()

	classified := intent.Classify(req.Message)
	scores := intent.Scores(req.Message)
	scoreStrings := make(map[string]float64, len(scores))
	for it, score := range scores {
		scoreStrings[string(it)] = score
	}
	s.metricsRegistry.RecordIntentScores(scoreStrings)

	payload := s.retriever.Retrieve(r.Context(), req.Message, classified)
	contextText := retrieval.Format(payload)

	status := "ok"
	truncated := payloadTruncated(payload)
	if payload.Type == retrieval.PayloadUnavailable {
		status = "unavailable"
	}

	answer, err := s.generator.Generate(r.Context(), req.Message, contextText)
	if err != nil {
		s.logger.Error("generator failed", logging.Error(err), logging.Intent(string(classified)))
		// Degrade to the raw context rather than failing the request.
		answer = contextText
		status = "generator_error"
	}

	elapsed := time.Since(start)
	s.metricsRegistry.RecordQuery(string(classified), status, elapsed, payload.NodesVisited, truncated)

	s.logger.Info("chat handled",
		logging.Intent(string(classified)),
		logging.String("payload_type", string(payload.Type)),
		logging.Latency(elapsed),
	)

	s.respondJSON(w, http.StatusOK, ChatResponse{
		Response: answer,
		Intent:   string(classified),
		Context:  payload,
		Time:     elapsed.String(),
	})
}

func payloadTruncated(payload retrieval.ContextPayload) bool {
	switch payload.Type {
	case retrieval.PayloadFacility:
		return payload.Facility != nil && payload.Facility.Truncated
	case retrieval.PayloadMaintenance:
		return payload.Maintenance != nil && payload.Maintenance.Truncated
	}
	return false
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/queue"
)

// ExecutionRequest is the wire form of one submission.
type ExecutionRequest struct {
	Code      string                  `json:"code"`
	Language  string                  `json:"language"`
	TestCases []engine.TestCase       `json:"testCases"`
	Metadata  engine.FunctionMetadata `json:"metadata"`
}

type Handler struct {
	queueManager *queue.Manager
	// jobBudget bounds how long a caller waits for a queued submission,
	// covering queue time plus execution time.
	jobBudget time.Duration
}

func NewHandler(manager *queue.Manager, jobBudget time.Duration) *Handler {
	return &Handler{
		queueManager: manager,
		jobBudget:    jobBudget,
	}
}

func (h *Handler) Execute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lang, err := engine.ParseLanguage(req.Language)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Code == "" {
		http.Error(w, "code must not be empty", http.StatusBadRequest)
		return
	}
	if len(req.TestCases) == 0 {
		http.Error(w, "testCases must not be empty", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.jobBudget)
	defer cancel()

	resultChan := make(chan *engine.SubmissionResult, 1)
	errChan := make(chan error, 1)

	h.queueManager.Submit(&queue.Job{
		ID: uuid.NewString(),
		Request: &engine.Request{
			Code:      req.Code,
			Language:  lang,
			TestCases: req.TestCases,
			Metadata:  req.Metadata,
		},
		Result: resultChan,
		Err:    errChan,
		Ctx:    ctx,
	})

	select {
	case res := <-resultChan:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	case err := <-errChan:
		if errors.Is(err, engine.ErrUnknownLanguage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
	case <-ctx.Done():
		http.Error(w, "Execution timed out", http.StatusGatewayTimeout)
	}
}

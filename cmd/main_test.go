package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobradar/pipeline-service/internal/model"
)

func TestRunHandler_SurvivesClientDisconnect(t *testing.T) {
	ran := false
	h := runHandler(func(ctx context.Context) *model.PipelineRunResult {
		ran = true
		select {
		case <-ctx.Done():
			t.Errorf("cycle context cancelled: %v", ctx.Err())
		default:
		}
		return &model.PipelineRunResult{RunID: "on-demand"}
	})

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel() // client went away before the cycle started
	req := httptest.NewRequest(http.MethodPost, "/run", nil).WithContext(reqCtx)
	rr := httptest.NewRecorder()

	h(rr, req)

	assert.True(t, ran, "cycle runs despite the dead request")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "on-demand")
}

func TestRunHandler_RejectsNonPost(t *testing.T) {
	h := runHandler(func(context.Context) *model.PipelineRunResult {
		t.Fatal("cycle must not run on GET")
		return nil
	})

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/run", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

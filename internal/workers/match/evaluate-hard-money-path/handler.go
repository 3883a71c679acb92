// internal/workers/match/evaluate-hard-money-path/handler.go
package evaluatehardmoneypath

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/common/metrics"
	"lender-match-engine/internal/match"
)

const (
	TaskType = "evaluate-hard-money-path"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "MATCH_RUN_FAILED").Inc()
		h.failJob(client, job, "MATCH_RUN_FAILED", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	output, err := h.execute(context.Background(), &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "MATCH_RUN_FAILED").Inc()
		h.failJob(client, job, "MATCH_RUN_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

// execute is pure routing: the sections are already evaluated, this task
// only decides how the hard-money tier is presented.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	hm := match.EvaluateHardMoneyPath(
		input.Scenario,
		input.AgencySection.TotalEligible,
		input.NonQMSection.TotalEligible,
		input.HardMoneySection,
	)

	h.logger.Info("hard money path evaluated", map[string]interface{}{
		"routingState":  hm.State,
		"heroMode":      hm.HeroMode,
		"eligibleCount": hm.EligibleCount,
		"triggers":      len(hm.TriggerReasons),
	})

	return &Output{
		HardMoneyEvaluation: hm,
		RoutingState:        hm.State,
		HeroMode:            hm.HeroMode,
		TriggerReasons:      hm.TriggerReasons,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

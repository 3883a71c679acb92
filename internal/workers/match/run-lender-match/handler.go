// internal/workers/match/run-lender-match/handler.go
package runlendermatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/common/metrics"
	"lender-match-engine/internal/match"
)

const (
	TaskType = "run-lender-match"
)

var (
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
	ErrScenarioMissing    = errors.New("SCENARIO_VALIDATION_FAILED")
)

// CatalogProvider yields the lender catalog snapshot a run evaluates
// against. Satisfied by catalog.Repository.
type CatalogProvider interface {
	Snapshot(ctx context.Context) ([]match.LenderProfile, error)
}

type Handler struct {
	config  *Config
	catalog CatalogProvider
	logger  logger.Logger
	now     func() time.Time
}

func NewHandler(config *Config, catalog CatalogProvider, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		catalog: catalog,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:     time.Now,
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
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "SCENARIO_VALIDATION_FAILED").Inc()
		h.failJob(client, job, "SCENARIO_VALIDATION_FAILED", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "MATCH_RUN_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrCatalogUnavailable) {
			errorCode = "CATALOG_UNAVAILABLE"
			retries = 3
		} else if errors.Is(err, ErrScenarioMissing) {
			errorCode = "SCENARIO_VALIDATION_FAILED"
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Scenario == nil {
		return nil, fmt.Errorf("%w: no scenario in job variables", ErrScenarioMissing)
	}

	snapshot, err := h.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	asOf := h.now()
	s := match.Normalize(input.Scenario)
	agency, nonQM, hardMoney := match.RunLenderMatch(s, snapshot, h.config.Engine, asOf)

	metrics.MatchEligibleLenders.WithLabelValues(string(match.LenderConventional)).Observe(float64(agency.TotalEligible))
	metrics.MatchEligibleLenders.WithLabelValues(string(match.LenderNonQM)).Observe(float64(nonQM.TotalEligible))
	metrics.MatchEligibleLenders.WithLabelValues(string(match.LenderHardMoney)).Observe(float64(hardMoney.TotalEligible))

	h.logger.Info("lender match complete", map[string]interface{}{
		"agencyEligible":    agency.TotalEligible,
		"nonQMEligible":     nonQM.TotalEligible,
		"hardMoneyEligible": hardMoney.TotalEligible,
		"completeness":      s.Completeness,
	})

	return &Output{
		Scenario:         s,
		AgencySection:    agency,
		NonQMSection:     nonQM,
		HardMoneySection: hardMoney,

		AgencyOldestConfirmationDays:    agency.OldestConfirmationDays,
		NonQMOldestConfirmationDays:     nonQM.OldestConfirmationDays,
		HardMoneyOldestConfirmationDays: hardMoney.OldestConfirmationDays,
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
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

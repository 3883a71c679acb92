// internal/workers/match/build-decision-record/handler.go
package builddecisionrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lender-match-engine/internal/catalog"
	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/common/metrics"
	"lender-match-engine/internal/match"
)

const (
	TaskType = "build-decision-record"
)

// AuditSink persists sealed decision records. Satisfied by audit.Indexer.
type AuditSink interface {
	IndexRecord(ctx context.Context, record *match.DecisionRecord) error
}

// AeResolver looks up the AE contact for a lender. Satisfied by
// catalog.Repository.
type AeResolver interface {
	GetAeInfo(ctx context.Context, lenderName string, defaults match.Operations) (*catalog.AeInfo, error)
}

// Escalator notifies the scenario desk of hero-mode runs. Satisfied by
// notify.Service.
type Escalator interface {
	SendHeroEscalation(ctx context.Context, record *match.DecisionRecord, ae *catalog.AeInfo) error
}

type Handler struct {
	config    *Config
	audit     AuditSink
	aeLookup  AeResolver
	escalator Escalator
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, audit AuditSink, aeLookup AeResolver, escalator Escalator, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		audit:     audit,
		aeLookup:  aeLookup,
		escalator: escalator,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:       time.Now,
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
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "DECISION_RECORD_BUILD_FAILED").Inc()
		h.failJob(client, job, "DECISION_RECORD_BUILD_FAILED", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "DECISION_RECORD_BUILD_FAILED").Inc()
		h.failJob(client, job, "DECISION_RECORD_BUILD_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

// execute seals the record, then runs the side channels. Audit and
// escalation are best-effort: a sealed record always completes the job even
// when the audit cluster or mail path is down.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	agency := input.AgencySection
	agency.OldestConfirmationDays = ageOrUnknown(input.AgencyOldestConfirmationDays)
	nonQM := input.NonQMSection
	nonQM.OldestConfirmationDays = ageOrUnknown(input.NonQMOldestConfirmationDays)
	hm := input.HardMoneyEvaluation
	hm.Section.OldestConfirmationDays = ageOrUnknown(input.HardMoneyOldestConfirmationDays)

	record := match.BuildDecisionRecord(input.Scenario, agency, nonQM, hm, h.now())
	metrics.MatchRunsTotal.WithLabelValues(string(record.RoutingState)).Inc()

	h.logger.Info("decision record built", map[string]interface{}{
		"recordId":     record.ID,
		"routingState": record.RoutingState,
		"confidence":   record.Confidence.Level,
	})

	if h.audit != nil {
		if err := h.audit.IndexRecord(ctx, &record); err != nil {
			h.logger.Warn("audit indexing failed, record not persisted to audit trail", map[string]interface{}{
				"recordId": record.ID,
				"error":    err,
			})
		}
	}

	if record.RoutingState == match.RoutingHero && h.escalator != nil {
		h.escalateHero(ctx, &record)
	}

	return &Output{
		DecisionRecord: record,
		RecordID:       record.ID,
		RoutingState:   record.RoutingState,
		Confidence:     record.Confidence,
	}, nil
}

func (h *Handler) escalateHero(ctx context.Context, record *match.DecisionRecord) {
	var ae *catalog.AeInfo
	if eligible := record.HardMoney.Section.Eligible; len(eligible) > 0 && h.aeLookup != nil {
		info, err := h.aeLookup.GetAeInfo(ctx, eligible[0].LenderName, match.Operations{})
		if err != nil {
			h.logger.Warn("ae lookup failed for hero escalation", map[string]interface{}{
				"lender": eligible[0].LenderName,
				"error":  err,
			})
		} else {
			ae = info
		}
	}

	if err := h.escalator.SendHeroEscalation(ctx, record, ae); err != nil {
		h.logger.Warn("hero escalation failed", map[string]interface{}{
			"recordId": record.ID,
			"error":    err,
		})
	}
}

func ageOrUnknown(v *int) int {
	if v == nil {
		return -1
	}
	return *v
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

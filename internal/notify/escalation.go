// internal/notify/escalation.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"lender-match-engine/internal/catalog"
	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/common/metrics"
	"lender-match-engine/internal/match"
)

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSPublisher is satisfied by aws.SNSClient.
type SMSPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Config struct {
	Enabled     bool
	FromEmail   string
	DeskEmail   string
	SMSTopicARN string
}

// Service sends out-of-band alerts: hero-mode scenarios to the scenario
// desk by email, stale catalog confirmations to the on-call channel by SMS.
// Alerts are best-effort; a failed send never fails a match run.
type Service struct {
	email  EmailSender
	sms    SMSPublisher
	config *Config
	logger logger.Logger
}

func NewService(email EmailSender, sms SMSPublisher, config *Config, log logger.Logger) *Service {
	return &Service{
		email:  email,
		sms:    sms,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// SendHeroEscalation emails the scenario desk when a run lands in hero mode
// with no conventional or Non-QM path. The body carries the trigger reasons
// and the top hard-money candidates so the desk can act without opening the
// full record.
func (s *Service) SendHeroEscalation(ctx context.Context, record *match.DecisionRecord, ae *catalog.AeInfo) error {
	if !s.config.Enabled || s.email == nil {
		return nil
	}

	subject := fmt.Sprintf("Hero-mode scenario %s — %s, %s",
		record.ID, dollarAmount(record.Scenario.LoanAmount), record.Scenario.PropertyState)
	body := s.heroEmailBody(record, ae)

	input := &ses.SendEmailInput{
		Source: aws.String(s.config.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{s.config.DeskEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	}

	if _, err := s.email.SendEmail(ctx, input); err != nil {
		metrics.EscalationsSent.WithLabelValues("email", "error").Inc()
		return fmt.Errorf("hero escalation email failed for record %s: %w", record.ID, err)
	}

	metrics.EscalationsSent.WithLabelValues("email", "success").Inc()
	s.logger.Info("hero escalation sent", map[string]interface{}{
		"recordId": record.ID,
		"to":       s.config.DeskEmail,
	})
	return nil
}

func (s *Service) heroEmailBody(record *match.DecisionRecord, ae *catalog.AeInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scenario %s routed to hero mode.\n\n", record.ID)
	fmt.Fprintf(&b, "Loan amount: %s\n", dollarAmount(record.Scenario.LoanAmount))
	fmt.Fprintf(&b, "State: %s\n", record.Scenario.PropertyState)
	fmt.Fprintf(&b, "Confidence: %s (%.2f)\n\n", record.Confidence.Level, record.Confidence.Score)

	b.WriteString("Trigger reasons:\n")
	for _, reason := range record.TriggerReasons {
		fmt.Fprintf(&b, "  - %s\n", reason)
	}

	eligible := record.HardMoney.Section.Eligible
	if len(eligible) == 0 {
		b.WriteString("\nNo hard-money lenders matched either. Manual placement required.\n")
	} else {
		b.WriteString("\nHard-money candidates:\n")
		for i, r := range eligible {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "  - %s\n", r.Narrative())
		}
	}

	if ae != nil && ae.Name != "" {
		fmt.Fprintf(&b, "\nAE contact for top candidate: %s", ae.Name)
		if ae.Email != "" {
			fmt.Fprintf(&b, " <%s>", ae.Email)
		}
		if ae.Phone != "" {
			fmt.Fprintf(&b, " %s", ae.Phone)
		}
		if ae.IsOverride {
			b.WriteString(" (branch override)")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// SendStaleCatalogAlert publishes an SMS when a lender's broker-status
// confirmation has aged past the staleness threshold.
func (s *Service) SendStaleCatalogAlert(ctx context.Context, lenderName string, ageDays int) error {
	if !s.config.Enabled || s.sms == nil {
		return nil
	}

	msg := fmt.Sprintf("Catalog stale: %s broker confirmation is %d days old. Re-verify before quoting.", lenderName, ageDays)
	if ageDays < 0 {
		msg = fmt.Sprintf("Catalog stale: %s has no recorded broker confirmation. Re-verify before quoting.", lenderName)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(s.config.SMSTopicARN),
		Message:  aws.String(msg),
	}

	if _, err := s.sms.Publish(ctx, input); err != nil {
		metrics.EscalationsSent.WithLabelValues("sms", "error").Inc()
		return fmt.Errorf("stale catalog alert failed for %s: %w", lenderName, err)
	}

	metrics.EscalationsSent.WithLabelValues("sms", "success").Inc()
	s.logger.Info("stale catalog alert sent", map[string]interface{}{
		"lender":  lenderName,
		"ageDays": ageDays,
	})
	return nil
}

func dollarAmount(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}

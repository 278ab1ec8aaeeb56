// Package dialogue runs the per-turn interaction loop: wait for the wake
// word, listen for a command, interpret it, execute it against the
// scheduler, and speak the result. One turn is one utterance; the
// controller holds no conversation memory across turns beyond the
// session's running/stopped flag.
package dialogue

import (
	"context"
	"io"
	"log/slog"
	"time"

	apperr "github.com/BasedPanda/healthcare-voice-assistant/internal/errors"
	"github.com/BasedPanda/healthcare-voice-assistant/internal/observability"
	"github.com/BasedPanda/healthcare-voice-assistant/internal/profile"
	"github.com/BasedPanda/healthcare-voice-assistant/plugin/nlp/intent"
	"github.com/BasedPanda/healthcare-voice-assistant/plugin/nlp/timeparse"
	"github.com/BasedPanda/healthcare-voice-assistant/server/service/scheduling"
	"github.com/BasedPanda/healthcare-voice-assistant/server/speech"
)

// State is the controller's position inside one turn.
type State string

const (
	StateAwaitingWakeWord State = "awaiting_wake_word"
	StateListening        State = "listening"
	StateInterpreting     State = "interpreting"
	StateExecuting        State = "executing"
	StateResponding       State = "responding"
	StateStopped          State = "stopped"
)

// Controller drives the voice interaction loop.
type Controller struct {
	recognizer speech.Recognizer
	synth      speech.Synthesizer
	classifier *intent.Classifier
	times      timeparse.TimeService
	scheduler  scheduling.Service
	logger     *slog.Logger

	timezone      *time.Location
	speechTimeout time.Duration
	now           func() time.Time

	state State
}

// NewController wires the interaction loop together.
func NewController(
	p *profile.Profile,
	recognizer speech.Recognizer,
	synth speech.Synthesizer,
	times timeparse.TimeService,
	scheduler scheduling.Service,
	logger *slog.Logger,
) *Controller {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		loc = time.Local
	}
	return &Controller{
		recognizer:    recognizer,
		synth:         synth,
		classifier:    intent.NewClassifier(p.WakeWords),
		times:         times,
		scheduler:     scheduler,
		logger:        logger,
		timezone:      loc,
		speechTimeout: time.Duration(p.SpeechTimeout) * time.Second,
		now:           time.Now,
		state:         StateAwaitingWakeWord,
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return c.state
}

// Run executes turns until the user exits, input is exhausted, or the
// context is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	for c.state != StateStopped {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.RunTurn(ctx); err != nil {
			if err == io.EOF {
				c.state = StateStopped
				return nil
			}
			return err
		}
	}
	return nil
}

// RunTurn executes a single interaction turn. Recoverable problems are
// spoken to the user and do not surface as errors; only transport
// failures (closed input, cancelled context) do.
func (c *Controller) RunTurn(ctx context.Context) error {
	tc := observability.NewTurnContext(c.logger)
	ctx = observability.WithTurnContext(ctx, tc)

	utterance, err := c.awaitCommand(ctx, tc)
	if err != nil {
		if apperr.IsCode(err, apperr.ErrCodeTimeout) {
			tc.Debug("listen timed out")
			return c.respond(ctx, tc, msgNoSpeech)
		}
		return err
	}

	c.state = StateInterpreting
	it := c.classifier.Classify(utterance)
	tc.Info("utterance classified",
		slog.String(observability.LogFieldIntent, string(it.Kind)),
		slog.Int(observability.LogFieldUtteranceLen, len(utterance)))

	c.state = StateExecuting
	response := c.execute(ctx, tc, it)

	err = c.respond(ctx, tc, response)
	tc.Info("turn complete",
		slog.String(observability.LogFieldIntent, string(it.Kind)),
		slog.Int64(observability.LogFieldDuration, tc.DurationMs()))
	return err
}

// awaitCommand listens until an utterance carrying the wake word arrives,
// then returns the command text with the wake word stripped. An utterance
// that is entirely the wake word triggers a greeting and a second listen.
func (c *Controller) awaitCommand(ctx context.Context, tc *observability.TurnContext) (string, error) {
	c.state = StateAwaitingWakeWord
	for {
		utterance, err := c.recognizer.Listen(ctx, c.speechTimeout)
		if err != nil {
			return "", err
		}

		rest, woken := c.classifier.StripWakeWord(utterance)
		if !woken {
			tc.Debug("no wake word, ignoring utterance")
			continue
		}
		if rest != "" {
			return rest, nil
		}

		// Bare wake word: greet, then listen for the command itself.
		c.state = StateListening
		if err := c.synth.Speak(ctx, msgGreeting); err != nil {
			return "", err
		}
		command, err := c.recognizer.Listen(ctx, c.speechTimeout)
		if err != nil {
			return "", err
		}
		return command, nil
	}
}

// execute dispatches the classified intent and builds the spoken response.
func (c *Controller) execute(ctx context.Context, tc *observability.TurnContext, it intent.Intent) string {
	switch it.Kind {
	case intent.KindSchedule:
		return c.executeSchedule(ctx, tc, it)
	case intent.KindCheck:
		return c.executeCheck(ctx, tc, it)
	case intent.KindCancel:
		return c.executeCancel(ctx, tc, it)
	case intent.KindExit:
		c.state = StateStopped
		return msgGoodbye
	case intent.KindUnknown:
		return msgUnknownCommand
	default:
		return msgUnknownCommand
	}
}

func (c *Controller) executeSchedule(ctx context.Context, tc *observability.TurnContext, it intent.Intent) string {
	if it.TemporalPhrase == "" {
		return "When would you like the appointment? For example, 'tomorrow at 2 PM'."
	}

	start, err := c.times.Resolve(ctx, it.TemporalPhrase, c.now().In(c.timezone))
	if err != nil {
		c.logFailure(tc, "time resolution failed", err)
		return failureMessage(err, nil, c.timezone)
	}

	result, err := c.scheduler.Schedule(ctx, start, it.Doctor, "")
	if err != nil {
		c.logFailure(tc, "booking rejected", err)
		var alternatives []scheduling.Slot
		if result != nil {
			alternatives = result.Alternatives
		}
		return failureMessage(err, alternatives, c.timezone)
	}

	return scheduledMessage(result.Appointment, c.timezone)
}

func (c *Controller) executeCheck(ctx context.Context, tc *observability.TurnContext, it intent.Intent) string {
	r, err := c.times.ResolveRange(ctx, it.TemporalPhrase, c.now().In(c.timezone))
	if err != nil {
		c.logFailure(tc, "range resolution failed", err)
		return failureMessage(err, nil, c.timezone)
	}

	appointments, err := c.scheduler.ListRange(ctx, r.Start, r.End)
	if err != nil {
		c.logFailure(tc, "list failed", err)
		return failureMessage(err, nil, c.timezone)
	}

	return listMessage(appointments, c.timezone)
}

func (c *Controller) executeCancel(ctx context.Context, tc *observability.TurnContext, it intent.Intent) string {
	if it.TemporalPhrase == "" {
		return "Which appointment should I cancel? Tell me its date and time."
	}

	target, err := c.times.Resolve(ctx, it.TemporalPhrase, c.now().In(c.timezone))
	if err != nil {
		c.logFailure(tc, "time resolution failed", err)
		return failureMessage(err, nil, c.timezone)
	}

	cancelled, err := c.scheduler.Cancel(ctx, target)
	if err != nil {
		c.logFailure(tc, "cancel failed", err)
		return failureMessage(err, nil, c.timezone)
	}

	return cancelledMessage(cancelled, c.timezone)
}

func (c *Controller) respond(ctx context.Context, tc *observability.TurnContext, text string) error {
	if c.state != StateStopped {
		c.state = StateResponding
	}
	if err := c.synth.Speak(ctx, text); err != nil {
		return err
	}
	if c.state != StateStopped {
		c.state = StateAwaitingWakeWord
	}
	return nil
}

func (c *Controller) logFailure(tc *observability.TurnContext, msg string, err error) {
	tc.Warn(msg,
		slog.String(observability.LogFieldErrorCode,
			string(apperr.GetCodeFromError(err, apperr.ErrCodePersistenceFailure))),
		slog.String("error", err.Error()))
}

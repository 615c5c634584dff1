package policy

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"housesim/pkg/market"
	"housesim/pkg/providers"
)

const llmSystemDescription = `You are a buyer in a housing market game. Houses are revealed to you one at a time, each with a quality score on a 1-10 scale. For each offer you must decide to ACCEPT or REJECT. A rejected house is gone forever; you will never see it again. If you accept, the game ends for you and you keep that house. Your goal is to end up with the highest-quality house you can.`

const llmDecisionTemplate = `%s

It is round %d of at most %d. After this round %d rounds remain.
The market started with %d buyers and %d houses. Right now %d buyers are still searching and %d houses are still available.

Houses you have already seen and rejected (quality scores): %s

The house on offer now has quality %.2f.

Do you take it? Briefly think step by step, then give your decision after the string "ANSWER" like so: ANSWER: ACCEPT or ANSWER: REJECT`

var llmAnswerRe = regexp.MustCompile(`(?i)ANSWER:\s*(ACCEPT|REJECT)`)

// LLM delegates the accept/reject decision to a completion model. Any
// failure (transport error, missing or malformed answer) resolves to
// reject: the engine's decision contract is a plain bool, and a lost
// round models hesitation better than aborting the run.
type LLM struct {
	Client  providers.Completer
	Model   string
	Timeout time.Duration

	logger *log.Logger
}

type LLMOption func(*LLM)

func WithLLMLogger(logger *log.Logger) LLMOption {
	return func(p *LLM) {
		p.logger = logger
	}
}

func WithLLMTimeout(timeout time.Duration) LLMOption {
	return func(p *LLM) {
		p.Timeout = timeout
	}
}

func NewLLM(client providers.Completer, model string, opts ...LLMOption) *LLM {
	p := &LLM{
		Client:  client,
		Model:   model,
		Timeout: 30 * time.Second,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *LLM) ShouldAccept(offer market.House, seen []market.House, ctx Context) bool {
	prompt := fmt.Sprintf(llmDecisionTemplate,
		llmSystemDescription,
		ctx.TotalRounds-ctx.RoundsLeft,
		ctx.TotalRounds,
		ctx.RoundsLeft,
		ctx.TotalAgents,
		ctx.TotalHouses,
		ctx.AgentsLeft,
		ctx.HousesLeft,
		formatSeenQualities(seen),
		offer.Quality,
	)

	callCtx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()

	response, err := p.Client.Complete(callCtx, p.Model, prompt)
	if err != nil {
		p.logger.Warn("completion failed, rejecting offer", "model", p.Model, "err", err)
		return false
	}

	decision, err := parseDecision(response)
	if err != nil {
		p.logger.Warn("unparseable decision, rejecting offer", "model", p.Model, "err", err)
		return false
	}
	return decision
}

func (*LLM) Reset() {}

func parseDecision(response string) (bool, error) {
	matches := llmAnswerRe.FindStringSubmatch(response)
	if len(matches) < 2 {
		return false, fmt.Errorf("no ANSWER found in response: %s", response)
	}
	return strings.EqualFold(matches[1], "ACCEPT"), nil
}

func formatSeenQualities(seen []market.House) string {
	if len(seen) == 0 {
		return "none yet, this is your first offer"
	}
	qualities := make([]string, 0, len(seen))
	for _, house := range seen {
		qualities = append(qualities, fmt.Sprintf("%.2f", house.Quality))
	}
	return strings.Join(qualities, ", ")
}

// Package engine orchestrates one NPC dialogue turn: drift detection,
// emotion analysis, memory recall, persistence, and response composition,
// sequenced as an explicit state machine.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/npcforge/dialogue-engine/internal/perception"
	"github.com/npcforge/dialogue-engine/internal/services"
	"github.com/npcforge/dialogue-engine/internal/session"
	"github.com/npcforge/dialogue-engine/internal/storage"
	"github.com/npcforge/dialogue-engine/pkg/chat"
	"github.com/npcforge/dialogue-engine/pkg/game"
	"github.com/npcforge/dialogue-engine/pkg/memory"
	"github.com/npcforge/dialogue-engine/pkg/prompts"
	"github.com/npcforge/dialogue-engine/pkg/textfilter"
)

// Options tunes the engine. Zero values fall back to defaults.
type Options struct {
	// DriftThreshold gates re-analysis; requests may override per turn.
	DriftThreshold float64

	// RankLimit caps how many memories a turn recalls.
	RankLimit int

	// DefaultContext fills in game-context fields the caller omits.
	DefaultContext game.Context

	// ContentRating softens answers for family-friendly deployments.
	// Empty or mature ratings leave answers untouched.
	ContentRating string
}

// Engine runs dialogue turns. Turns for different sessions run fully in
// parallel; turns for the same session are serialized because the
// perception components read-modify-write session state.
type Engine struct {
	detector *perception.DriftDetector
	analyzer *perception.EmotionAnalyzer
	memories storage.MemoryStore
	embedder services.Embedder
	composer services.Composer
	sessions session.Store
	locker   *session.Locker
	filter   *textfilter.Filter
	opts     Options
	logger   *slog.Logger
}

// New creates a turn engine.
func New(
	embedder services.Embedder,
	classifier services.Classifier,
	composer services.Composer,
	sessions session.Store,
	memories storage.MemoryStore,
	opts Options,
	logger *slog.Logger,
) *Engine {
	if opts.DriftThreshold == 0 {
		opts.DriftThreshold = perception.DefaultDriftThreshold
	}
	if opts.RankLimit <= 0 {
		opts.RankLimit = memory.DefaultRankLimit
	}

	return &Engine{
		detector: perception.NewDriftDetector(embedder, sessions, logger),
		analyzer: perception.NewEmotionAnalyzer(classifier, sessions, logger),
		memories: memories,
		embedder: embedder,
		composer: composer,
		sessions: sessions,
		locker:   session.NewLocker(),
		filter:   textfilter.NewFilter(opts.ContentRating),
		opts:     opts,
		logger:   logger,
	}
}

// Run executes one turn. A failed stage aborts the whole turn: no partial
// response is returned, and session state already committed by earlier
// stages stays committed (callers retry the whole turn). The same applies
// when ctx is cancelled mid-turn.
func (e *Engine) Run(ctx context.Context, req chat.TurnRequest) (*chat.TurnResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid turn request: %w", err)
	}
	if req.PlayerID == "" {
		req.PlayerID = memory.NewPlayerID()
	}

	t := &Turn{
		Req:        req,
		SessionKey: req.SessionKey(),
	}

	e.locker.Lock(t.SessionKey)
	defer e.locker.Unlock(t.SessionKey)

	handlers := map[stage]func(context.Context, *Turn) error{
		stageDetectDrift:     e.detectDrift,
		stageAnalyzeEmotion:  e.analyzeEmotion,
		stageSearchMemory:    e.searchMemory,
		stagePersistMemory:   e.persistMemory,
		stageComposeResponse: e.composeResponse,
	}

	for st := stageDetectDrift; st != stageDone; st = next(st, t) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("turn cancelled at stage %s (session %s): %w", st, t.SessionKey, err)
		}
		if err := handlers[st](ctx, t); err != nil {
			return nil, fmt.Errorf("stage %s failed (session %s): %w", st, t.SessionKey, err)
		}
	}

	e.logger.Debug("Turn complete",
		"session", t.SessionKey,
		"drift", t.Drift,
		"memories", len(t.Memories))

	return &chat.TurnResponse{
		PlayerID:     t.Req.PlayerID,
		Answer:       t.Answer,
		ContextDrift: t.Drift,
		Emotion:      t.Emotion,
		Memories:     t.Memories,
	}, nil
}

// EndSession discards the session's prior drift/emotion state.
func (e *Engine) EndSession(ctx context.Context, playerID, npcName string) error {
	req := chat.TurnRequest{PlayerID: playerID, NPCName: npcName}
	key := req.SessionKey()

	e.locker.Lock(key)
	defer e.locker.Unlock(key)

	return e.sessions.Delete(ctx, key)
}

func (e *Engine) detectDrift(ctx context.Context, t *Turn) error {
	t.Context = t.Req.Context.Merge(e.opts.DefaultContext)

	threshold := e.opts.DriftThreshold
	if t.Req.DriftThreshold != nil {
		threshold = *t.Req.DriftThreshold
	}

	drifted, err := e.detector.Detect(ctx, t.SessionKey, t.Context, threshold)
	if err != nil {
		return err
	}
	t.Drift = drifted
	return nil
}

func (e *Engine) analyzeEmotion(ctx context.Context, t *Turn) error {
	result, err := e.analyzer.Analyze(ctx, t.SessionKey, t.Req.Message)
	if err != nil {
		return err
	}
	t.Emotion = &result
	return nil
}

func (e *Engine) searchMemory(ctx context.Context, t *Turn) error {
	query, err := e.embedder.Embed(ctx, e.queryText(t))
	if err != nil {
		return err
	}

	history, err := e.memories.FindByPlayer(ctx, t.Req.PlayerID)
	if err != nil {
		return err
	}

	ranked, err := memory.Rank(query, history, e.opts.RankLimit)
	if err != nil {
		return err
	}
	t.Memories = ranked
	return nil
}

// persistMemory writes one record for the turn's utterance. It runs on
// both branches: even a stable-context turn is worth remembering.
func (e *Engine) persistMemory(ctx context.Context, t *Turn) error {
	embedding, err := e.embedder.Embed(ctx, e.queryText(t))
	if err != nil {
		return err
	}

	rec := memory.NewRecord(t.Req.PlayerID, t.Req.Message, embedding)
	if _, err := e.memories.Create(ctx, rec); err != nil {
		return err
	}
	return nil
}

func (e *Engine) composeResponse(ctx context.Context, t *Turn) error {
	emotionText := ""
	if t.Emotion != nil {
		emotionText = prompts.FormatEmotion(t.Emotion.PromptContext())
	}

	texts := make([]string, len(t.Memories))
	for i, m := range t.Memories {
		texts[i] = m.Text
	}

	messages, err := prompts.New().
		WithNPC(t.Req.NPCName, t.Req.NPCDescription).
		WithContext(t.Context.Serialize()).
		WithEmotion(emotionText).
		WithMemories(texts).
		WithUtterance(t.Req.Message).
		Build()
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrComposition, err)
	}

	raw, err := e.composer.Respond(ctx, messages)
	if err != nil {
		return err
	}

	if monologue := prompts.ParseMonologue(raw); monologue != "" {
		e.logger.Debug("NPC inner monologue", "session", t.SessionKey, "monologue", monologue)
	}

	answer := prompts.ParseAnswer(raw)
	if answer == "" {
		return fmt.Errorf("%w: empty answer", services.ErrComposition)
	}
	if e.filter.Active() && e.filter.Contains(answer) {
		e.logger.Debug("Filtered NPC answer for content rating", "session", t.SessionKey)
		answer = e.filter.Apply(answer)
	}
	t.Answer = answer
	return nil
}

// queryText builds the composite text embedded for memory search and
// persistence: situation plus utterance, with the emotion label when one
// was detected this turn.
func (e *Engine) queryText(t *Turn) string {
	label := ""
	if t.Emotion != nil {
		label = t.Emotion.Detected
	}
	return fmt.Sprintf("location: %s quest: %s emotion: %s text: %s",
		t.Context.Location, t.Context.Quest, label, t.Req.Message)
}

package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/mind-chat/backend/internal/analysis/stats"
	"github.com/zhouzirui/mind-chat/backend/internal/model/chat"
	"github.com/zhouzirui/mind-chat/backend/internal/model/journal"
	"github.com/zhouzirui/mind-chat/backend/internal/model/locale"
	"github.com/zhouzirui/mind-chat/backend/internal/model/mood"
	"github.com/zhouzirui/mind-chat/backend/internal/service/ai"
	"github.com/zhouzirui/mind-chat/backend/internal/service/emotion"
	moodservice "github.com/zhouzirui/mind-chat/backend/internal/service/mood"
	"github.com/zhouzirui/mind-chat/backend/internal/service/quota"
	"github.com/zhouzirui/mind-chat/backend/internal/storage"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrEmptyNote    = errors.New("content is required")
	ErrInvalidDate  = errors.New("date must be formatted as YYYY-MM-DD")
)

// IsValidation reports whether err was caused by bad client input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrEmptyNote) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, mood.ErrInvalidPair) ||
		errors.Is(err, mood.ErrInvalidDate)
}

// Deps wires the collaborators of Service.
type Deps struct {
	Chats      storage.ChatLog
	Notes      storage.Notes
	Moods      *moodservice.Service
	Guard      *quota.Guard
	Windower   ai.Windower
	Dispatcher *ai.Dispatcher
	Classifier *emotion.Classifier
	// ModelID overrides the client's default model for chat turns.
	ModelID string
	Logger  *zap.Logger
	Now     func() time.Time
}

// Service 编排聊天、日记和情绪三条用户流程。
type Service struct {
	chats      storage.ChatLog
	notes      storage.Notes
	moods      *moodservice.Service
	guard      *quota.Guard
	windower   ai.Windower
	dispatcher *ai.Dispatcher
	classifier *emotion.Classifier
	modelID    string
	logger     *zap.Logger
	now        func() time.Time
}

// NewService builds the orchestrator.
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		chats:      d.Chats,
		notes:      d.Notes,
		moods:      d.Moods,
		guard:      d.Guard,
		windower:   d.Windower,
		dispatcher: d.Dispatcher,
		classifier: d.Classifier,
		modelID:    d.ModelID,
		logger:     d.Logger.Named("companion"),
		now:        d.Now,
	}
}

// ChatReply is the outcome of one chat message. Text is empty when the
// message was suppressed by the daily quota.
type ChatReply struct {
	Text     string
	Decision quota.Decision
}

// Suppressed reports whether the message got no reply at all.
func (r ChatReply) Suppressed() bool { return r.Decision == quota.Suppress }

// SendChatMessage runs quota, windowing and dispatch, then appends the turn
// to the chat log. The user's lock is held for the whole flow.
func (s *Service) SendChatMessage(ctx context.Context, userID, message, lang string) (ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return ChatReply{}, ErrEmptyMessage
	}

	unlock := s.guard.Lock(userID)
	defer unlock()

	verdict, err := s.guard.Check(ctx, userID)
	if err != nil {
		return ChatReply{}, fmt.Errorf("check quota: %w", err)
	}
	switch verdict.Decision {
	case quota.WarnOnce:
		// 警告也记入聊天日志，计数越过上限后其他进程同样会判定为 Suppress
		if err := s.record(ctx, userID, message, verdict.Text); err != nil {
			return ChatReply{}, err
		}
		return ChatReply{Text: verdict.Text, Decision: quota.WarnOnce}, nil
	case quota.Suppress:
		s.logger.Debug("message suppressed", zap.String("user", userID), zap.Int("count", verdict.Count))
		return ChatReply{Decision: quota.Suppress}, nil
	}

	reply, err := s.converse(ctx, userID, message, locale.Normalize(lang))
	if err != nil {
		return ChatReply{}, err
	}
	return ChatReply{Text: reply, Decision: quota.Allow}, nil
}

// converse dispatches message with recent history and persists the turn.
func (s *Service) converse(ctx context.Context, userID, message string, lang locale.Lang) (string, error) {
	var history []chat.Exchange
	if userID != chat.GuestUser {
		var err error
		history, err = s.chats.ListChatHistory(ctx, userID, s.windower.Size())
		if err != nil {
			return "", fmt.Errorf("load chat history: %w", err)
		}
	}

	turns := s.windower.Build(history, message, string(lang))
	// A dispatched call outlives the client; the client's timeout still bounds it.
	reply := s.dispatcher.Send(context.WithoutCancel(ctx), turns, s.modelID, ai.EndUserTag(userID))

	if err := s.record(ctx, userID, message, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// record appends one exchange. It is stored even if the client went away.
func (s *Service) record(ctx context.Context, userID, message, response string) error {
	exchange := &chat.Exchange{
		UserID:    userID,
		Message:   message,
		Response:  response,
		Timestamp: s.now().UTC(),
	}
	if err := s.chats.AppendChatExchange(context.WithoutCancel(ctx), exchange); err != nil {
		return fmt.Errorf("save chat log: %w", err)
	}
	return nil
}

// NoteResult is the outcome of SaveNoteAndClassify. Mood is nil unless a
// valid mood was extracted and stored.
type NoteResult struct {
	Note           journal.Note    `json:"note"`
	Mood           *mood.Record    `json:"mood,omitempty"`
	Classification emotion.Outcome `json:"-"`
	Reply          string          `json:"reply"`
}

// SaveNoteAndClassify stores the note first, then tries to tag the day with a
// mood. Only the note save can fail the call.
func (s *Service) SaveNoteAndClassify(ctx context.Context, userID, content, date string) (NoteResult, error) {
	if strings.TrimSpace(content) == "" {
		return NoteResult{}, ErrEmptyNote
	}
	now := s.now().UTC()
	day, err := s.parseDate(date, now)
	if err != nil {
		return NoteResult{}, err
	}

	note := journal.Note{
		UserID:    userID,
		Content:   content,
		Date:      day.Format(journal.DateLayout),
		Timestamp: now,
	}
	if err := s.notes.SaveNote(ctx, &note); err != nil {
		return NoteResult{}, fmt.Errorf("save note: %w", err)
	}

	result := NoteResult{Note: note}
	verdict := s.classifier.Classify(ctx, content)
	result.Classification = verdict.Outcome

	switch verdict.Outcome {
	case emotion.ServiceError:
		result.Reply = noteReplyFailed
		return result, nil
	case emotion.Invalid:
		result.Reply = noteReplyUnclassified
		return result, nil
	}

	rec, err := s.moods.Upsert(ctx, mood.KeyFor(userID, day), string(verdict.Pair.Main), string(verdict.Pair.Sub), locale.Default)
	if err != nil {
		s.logger.Error("mood save after note failed",
			zap.String("user", userID),
			zap.String("note", note.ID),
			zap.Error(err),
		)
		result.Reply = noteReplyFailed
		return result, nil
	}

	result.Mood = &rec
	result.Reply = fmt.Sprintf(noteReplySavedFormat, rec.Main, rec.Sub, note.Date)
	return result, nil
}

// MoodInput is a mood picked by the user. A zero date means today (UTC).
type MoodInput struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Main  string `json:"main"`
	Sub   string `json:"sub"`
}

// MoodResult is the stored mood plus the companion's reply to it. Reply is
// empty when the daily chat quota suppressed the reply turn.
type MoodResult struct {
	Mood     mood.Record    `json:"mood"`
	Reply    string         `json:"reply"`
	Decision quota.Decision `json:"-"`
}

// SaveMoodDirect upserts the mood, then tells the model about it in the
// user's language and logs that exchange like any chat turn. The mood is
// always saved; the reply turn counts against the daily chat quota.
func (s *Service) SaveMoodDirect(ctx context.Context, userID string, in MoodInput, lang string) (MoodResult, error) {
	l := locale.Normalize(lang)
	key := mood.Key{UserID: userID, Year: in.Year, Month: in.Month, Day: in.Day}
	if in.Year == 0 && in.Month == 0 && in.Day == 0 {
		key = mood.KeyFor(userID, s.now())
	}

	unlock := s.guard.Lock(userID)
	defer unlock()

	rec, err := s.moods.Upsert(ctx, key, in.Main, in.Sub, l)
	if err != nil {
		return MoodResult{}, err
	}

	verdict, err := s.guard.Check(ctx, userID)
	if err != nil {
		return MoodResult{}, fmt.Errorf("check quota: %w", err)
	}
	message := moodMessage(rec.Pair(), l)
	switch verdict.Decision {
	case quota.WarnOnce:
		if err := s.record(ctx, userID, message, verdict.Text); err != nil {
			return MoodResult{}, err
		}
		return MoodResult{Mood: rec, Reply: verdict.Text, Decision: quota.WarnOnce}, nil
	case quota.Suppress:
		return MoodResult{Mood: rec, Decision: quota.Suppress}, nil
	}

	reply, err := s.converse(ctx, userID, message, l)
	if err != nil {
		return MoodResult{}, err
	}
	return MoodResult{Mood: rec, Reply: reply, Decision: quota.Allow}, nil
}

// GetStatistics aggregates every mood record of the user.
func (s *Service) GetStatistics(ctx context.Context, userID string) (stats.Stats, error) {
	records, err := s.moods.All(ctx, userID)
	if err != nil {
		return stats.Stats{}, err
	}
	return stats.Aggregate(records), nil
}

// ChatHistory returns the user's whole chat log, oldest first. The shared
// guest log is never served.
func (s *Service) ChatHistory(ctx context.Context, userID string) ([]chat.Exchange, error) {
	if userID == chat.GuestUser {
		return []chat.Exchange{}, nil
	}
	history, err := s.chats.ListChatHistory(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	return history, nil
}

// Notes lists the user's notes, optionally only those of one date.
func (s *Service) Notes(ctx context.Context, userID, date string) ([]journal.Note, error) {
	if date != "" {
		day, err := s.parseDate(date, s.now())
		if err != nil {
			return nil, err
		}
		date = day.Format(journal.DateLayout)
	}
	notes, err := s.notes.ListNotes(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// MoodsByMonth lists one month of moods.
func (s *Service) MoodsByMonth(ctx context.Context, userID string, year, month int) ([]mood.Record, error) {
	return s.moods.ByMonth(ctx, userID, year, month)
}

// AllMoods lists every mood of the user.
func (s *Service) AllMoods(ctx context.Context, userID string) ([]mood.Record, error) {
	return s.moods.All(ctx, userID)
}

func (s *Service) parseDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return quota.StartOfDay(now), nil
	}
	day, err := time.ParseInLocation(journal.DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return day, nil
}

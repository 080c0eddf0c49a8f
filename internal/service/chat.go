package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"assistant/internal/model"
	"assistant/internal/utils"
)

// DocumentStore is the retrieval collaborator boundary. Calls may
// block on I/O and are treated as fallible, bounded-latency calls;
// retries belong to the transport layer, not here.
type DocumentStore interface {
	SearchDocuments(ctx context.Context, embedding []float32, query string, topK int) ([]model.RetrievedDocument, error)
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
	LogConversation(ctx context.Context, sessionID, query string, intent string, slots map[string]string, status string, tookMs int) error
	LogFeedback(ctx context.Context, sessionID string, messageID int64, action string) error
}

// ChatService orchestrates one conversational turn: classification,
// slot filling, the deterministic pricing/capacity gate, retrieval,
// relevance filtering, answer generation and follow-up suggestions.
type ChatService struct {
	sessions    *SessionRegistry
	router      *IntentRouter
	pricing     *PricingQueryHandler
	capacity    *CapacityHandler
	recommender *RecommendationEngine
	filter      *DocumentRelevanceFilter
	cleaner     *AnswerCleaner
	store       DocumentStore    // may be nil
	ai          CompletionClient // may be nil
	topK        int
}

// NewChatService wires the per-turn pipeline
func NewChatService(
	sessions *SessionRegistry,
	router *IntentRouter,
	pricing *PricingQueryHandler,
	capacity *CapacityHandler,
	recommender *RecommendationEngine,
	filter *DocumentRelevanceFilter,
	cleaner *AnswerCleaner,
	store DocumentStore,
	ai CompletionClient,
	topK int,
) *ChatService {
	if topK <= 0 {
		topK = 5
	}
	return &ChatService{
		sessions:    sessions,
		router:      router,
		pricing:     pricing,
		capacity:    capacity,
		recommender: recommender,
		filter:      filter,
		cleaner:     cleaner,
		store:       store,
		ai:          ai,
		topK:        topK,
	}
}

// ChatEventCallback receives streaming pipeline events
type ChatEventCallback func(event string, data any) error

// Chat processes one turn and returns the structured response
func (s *ChatService) Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	return s.chat(ctx, req, nil)
}

// ChatStream processes one turn, emitting pipeline events along the way
func (s *ChatService) ChatStream(ctx context.Context, req *model.ChatRequest, callback ChatEventCallback) (*model.ChatResponse, error) {
	return s.chat(ctx, req, callback)
}

func (s *ChatService) chat(ctx context.Context, req *model.ChatRequest, callback ChatEventCallback) (*model.ChatResponse, error) {
	startTime := time.Now()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("s-%d", time.Now().UnixNano())
	}

	session := s.sessions.GetOrCreate(sessionID)
	session.Lock()
	defer session.Unlock()

	history := session.History()
	intent := s.router.Classify(ctx, req.Message, history)
	s.emit(callback, "intent", map[string]any{"intent": intent})

	slots := session.Slots()
	extracted := slots.ExtractSlots(ctx, req.Message, intent)
	slots.UpdateSlots(extracted)
	if v, ok := extracted[SlotCottageNumber]; ok {
		session.Tracker().RecordCottage(atoiOrZero(v))
	}

	// a bare follow-up that only supplies slot values resumes the
	// calculation still waiting on them
	if pending := session.PendingIntent(); pending.IsSpecificCalculation() &&
		!intent.IsSpecificCalculation() && len(extracted) > 0 {
		intent = pending
	}

	session.Tracker().Record(intent)
	s.emit(callback, "slots", slots.Values())

	resp := &model.ChatResponse{
		SessionID: sessionID,
		Intent:    intent,
		Status:    model.StatusOK,
		Slots:     slots.Values(),
		Timestamp: time.Now(),
	}

	switch {
	case intent == model.IntentGreeting:
		resp.Message = "Hello! I can help with cottage details, prices, availability and bookings. What would you like to know?"
	case intent == model.IntentHelp:
		resp.Message = "You can ask me about our cottages: nightly rates, what fits your group, facilities, how to reach us, and how to book."
	case intent == model.IntentStatement, intent == model.IntentAffirmative, intent == model.IntentNegative:
		resp.Message = "Noted! Is there anything else you would like to know about the cottages?"
	case intent == model.IntentClarificationNeeded:
		resp.Status = model.StatusNeedsInfo
		resp.Message = "Could you tell me a bit more about what you are looking for?"
	case intent == model.IntentPricing || intent == model.IntentBooking:
		s.answerPricing(ctx, req.Message, slots, resp, callback)
	case intent == model.IntentRooms:
		s.answerCapacity(ctx, req.Message, slots, resp, callback)
	default:
		s.answerFromRetrieval(ctx, req.Message, slots, resp, callback)
	}

	if resp.Status == model.StatusNeedsInfo && intent.IsSpecificCalculation() {
		session.SetPendingIntent(intent)
	} else {
		session.SetPendingIntent("")
	}

	resp.Suggestions = s.recommender.GenerateContextualSuggestions(
		session.Tracker().State(),
		append(history, model.ChatMessage{Role: "user", Content: req.Message}),
	)
	s.emit(callback, "suggestions", resp.Suggestions)

	session.AppendMessage(model.ChatMessage{
		Role: "user", Content: req.Message, Intent: intent, Timestamp: startTime,
	})
	session.AppendMessage(model.ChatMessage{
		Role: "assistant", Content: resp.Message, Timestamp: time.Now(),
	})

	resp.Took = time.Since(startTime).Milliseconds()

	// Log conversation (non-blocking)
	if s.store != nil {
		slotsCopy := resp.Slots
		go func() {
			_ = s.store.LogConversation(context.Background(), sessionID, req.Message,
				string(intent), slotsCopy, string(resp.Status), int(resp.Took))
		}()
	}

	return resp, nil
}

// answerPricing runs the deterministic pricing gate. A computed
// template is surfaced, not recomputed, by the answer step; missing
// inputs turn into an ask-the-user reply, never fabricated dates.
func (s *ChatService) answerPricing(ctx context.Context, question string, slots *SlotManager, resp *model.ChatResponse, callback ChatEventCallback) {
	result := s.pricing.ProcessPricingQuery(question, slots.View(), nil)
	s.emit(callback, "pricing", result)

	if !result.HasAllInfo {
		resp.Status = model.StatusNeedsInfo
		resp.MissingSlots = result.MissingSlots
		resp.Message = askForMissing(result.MissingSlots)
		return
	}

	resp.Sources = []string{"pricing_calculator"}
	template := syntheticDocument(result.Template, model.CategoryPricing)
	resp.Message = s.generateFromDocuments(ctx, question, []model.RetrievedDocument{template}, result.Template, callback)
}

// answerCapacity mirrors the pricing gate for group-size suitability
func (s *ChatService) answerCapacity(ctx context.Context, question string, slots *SlotManager, resp *model.ChatResponse, callback ChatEventCallback) {
	result := s.capacity.ProcessCapacityQuery(question, slots.View())
	s.emit(callback, "capacity", result)

	if !result.HasAllInfo {
		resp.Status = model.StatusNeedsInfo
		resp.MissingSlots = result.MissingSlots
		resp.Message = askForMissing(result.MissingSlots)
		return
	}

	resp.Sources = []string{"capacity_calculator"}
	template := syntheticDocument(result.Template, model.CategoryGeneral)
	resp.Message = s.generateFromDocuments(ctx, question, []model.RetrievedDocument{template}, result.Template, callback)
}

// answerFromRetrieval is the RAG path: refine the query, retrieve,
// filter, then generate (or fall back to snippets)
func (s *ChatService) answerFromRetrieval(ctx context.Context, question string, slots *SlotManager, resp *model.ChatResponse, callback ChatEventCallback) {
	if s.store == nil {
		resp.Status = model.StatusError
		resp.ErrorCode = model.ErrorRetrievalFailed
		resp.Message = "I cannot reach the knowledge base right now. Please try again shortly."
		return
	}

	refined := s.refineQuery(question, slots)
	s.emit(callback, "retrieving", map[string]any{"query": refined})

	var embedding []float32
	if s.ai != nil && s.ai.IsEnabled() {
		if vecs, err := s.ai.CreateEmbeddings(ctx, []string{refined}); err == nil && len(vecs) == 1 {
			embedding = vecs[0]
		} else if err != nil {
			log.Printf("Warning: query embedding failed: %v, using text search only", err)
		}
	}

	documents, err := s.store.SearchDocuments(ctx, embedding, refined, s.topK)
	if err != nil {
		log.Printf("Warning: retrieval failed: %v", err)
		resp.Status = model.StatusError
		resp.ErrorCode = model.ErrorRetrievalFailed
		resp.Message = "I cannot reach the knowledge base right now. Please try again shortly."
		return
	}

	filtered := s.filter.FilterAndPrioritize(documents, question)
	if filtered.OutOfScope {
		resp.Status = model.StatusOutOfScope
		resp.Message = "That looks outside what I know about this property. I can help with the cottages, their prices, facilities and bookings."
		return
	}
	s.emit(callback, "documents", len(filtered.Documents))

	if len(filtered.Documents) == 0 {
		resp.Status = model.StatusNeedsInfo
		resp.Message = "I could not find that in my knowledge base. Could you rephrase, or ask about the cottages, rates or facilities?"
		return
	}

	for _, doc := range filtered.Documents {
		if src := doc.Source(); src != "" {
			resp.Sources = append(resp.Sources, src)
		}
	}

	fallback := snippetAnswer(filtered.Documents)
	resp.Message = s.generateFromDocuments(ctx, question, filtered.Documents, fallback, callback)
}

const answerPromptTemplate = `You are the booking assistant for a cottage rental property.
Answer the guest's question using only the context below. Be concise and friendly.
If the context does not contain the answer, say you do not have that information.

Context:
%s

Question: %s
Answer:`

// generateFromDocuments asks the completion service to phrase the
// final answer over the document context, cleaning its output. When
// the service is unavailable the deterministic fallback is used.
func (s *ChatService) generateFromDocuments(ctx context.Context, question string, documents []model.RetrievedDocument, fallback string, callback ChatEventCallback) string {
	if s.ai == nil || !s.ai.IsEnabled() {
		return fallback
	}

	var contextBlock strings.Builder
	for i, doc := range documents {
		fmt.Fprintf(&contextBlock, "[%d] %s\n", i+1, doc.Content)
	}
	prompt := fmt.Sprintf(answerPromptTemplate, contextBlock.String(), question)

	var answer string
	var err error
	if callback != nil {
		var b strings.Builder
		err = s.ai.GenerateStream(ctx, prompt, 0, func(chunk string) error {
			b.WriteString(chunk)
			return s.emit(callback, "content", map[string]any{"content": chunk})
		})
		answer = b.String()
	} else {
		answer, err = s.ai.Generate(ctx, prompt, 0)
	}
	if err != nil {
		log.Printf("Warning: answer generation failed: %v, using fallback answer", err)
		return fallback
	}

	cleaned := s.cleaner.Clean(answer)
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

// refineQuery folds resolved slots and the detected topic into the
// retrieval query so scoping happens at search time too
func (s *ChatService) refineQuery(question string, slots *SlotManager) string {
	parts := []string{question}
	if n := slots.CottageNumber(); n > 0 && utils.HasAnyTopic(question) {
		parts = append(parts, fmt.Sprintf("cottage %d", n))
	}
	if topic := utils.TopicFor(question); topic != "" {
		parts = append(parts, topic)
	}
	return strings.Join(parts, " ")
}

func askForMissing(missing []string) string {
	labels := make([]string, 0, len(missing))
	for _, name := range missing {
		labels = append(labels, slotQuestionLabel(name))
	}
	return "Happy to work that out! Could you tell me " + strings.Join(labels, " and ") + "?"
}

func snippetAnswer(documents []model.RetrievedDocument) string {
	limit := 2
	if len(documents) < limit {
		limit = len(documents)
	}
	parts := make([]string, 0, limit)
	for _, doc := range documents[:limit] {
		parts = append(parts, strings.TrimSpace(doc.Content))
	}
	return strings.Join(parts, "\n\n")
}

func syntheticDocument(content, category string) model.RetrievedDocument {
	return model.RetrievedDocument{
		Content:   content,
		Metadata:  model.JSONMap{"category": category, "source": "calculator"},
		Synthetic: true,
		Score:     1.0,
	}
}

// Suggestions returns follow-up prompts for a session without
// advancing the conversation. Unknown sessions get an empty list
// rather than being allocated by a read.
func (s *ChatService) Suggestions(sessionID string) []string {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return []string{}
	}
	session.Lock()
	defer session.Unlock()
	return s.recommender.GenerateContextualSuggestions(session.Tracker().State(), session.History())
}

// ClearSession resets a session's conversation state
func (s *ChatService) ClearSession(id string) bool {
	return s.sessions.Clear(id)
}

// DeleteSession removes a session entirely
func (s *ChatService) DeleteSession(id string) bool {
	return s.sessions.Delete(id)
}

// UpdateEmbeddings pushes a batch of document embeddings to the store
func (s *ChatService) UpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	if s.store == nil {
		return 0, []string{"document store not configured"}
	}
	return s.store.BatchUpdateEmbeddings(ctx, items)
}

// LogFeedback records user feedback on an answer
func (s *ChatService) LogFeedback(ctx context.Context, sessionID string, messageID int64, action string) error {
	if s.store == nil {
		return nil
	}
	return s.store.LogFeedback(ctx, sessionID, messageID, action)
}

func (s *ChatService) emit(callback ChatEventCallback, event string, data any) error {
	if callback == nil {
		return nil
	}
	return callback(event, data)
}

func atoiOrZero(v string) int {
	n := 0
	for _, ch := range v {
		if ch < '0' || ch > '9' {
			return 0
		}
		n = n*10 + int(ch-'0')
	}
	return n
}

package service

import (
	"regexp"
	"strconv"
	"strings"

	"assistant/internal/model"
	"assistant/internal/utils"
)

// FilterResult is the typed outcome of the relevance pipeline. An
// out-of-scope rejection is distinct from an empty document list so
// the caller can phrase a clear "not in knowledge base" message
// instead of answering from irrelevant context.
type FilterResult struct {
	Documents  []model.RetrievedDocument
	OutOfScope bool
	Reason     string
}

// DocumentRelevanceFilter post-processes retrieved documents through
// a pipeline of independent pure passes: cottage scoping, pricing
// demotion, safety promotion and topic/location mismatch rejection.
type DocumentRelevanceFilter struct {
	rates       map[int]model.CottageRate
	anchorTerms []string
}

// defaultAnchorTerms are the vocabulary that marks a document or
// query as being about the serviced property
var defaultAnchorTerms = []string{
	"cottage", "cottages", "property", "resort", "homestay", "stay",
	"booking", "guest", "guests",
}

// foreignTerms mark a query as being about an unrelated entity or
// general world knowledge
var foreignTerms = []string{
	"paris", "london", "new york", "dubai", "singapore", "tokyo",
	"visa", "passport", "flight", "airline", "president", "election",
	"stock market", "bitcoin", "cricket score", "football score",
	"capital of", "population of",
}

// NewDocumentRelevanceFilter creates the filter. rates may be nil;
// cottage capacity is only used to decide which cottage-exclusive
// documents a generic query implicitly allows.
func NewDocumentRelevanceFilter(rates []model.CottageRate) *DocumentRelevanceFilter {
	table := make(map[int]model.CottageRate, len(rates))
	for _, r := range rates {
		table[r.CottageNumber] = r
	}
	return &DocumentRelevanceFilter{
		rates:       table,
		anchorTerms: defaultAnchorTerms,
	}
}

// FilterAndPrioritize runs all passes in order and returns the
// reordered (possibly rejected) document set
func (f *DocumentRelevanceFilter) FilterAndPrioritize(documents []model.RetrievedDocument, query string) FilterResult {
	lower := strings.ToLower(query)

	if ok, reason := f.rejectMismatch(documents, lower); !ok {
		return FilterResult{OutOfScope: true, Reason: reason}
	}

	docs := f.scopeByCottage(documents, lower)
	docs = f.demotePricing(docs, lower)
	docs = f.promoteSafety(docs, lower)

	return FilterResult{Documents: docs}
}

var reCottageMention = regexp.MustCompile(`cottage\s*(?:no\.?\s*|number\s*|#\s*)?(\d{1,2})`)

// cottageMentions returns every cottage number a text refers to
func cottageMentions(text string) map[int]bool {
	out := make(map[int]bool)
	for _, m := range reCottageMention.FindAllStringSubmatch(strings.ToLower(text), -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
			out[n] = true
		}
	}
	return out
}

// docCottages reads cottage references from metadata first, falling
// back to content scanning
func docCottages(doc *model.RetrievedDocument) map[int]bool {
	if doc.Metadata != nil {
		if v, ok := doc.Metadata["cottage_number"]; ok {
			switch n := v.(type) {
			case float64:
				return map[int]bool{int(n): true}
			case int:
				return map[int]bool{n: true}
			case string:
				if parsed, err := strconv.Atoi(n); err == nil {
					return map[int]bool{parsed: true}
				}
			}
		}
	}
	return cottageMentions(doc.Content)
}

// scopeByCottage keeps documents about the cottages the query names
// (or about none); with no cottage in the query, cottage-exclusive
// documents are kept only when the query's group size implicitly
// allows them.
func (f *DocumentRelevanceFilter) scopeByCottage(documents []model.RetrievedDocument, lower string) []model.RetrievedDocument {
	queryCottages := cottageMentions(lower)

	// an explicit group size lets a generic query keep documents for
	// cottages that can host the group
	guests := 0
	if m := reGuestAfter.FindStringSubmatch(lower); m != nil {
		guests, _ = strconv.Atoi(m[1])
	}

	out := make([]model.RetrievedDocument, 0, len(documents))
	for _, doc := range documents {
		mentioned := docCottages(&doc)
		if len(mentioned) == 0 {
			out = append(out, doc)
			continue
		}
		if len(queryCottages) > 0 {
			if intersects(mentioned, queryCottages) {
				out = append(out, doc)
			}
			continue
		}
		if f.genericallyAllowed(mentioned, guests) {
			out = append(out, doc)
		}
	}
	return out
}

// genericallyAllowed decides whether a cottage-exclusive document may
// answer a query that names no cottage
func (f *DocumentRelevanceFilter) genericallyAllowed(mentioned map[int]bool, guests int) bool {
	if guests <= 0 {
		return false
	}
	for n := range mentioned {
		if rate, ok := f.rates[n]; ok && guests <= rate.Capacity {
			return true
		}
	}
	return false
}

func intersects(a, b map[int]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

// demotePricing moves pricing-heavy documents to the end of the list
// when the query is not about pricing. They stay available as a last
// resort instead of crowding out the asked-for topic.
func (f *DocumentRelevanceFilter) demotePricing(documents []model.RetrievedDocument, lower string) []model.RetrievedDocument {
	if utils.HasTopic(lower, "pricing") {
		return documents
	}
	head := make([]model.RetrievedDocument, 0, len(documents))
	tail := make([]model.RetrievedDocument, 0)
	for _, doc := range documents {
		if isPricingDoc(&doc) {
			tail = append(tail, doc)
		} else {
			head = append(head, doc)
		}
	}
	return append(head, tail...)
}

func isPricingDoc(doc *model.RetrievedDocument) bool {
	if doc.Category() == model.CategoryPricing {
		return true
	}
	return utils.HasTopic(doc.Content, "pricing")
}

// safetyVocab is the guard/gated/security vocabulary promoted for
// safety questions
var safetyVocab = []string{"guard", "guards", "guarded", "gated", "security", "cctv", "safe", "safety"}

// promoteSafety moves safety documents to the front when the query
// asks about safety
func (f *DocumentRelevanceFilter) promoteSafety(documents []model.RetrievedDocument, lower string) []model.RetrievedDocument {
	if !utils.HasTopic(lower, "safety") {
		return documents
	}
	head := make([]model.RetrievedDocument, 0, len(documents))
	tail := make([]model.RetrievedDocument, 0)
	for _, doc := range documents {
		if isSafetyDoc(&doc) {
			head = append(head, doc)
		} else {
			tail = append(tail, doc)
		}
	}
	return append(head, tail...)
}

func isSafetyDoc(doc *model.RetrievedDocument) bool {
	if doc.Category() == model.CategorySafety {
		return true
	}
	content := strings.ToLower(doc.Content)
	for _, term := range safetyVocab {
		if strings.Contains(content, term) {
			return true
		}
	}
	return false
}

// rejectMismatch refuses retrieval when the query is unambiguously
// about an unrelated place or topic and nothing retrieved anchors to
// the serviced property
func (f *DocumentRelevanceFilter) rejectMismatch(documents []model.RetrievedDocument, lower string) (bool, string) {
	foreign := ""
	for _, term := range foreignTerms {
		if strings.Contains(lower, term) {
			foreign = term
			break
		}
	}
	if foreign == "" {
		return true, ""
	}

	// a query that also anchors to the property is still in scope,
	// e.g. "how far is the cottage from the airport flight"
	for _, anchor := range f.anchorTerms {
		if strings.Contains(lower, anchor) {
			return true, ""
		}
	}

	for _, doc := range documents {
		content := strings.ToLower(doc.Content)
		for _, anchor := range f.anchorTerms {
			if strings.Contains(content, anchor) {
				return true, ""
			}
		}
	}

	return false, "query about " + strconv.Quote(foreign) + " is outside the property knowledge base"
}

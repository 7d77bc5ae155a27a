package submission

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"maqua-crm/internal/briefing"
	"maqua-crm/internal/payload"
)

const opportunityDictionaryKey = "opportunity_dictionary"

// dictEntry is one name/id pair learned from existing opportunities.
// Order matters: the first cached stage doubles as the fallback when
// nothing else resolves.
type dictEntry struct {
	name string
	id   string
}

type opportunityDictionary struct {
	stages     []dictEntry
	transTypes []dictEntry
}

type dictionaryCache struct {
	cache *gocache.Cache
}

func newDictionaryCache(ttl time.Duration) *dictionaryCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &dictionaryCache{cache: gocache.New(ttl, ttl/2)}
}

// loadDictionary returns the cached stage and transaction-type tables,
// sampling them from the first opportunity page on a cache miss. A
// gateway failure leaves the cache cold so the next call retries.
func (s *Service) loadDictionary(ctx context.Context) opportunityDictionary {
	if cached, ok := s.dictionaries.cache.Get(opportunityDictionaryKey); ok {
		if dict, ok := cached.(opportunityDictionary); ok {
			return dict
		}
	}
	resp, err := s.gateway.GetOpportunities(ctx, "", 1, 50, "", "")
	if err != nil {
		if s.log != nil {
			s.log.Warn("opportunity dictionary fetch failed", map[string]interface{}{"error": err.Error()})
		}
		return opportunityDictionary{}
	}

	dict := opportunityDictionary{}
	seenStages := map[string]bool{}
	seenTrans := map[string]bool{}
	for _, record := range resp.RecordList() {
		stageID := firstValue(record, "opptStage", "stage", "opptStageId")
		stageName := firstValue(record, "opptStage_name", "stageName")
		if stageID != "" && stageName != "" {
			key := strings.ToLower(stageName)
			if !seenStages[key] {
				seenStages[key] = true
				dict.stages = append(dict.stages, dictEntry{name: key, id: stageID})
			}
		}
		transID := firstValue(record, "opptTransType", "bustype", "transType")
		transName := firstValue(record, "opptTransType_name", "bustype_name", "transType_name")
		if transID != "" && transName != "" {
			key := strings.ToLower(transName)
			if !seenTrans[key] {
				seenTrans[key] = true
				dict.transTypes = append(dict.transTypes, dictEntry{name: key, id: transID})
			}
		}
	}
	s.dictionaries.cache.Set(opportunityDictionaryKey, dict, gocache.DefaultExpiration)
	return dict
}

func findDictEntry(entries []dictEntry, label string) string {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return ""
	}
	for _, entry := range entries {
		if strings.Contains(entry.name, normalized) || strings.Contains(normalized, entry.name) {
			return entry.id
		}
	}
	return ""
}

var (
	rentUsageTokens = []string{"租", "rent", "租用", "租賃"}
	buyUsageTokens  = []string{"買", "购", "購", "buy", "買斷", "買入"}
)

// resolveStage picks the opportunity stage id. Rental usage lands in
// the contract-signing stage (the "buy" bucket) and purchase usage in
// the operations stage (the "rent" bucket); the buckets are named after
// the stage ids, not the usage.
func (s *Service) resolveStage(ctx context.Context, oppCtx *briefing.OpportunityContext) (string, payload.StageKind) {
	oppt := s.cfg.Submission.Opportunity
	usage := strings.ToLower(oppCtx.UsageLabel)

	kind := payload.StageKindNone
	kindCandidate := ""
	if containsAny(usage, rentUsageTokens) {
		kind = payload.StageKindBuy
		kindCandidate = oppt.StageBuyID
	} else if containsAny(usage, buyUsageTokens) {
		kind = payload.StageKindRent
		kindCandidate = oppt.StageRentID
	}

	candidates := []string{
		oppCtx.StageHint,
		kindCandidate,
		oppt.StageRentID,
		oppt.StageBuyID,
	}
	for _, candidate := range candidates {
		text := strings.TrimSpace(candidate)
		if text == "" {
			continue
		}
		if isAllDigits(text) {
			return text, s.stageKindFor(text, kind)
		}
		if id := findDictEntry(s.loadDictionary(ctx).stages, text); id != "" {
			return id, s.stageKindFor(id, kind)
		}
	}

	if stages := s.loadDictionary(ctx).stages; len(stages) > 0 {
		return stages[0].id, s.stageKindFor(stages[0].id, kind)
	}
	return "", kind
}

func (s *Service) stageKindFor(stageID string, resolved payload.StageKind) payload.StageKind {
	if resolved != payload.StageKindNone {
		return resolved
	}
	oppt := s.cfg.Submission.Opportunity
	switch stageID {
	case oppt.StageRentID:
		return payload.StageKindRent
	case oppt.StageBuyID:
		return payload.StageKindBuy
	}
	return payload.StageKindNone
}

// resolveTransType picks the opportunity transaction type id, trying
// the parsed hint before the configured defaults.
func (s *Service) resolveTransType(ctx context.Context, oppCtx *briefing.OpportunityContext) string {
	candidates := []string{
		oppCtx.TransactionType,
		s.cfg.Submission.Opportunity.TransTypeID,
		s.cfg.Submission.TransTypeID,
	}
	for _, candidate := range candidates {
		text := strings.TrimSpace(candidate)
		if text == "" {
			continue
		}
		if isAllDigits(text) {
			return text
		}
		if id := findDictEntry(s.loadDictionary(ctx).transTypes, text); id != "" {
			return id
		}
	}
	if transTypes := s.loadDictionary(ctx).transTypes; len(transTypes) > 0 {
		return transTypes[0].id
	}
	return ""
}

func containsAny(text string, tokens []string) bool {
	if text == "" {
		return false
	}
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

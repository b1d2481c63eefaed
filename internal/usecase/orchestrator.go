package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"github.com/tendermatch/backend/internal/domain"
)

// MatchingConfig carries every knob the orchestrator needs. It is passed
// explicitly at construction; the engine reads no global state.
type MatchingConfig struct {
	// MinScoreThreshold drops candidates whose final score falls below it.
	MinScoreThreshold float64
	// MaxMatchedProducts caps the ranked products returned per item.
	MaxMatchedProducts int
	// MinCandidates is how many candidates the resolver tries to gather
	// before it stops broadening classification patterns.
	MinCandidates int
	// MaxCandidates bounds the candidate pool per item.
	MaxCandidates int
	// PriceTolerancePercent is the supplier price corridor for the bonus.
	PriceTolerancePercent float64

	// UseEnhancedSearch enables weighted full-text candidate retrieval.
	UseEnhancedSearch bool
	// UseSemanticSearch enables the embedding similarity stage.
	UseSemanticSearch bool
	// SemanticThreshold drops candidates below this semantic score when
	// the semantic stage ran.
	SemanticThreshold float64

	// ParallelThreshold is the item count above which processing switches
	// from sequential to batched parallel.
	ParallelThreshold int
	// MaxParallelItems is the batch size for parallel processing.
	MaxParallelItems int
	// BatchPause is the delay between consecutive parallel batches.
	BatchPause time.Duration

	// Algorithm selects the scorer variant, see NewScorer.
	Algorithm string
	// AlgorithmVersion is echoed into the result summary.
	AlgorithmVersion string
}

// Score bands for the tender-level summary.
const (
	perfectMatchThreshold = 0.9
	goodMatchThreshold    = 0.7
	partialMatchThreshold = 0.5
)

// MatchOrchestrator runs the full matching pipeline for tender requests.
type MatchOrchestrator struct {
	resolver  *HierarchicalResolver
	extractor *TermExtractor
	matcher   *AttributeMatcher
	scorer    Scorer
	store     domain.CatalogStore
	semantic  domain.SemanticProvider
	config    MatchingConfig
}

// NewMatchOrchestrator wires the pipeline. The semantic provider may be nil,
// which disables the semantic stage regardless of configuration.
func NewMatchOrchestrator(
	resolver *HierarchicalResolver,
	extractor *TermExtractor,
	matcher *AttributeMatcher,
	store domain.CatalogStore,
	semantic domain.SemanticProvider,
	config MatchingConfig,
) *MatchOrchestrator {
	if config.MaxMatchedProducts <= 0 {
		config.MaxMatchedProducts = 5
	}
	if config.MinCandidates <= 0 {
		config.MinCandidates = 10
	}
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = 100
	}
	if config.ParallelThreshold <= 0 {
		config.ParallelThreshold = 3
	}
	if config.MaxParallelItems <= 0 {
		config.MaxParallelItems = 5
	}
	return &MatchOrchestrator{
		resolver:  resolver,
		extractor: extractor,
		matcher:   matcher,
		scorer:    NewScorer(config.Algorithm),
		store:     store,
		semantic:  semantic,
		config:    config,
	}
}

// WithOverrides returns a copy of the orchestrator with per-request
// semantic settings. Nil pointers keep the configured values.
func (o *MatchOrchestrator) WithOverrides(useSemantic *bool, semanticThreshold *float64) *MatchOrchestrator {
	if useSemantic == nil && semanticThreshold == nil {
		return o
	}
	clone := *o
	if useSemantic != nil {
		clone.config.UseSemanticSearch = *useSemantic
	}
	if semanticThreshold != nil {
		clone.config.SemanticThreshold = *semanticThreshold
	}
	return &clone
}

// ProcessTender matches every item of a tender request against the catalog.
// Results keep the order of the (filtered) input items; one failing item
// never aborts the rest.
func (o *MatchOrchestrator) ProcessTender(ctx context.Context, request domain.TenderRequest) (*domain.TenderMatchingResult, error) {
	if len(request.Items) == 0 {
		return nil, fmt.Errorf("%w: tender has no items", domain.ErrInvalidRequest)
	}

	items := filterItems(request.Items)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no processable items after filtering", domain.ErrInvalidRequest)
	}

	started := time.Now()
	matches := make([]domain.TenderItemMatch, len(items))

	parallel := len(items) > o.config.ParallelThreshold && o.config.MaxParallelItems > 1
	if parallel {
		if err := o.processParallel(ctx, items, matches); err != nil {
			return nil, err
		}
	} else {
		for i, item := range items {
			matches[i] = o.matchItemSafe(ctx, item)
		}
	}

	result := &domain.TenderMatchingResult{
		TenderNumber:   request.TenderInfo.TenderNumber,
		TenderName:     request.TenderInfo.TenderName,
		ProcessingTime: started,
		TotalItems:     len(items),
		ItemMatches:    matches,
	}
	if request.TenderInfo.MaxPrice != nil {
		result.TenderMaxPrice = request.TenderInfo.MaxPrice.Amount
	}

	result.Summary = o.buildSummary(matches, time.Since(started), parallel)
	for _, m := range matches {
		if m.ProcessingStatus == domain.StatusSuccess {
			result.MatchedItems++
		}
	}

	log.Info().
		Str("tender", request.TenderInfo.TenderNumber).
		Int("items", len(items)).
		Int("matched", result.MatchedItems).
		Dur("duration", time.Since(started)).
		Bool("parallel", parallel).
		Msg("tender processed")

	return result, nil
}

// processParallel runs items in batches of MaxParallelItems on a shared
// worker pool. matches is written by input index, so output order never
// depends on completion order.
func (o *MatchOrchestrator) processParallel(ctx context.Context, items []domain.TenderItem, matches []domain.TenderItemMatch) error {
	pool, err := ants.NewPool(o.config.MaxParallelItems)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	for offset := 0; offset < len(items); offset += o.config.MaxParallelItems {
		end := offset + o.config.MaxParallelItems
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := offset; i < end; i++ {
			i := i
			wg.Add(1)
			if err := pool.Submit(func() {
				defer wg.Done()
				matches[i] = o.matchItemSafe(ctx, items[i])
			}); err != nil {
				wg.Done()
				matches[i] = errorMatch(items[i], fmt.Errorf("submit to pool: %w", err))
			}
		}
		wg.Wait()

		if end < len(items) && o.config.BatchPause > 0 {
			time.Sleep(o.config.BatchPause)
		}
	}
	return nil
}

// matchItemSafe isolates item failures: both returned errors and panics
// become an error-status match instead of propagating.
func (o *MatchOrchestrator) matchItemSafe(ctx context.Context, item domain.TenderItem) (match domain.TenderItemMatch) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int("item_id", item.ID).
				Interface("panic", r).
				Msg("item matching panicked")
			match = errorMatch(item, fmt.Errorf("internal error: %v", r))
		}
	}()

	match, err := o.MatchItem(ctx, item)
	if err != nil {
		log.Error().Err(err).Int("item_id", item.ID).Str("item", item.Name).Msg("item matching failed")
		return errorMatch(item, err)
	}
	return match
}

// MatchItem runs the matching pipeline for a single tender item:
// candidate resolution, term extraction, optional enhanced and semantic
// stages, attribute matching, scoring and supplier ranking.
func (o *MatchOrchestrator) MatchItem(ctx context.Context, item domain.TenderItem) (domain.TenderItemMatch, error) {
	started := time.Now()

	match := domain.TenderItemMatch{
		TenderItemID:       item.ID,
		TenderItemName:     item.Name,
		ClassificationCode: item.ClassificationCode,
	}

	candidates, err := o.resolver.Resolve(ctx, item.ClassificationCode, o.config.MinCandidates, o.config.MaxCandidates)
	if err != nil {
		return match, err
	}

	terms := o.extractor.Extract(item)
	stats := &domain.ProcessingStats{
		SearchQuery:        terms.Query,
		WeightedTermsCount: len(terms.WeightedTerms),
	}

	if o.config.UseEnhancedSearch && len(terms.WeightedTerms) > 0 {
		candidates = o.enhanceCandidates(ctx, item.ClassificationCode, terms, candidates)
	}
	stats.CandidatesFound = len(candidates)

	if len(candidates) == 0 {
		stats.ProcessingSeconds = time.Since(started).Seconds()
		match.ProcessingStatus = domain.StatusNoMatches
		match.ProcessingStats = stats
		return match, nil
	}

	semanticScores, semanticRan := o.scoreSemantics(ctx, item, candidates)

	afterSemantic := 0
	products := make([]domain.MatchedProduct, 0, len(candidates))
	for i, candidate := range candidates {
		semanticScore := neutralSemanticScore
		if semanticRan {
			semanticScore = semanticScores[i]
			// With text relevance available the filter judges the adaptive
			// blend, so a strong text match can rescue a middling embedding.
			filterScore := semanticScore
			if o.config.UseEnhancedSearch && candidate.TextScore > 0 {
				filterScore = CombineWithTextScore(candidate.TextScore, semanticScore)
			}
			if filterScore < o.config.SemanticThreshold {
				continue
			}
		}
		afterSemantic++

		outcome := o.matcher.Match(item.Characteristics, candidate.Attributes)
		if !outcome.Suitable && o.scorer.Name() != "characteristic_disabled" {
			continue
		}

		finalScore := o.scorer.Score(outcome.Score, candidate.TextScore, semanticScore)
		if finalScore < o.config.MinScoreThreshold {
			continue
		}

		products = append(products, o.buildMatchedProduct(candidate, item, outcome, finalScore, semanticScore))
	}
	// Counted before suitability and score filtering, so the stat reflects
	// the semantic stage alone.
	if semanticRan {
		stats.AfterSemanticFilter = afterSemantic
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].MatchScore > products[j].MatchScore
	})
	if len(products) > o.config.MaxMatchedProducts {
		products = products[:o.config.MaxMatchedProducts]
	}

	stats.MatchedProducts = len(products)
	stats.ProcessingSeconds = time.Since(started).Seconds()

	match.MatchedProducts = products
	match.TotalMatches = len(products)
	match.ProcessingStats = stats
	if len(products) == 0 {
		match.ProcessingStatus = domain.StatusNoMatches
		return match, nil
	}
	match.ProcessingStatus = domain.StatusSuccess
	match.BestMatchScore = products[0].MatchScore
	return match, nil
}

// enhanceCandidates merges weighted full-text results with the resolver's
// prefix candidates. Text-ranked products come first so their TextScore
// survives deduplication; a failed enhanced query degrades to the prefix set.
func (o *MatchOrchestrator) enhanceCandidates(ctx context.Context, code string, terms TermSet, fallback []domain.Product) []domain.Product {
	enhanced, err := o.store.FindEnhanced(ctx, code, terms.WeightedTerms, o.config.MaxCandidates)
	if err != nil {
		log.Warn().Err(err).Str("code", code).Msg("enhanced search failed, using prefix candidates")
		return fallback
	}

	seen := make(map[string]bool, len(enhanced))
	merged := make([]domain.Product, 0, len(enhanced)+len(fallback))
	for _, p := range enhanced {
		if !seen[p.Hash] {
			seen[p.Hash] = true
			merged = append(merged, p)
		}
	}
	for _, p := range fallback {
		if !seen[p.Hash] {
			seen[p.Hash] = true
			merged = append(merged, p)
		}
	}
	if len(merged) > o.config.MaxCandidates {
		merged = merged[:o.config.MaxCandidates]
	}
	return merged
}

// scoreSemantics runs one batched similarity call for all candidates.
// Any failure degrades to "stage did not run" so items are never lost to
// an unavailable embedding backend.
func (o *MatchOrchestrator) scoreSemantics(ctx context.Context, item domain.TenderItem, candidates []domain.Product) ([]float64, bool) {
	if !o.config.UseSemanticSearch || o.semantic == nil {
		return nil, false
	}

	query := BuildTenderText(item)
	if query == "" {
		return nil, false
	}
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = BuildProductText(c)
	}

	scores, err := o.semantic.Score(ctx, query, texts)
	if err != nil || len(scores) != len(candidates) {
		log.Warn().Err(err).Int("item_id", item.ID).Msg("semantic scoring unavailable, using neutral scores")
		return nil, false
	}
	return scores, true
}

// buildMatchedProduct assembles the ranked product entry, scoring each
// supplier by price fit and sorting best first.
func (o *MatchOrchestrator) buildMatchedProduct(candidate domain.Product, item domain.TenderItem, outcome MatchOutcome, finalScore, semanticScore float64) domain.MatchedProduct {
	matchedNames := make([]string, 0, len(outcome.Matched))
	for _, d := range outcome.Matched {
		matchedNames = append(matchedNames, d.Name)
	}

	suppliers := make([]domain.MatchedSupplier, 0, len(candidate.Suppliers))
	for _, s := range candidate.Suppliers {
		score := finalScore
		if price, ok := s.BestPrice(); ok {
			score = ComposeSupplierScore(finalScore, price, item.UnitPrice.Amount, o.config.PriceTolerancePercent)
		}
		suppliers = append(suppliers, domain.MatchedSupplier{
			Key:               s.Key,
			Name:              s.Name,
			Tel:               s.Tel,
			Address:           s.Address,
			Offers:            s.Offers,
			MatchScore:        score,
			MatchedAttributes: matchedNames,
		})
	}
	sort.SliceStable(suppliers, func(i, j int) bool {
		return suppliers[i].MatchScore > suppliers[j].MatchScore
	})

	return domain.MatchedProduct{
		ProductHash:        candidate.Hash,
		ClassificationCode: candidate.ClassificationCode,
		ClassificationName: candidate.ClassificationName,
		SampleTitle:        candidate.SampleTitle,
		SampleBrand:        candidate.SampleBrand,
		Attributes:         candidate.Attributes,
		MatchedSuppliers:   suppliers,
		TotalSuppliers:     len(candidate.Suppliers),
		MatchScore:         finalScore,
		MatchDetails: domain.MatchDetails{
			FinalScore:        finalScore,
			AttributeScore:    outcome.Score,
			TextScore:         candidate.TextScore,
			SemanticScore:     semanticScore,
			MatchedAttributes: outcome.Matched,
			MissingAttributes: outcome.Missing,
			TotalRequired:     outcome.TotalRequired,
			TotalMatched:      outcome.TotalMatched,
		},
	}
}

// buildSummary aggregates tender-level statistics over all item matches.
func (o *MatchOrchestrator) buildSummary(matches []domain.TenderItemMatch, elapsed time.Duration, parallel bool) domain.Summary {
	summary := domain.Summary{
		ProcessingDurationSeconds: elapsed.Seconds(),
		SemanticSearchEnabled:     o.config.UseSemanticSearch && o.semantic != nil,
		AlgorithmVersion:          o.config.AlgorithmVersion,
	}
	if parallel {
		summary.ParallelBatchSize = o.config.MaxParallelItems
	}
	if elapsed > 0 {
		summary.ItemsPerSecond = float64(len(matches)) / elapsed.Seconds()
	}

	scoreSum := 0.0
	scored := 0
	for _, m := range matches {
		if m.ProcessingStatus == domain.StatusError {
			summary.ItemsWithErrors++
			continue
		}

		switch {
		case m.BestMatchScore >= perfectMatchThreshold:
			summary.ItemsWithPerfectMatch++
		case m.BestMatchScore >= goodMatchThreshold:
			summary.ItemsWithGoodMatch++
		case m.BestMatchScore >= partialMatchThreshold:
			summary.ItemsWithPartialMatch++
		case m.BestMatchScore == 0:
			// "Without match" means nothing matched at all. An item that
			// matched below the partial band belongs to no band.
			summary.ItemsWithoutMatch++
		}

		if m.BestMatchScore > 0 {
			scoreSum += m.BestMatchScore
			scored++
		}
		summary.TotalMatchedProducts += m.TotalMatches
		for _, p := range m.MatchedProducts {
			summary.TotalSuppliers += p.TotalSuppliers
		}
	}
	if scored > 0 {
		summary.AverageMatchScore = scoreSum / float64(scored)
	}
	return summary
}

// filterItems drops items that cannot be matched: zero or negative
// quantity, empty classification code, or an ID already seen.
func filterItems(items []domain.TenderItem) []domain.TenderItem {
	seen := make(map[int]bool, len(items))
	out := make([]domain.TenderItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			log.Warn().Int("item_id", item.ID).Str("item", item.Name).Msg("skipping item with non-positive quantity")
			continue
		}
		if item.ClassificationCode == "" {
			log.Warn().Int("item_id", item.ID).Str("item", item.Name).Msg("skipping item without classification code")
			continue
		}
		if seen[item.ID] {
			log.Warn().Int("item_id", item.ID).Msg("skipping duplicate item id")
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}

func errorMatch(item domain.TenderItem, err error) domain.TenderItemMatch {
	return domain.TenderItemMatch{
		TenderItemID:       item.ID,
		TenderItemName:     item.Name,
		ClassificationCode: item.ClassificationCode,
		ProcessingStatus:   domain.StatusError,
		ErrorMessage:       err.Error(),
	}
}

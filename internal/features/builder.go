package features

// Builder assembles feature vectors from read-only indexes. A Builder is
// immutable after construction and may be shared between goroutines.
type Builder struct {
	extractor  *DomainExtractor
	keywords   *KeywordMatcher
	domains    *DomainHistory
	recipients *RecipientHistory
	reputation *ReputationTable
}

// NewBuilder creates a feature vector builder over the given indexes
func NewBuilder(
	extractor *DomainExtractor,
	keywords *KeywordMatcher,
	domains *DomainHistory,
	recipients *RecipientHistory,
	reputation *ReputationTable,
) *Builder {
	if extractor == nil {
		extractor = NewDomainExtractor()
	}
	if keywords == nil {
		keywords = NewKeywordMatcher(nil)
	}
	if reputation == nil {
		reputation = NewReputationTable(nil)
	}
	return &Builder{
		extractor:  extractor,
		keywords:   keywords,
		domains:    domains,
		recipients: recipients,
		reputation: reputation,
	}
}

// Build computes the feature vector of email and returns it together with
// the domains extracted from its text, in discovery order
func (b *Builder) Build(email CandidateEmail) (FeatureVector, []string) {
	text := email.Text()
	domains := b.extractor.ExtractDomains(text)
	domainSet := NewStringSet(domains...)
	day := DayOf(email.Date)

	return FeatureVector{
		HasPhishyKeywords:   b.keywords.HasPhishyKeywords(text),
		NumRecipients:       email.Recipients.Len(),
		GlobalURLRank:       b.reputation.GlobalURLRank(domains),
		LocalURLFreq:        LocalURLFreq(day, domainSet, b.domains),
		RecipientLikelihood: RecipientLikelihood(day, email.Sender, email.Recipients, b.recipients),
	}, domains
}

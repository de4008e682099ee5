package domain

// PersonaLabel is the coarse audience category of a persona hint.
type PersonaLabel string

// Available persona labels.
const (
	// PersonaUserCentric addresses the reader directly.
	PersonaUserCentric PersonaLabel = "user-centric"

	// PersonaBusiness addresses teams and organisations.
	PersonaBusiness PersonaLabel = "business"

	// PersonaTechnical addresses developers.
	PersonaTechnical PersonaLabel = "technical"

	// PersonaLegal addresses compliance and regulation.
	PersonaLegal PersonaLabel = "legal"

	// PersonaGeneral is the fallback for everything else.
	PersonaGeneral PersonaLabel = "general"
)

// IsValid returns true if the label is recognised.
func (l PersonaLabel) IsValid() bool {
	switch l {
	case PersonaUserCentric, PersonaBusiness, PersonaTechnical, PersonaLegal, PersonaGeneral:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (l PersonaLabel) String() string {
	return string(l)
}

// PersonaRule maps a set of trigger keywords to a label.
type PersonaRule struct {
	Label    PersonaLabel
	Keywords []string
}

// DefaultPersonaRules returns the keyword rules in priority order.
// The first rule with a matching keyword wins.
func DefaultPersonaRules() []PersonaRule {
	return []PersonaRule{
		{Label: PersonaUserCentric, Keywords: []string{"you", "your", "i", "me", "my"}},
		{Label: PersonaBusiness, Keywords: []string{"team", "business", "organization", "company"}},
		{Label: PersonaTechnical, Keywords: []string{"developer", "code", "software", "app"}},
		{Label: PersonaLegal, Keywords: []string{"legal", "law", "compliance", "regulation"}},
		{Label: PersonaGeneral, Keywords: []string{"summary", "overview", "document", "report"}},
	}
}

// UnknownPersona is reported when a run's queries map to no known group.
const UnknownPersona = "Unknown"

// PersonaJob is the persona and job-to-be-done attached to a query group.
type PersonaJob struct {
	Persona string `json:"persona" yaml:"persona" toml:"persona"`
	Job     string `json:"job" yaml:"job" toml:"job"`
}

// UnknownPersonaJob is used when no group mapping applies.
func UnknownPersonaJob() PersonaJob {
	return PersonaJob{Persona: UnknownPersona, Job: UnknownPersona}
}

// DefaultPersonaJobs returns the built-in group to persona/job mapping.
func DefaultPersonaJobs() map[string]PersonaJob {
	return map[string]PersonaJob{
		"business_analysis_sample_queries": {
			Persona: "Investment Analyst",
			Job:     "Analyze revenue trends, R&D investments, and market positioning strategies.",
		},
		"academic_research_sample_queries": {
			Persona: "PhD Researcher in Computational Biology",
			Job:     "Prepare a comprehensive literature review focusing on methodologies, datasets, and performance benchmarks.",
		},
		"educational_content_sample_queries": {
			Persona: "Undergraduate Chemistry Student",
			Job:     "Identify key concepts and mechanisms for exam preparation on reaction kinetics.",
		},
	}
}

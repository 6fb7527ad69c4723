package domain

// CreditsPerSubject is the nominal credit size of one subject. Rounds are
// measured in multiples of it.
const CreditsPerSubject = 4.5

// RoundNotEligible marks applicants that never take part in the rounds.
const RoundNotEligible = 99

// FirstProtectedRound is the earliest round for RyC/JdC applicants.
const FirstProtectedRound = 3

// RoundTolerance absorbs floating point drift in credit arithmetic.
const RoundTolerance = 1e-5

// SeniorityWarningYears is the holder seniority from which a selection
// gets flagged.
const SeniorityWarningYears = 6

// NullID is used as degree and subject of administrative ledger entries.
const NullID = "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz"

// NoneMarker is written in the removal columns of entries still in force.
const NoneMarker = "None"

type Explanation string

const (
	ExplanationFinished    Explanation = "Finaliza elección en rondas"
	ExplanationReactivated Explanation = "Activa elección en rondas"
)

type Category string

const (
	CategoryCollaborator       Category = "Colaborador"
	CategoryCollaboratorFemale Category = "Colaboradora"
)

// protectedMarkers are the category substrings that shift an applicant's
// rounds by FirstProtectedRound-1.
var protectedMarkers = []string{"RyC", "JdC"}

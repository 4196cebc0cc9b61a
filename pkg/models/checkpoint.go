// Package models defines the domain models shared between the pipeline
// client, the orchestrator and the CLI.
package models

// CheckpointType identifies one human-review stage of the pipeline.
type CheckpointType string

const (
	CheckpointDomain                 CheckpointType = "domain"
	CheckpointEntities               CheckpointType = "entities"
	CheckpointRelations              CheckpointType = "relations"
	CheckpointAttributes             CheckpointType = "attributes"
	CheckpointPrimaryKeys            CheckpointType = "primary_keys"
	CheckpointMultivaluedDerived     CheckpointType = "multivalued_derived"
	CheckpointNullability            CheckpointType = "nullability"
	CheckpointDefaultValues          CheckpointType = "default_values"
	CheckpointCheckConstraints       CheckpointType = "check_constraints"
	CheckpointPhase2Final            CheckpointType = "phase2_final"
	CheckpointERDiagram              CheckpointType = "er_diagram"
	CheckpointDatatypes              CheckpointType = "datatypes"
	CheckpointRelationalSchema       CheckpointType = "relational_schema"
	CheckpointInformationMining      CheckpointType = "information_mining"
	CheckpointFunctionalDependencies CheckpointType = "functional_dependencies"
	CheckpointConstraints            CheckpointType = "constraints"
	CheckpointGenerationStrategies   CheckpointType = "generation_strategies"
	CheckpointComplete               CheckpointType = "complete"
)

// Phase identifies which pipeline phase produced a checkpoint.
type Phase string

const (
	PhaseConceptual Phase = "phase1"
	PhaseLogical    Phase = "phase2"
	PhasePhysical   Phase = "phase3"
)

// checkpointSpec declares the fixed, server-defined properties of each
// checkpoint type. completesOnSave marks the types whose save call is also
// the completion call on the server, so a successful draft save must be
// recorded as a finished checkpoint.
type checkpointSpec struct {
	order           int
	phase           Phase
	completesOnSave bool
}

var checkpointSpecs = map[CheckpointType]checkpointSpec{
	CheckpointDomain:                 {0, PhaseConceptual, false},
	CheckpointEntities:               {1, PhaseConceptual, false},
	CheckpointRelations:              {2, PhaseConceptual, false},
	CheckpointAttributes:             {3, PhaseConceptual, false},
	CheckpointPrimaryKeys:            {4, PhaseConceptual, false},
	CheckpointMultivaluedDerived:     {5, PhaseConceptual, false},
	CheckpointNullability:            {6, PhaseConceptual, false},
	CheckpointDefaultValues:          {7, PhaseConceptual, false},
	CheckpointCheckConstraints:       {8, PhaseConceptual, false},
	CheckpointPhase2Final:            {9, PhaseLogical, true},
	CheckpointERDiagram:              {10, PhaseLogical, true},
	CheckpointDatatypes:              {11, PhaseLogical, false},
	CheckpointRelationalSchema:       {12, PhaseLogical, true},
	CheckpointInformationMining:      {13, PhasePhysical, false},
	CheckpointFunctionalDependencies: {14, PhasePhysical, false},
	CheckpointConstraints:            {15, PhasePhysical, false},
	CheckpointGenerationStrategies:   {16, PhasePhysical, true},
	CheckpointComplete:               {17, PhasePhysical, false},
}

// CheckpointOrder lists every checkpoint type in pipeline order.
var CheckpointOrder = []CheckpointType{
	CheckpointDomain,
	CheckpointEntities,
	CheckpointRelations,
	CheckpointAttributes,
	CheckpointPrimaryKeys,
	CheckpointMultivaluedDerived,
	CheckpointNullability,
	CheckpointDefaultValues,
	CheckpointCheckConstraints,
	CheckpointPhase2Final,
	CheckpointERDiagram,
	CheckpointDatatypes,
	CheckpointRelationalSchema,
	CheckpointInformationMining,
	CheckpointFunctionalDependencies,
	CheckpointConstraints,
	CheckpointGenerationStrategies,
	CheckpointComplete,
}

// Valid reports whether t is a known checkpoint type.
func (t CheckpointType) Valid() bool {
	_, ok := checkpointSpecs[t]
	return ok
}

// Order returns t's position in the pipeline, or -1 for unknown types.
func (t CheckpointType) Order() int {
	spec, ok := checkpointSpecs[t]
	if !ok {
		return -1
	}
	return spec.order
}

// Next returns the checkpoint type that follows t in the pipeline, or
// "" when t is the final type or unknown. The server remains the
// authority on transitions; this is for display only.
func (t CheckpointType) Next() CheckpointType {
	i := t.Order()
	if i < 0 || i+1 >= len(CheckpointOrder) {
		return ""
	}
	return CheckpointOrder[i+1]
}

// Phase returns the pipeline phase that owns t.
func (t CheckpointType) Phase() Phase {
	return checkpointSpecs[t].phase
}

// CompletesOnSave reports whether saving a draft of t is, on the server,
// the same call that completes the checkpoint. For these types a
// successful save must also be recorded in the completed ledger.
func (t CheckpointType) CompletesOnSave() bool {
	return checkpointSpecs[t].completesOnSave
}

// Checkpoint is one pipeline stage as returned by the server. Payload is
// decoded JSON whose shape is specific to the checkpoint type; the
// orchestrator treats it as opaque and only the editing front end
// interprets it.
type Checkpoint struct {
	Type          CheckpointType `json:"type"`
	Payload       any            `json:"payload"`
	Justification any            `json:"justification,omitempty"`
	Phase         Phase          `json:"phase,omitempty"`
}

// CompletedCheckpoint is an immutable record of a finished checkpoint,
// holding the payload as it was at completion time.
type CompletedCheckpoint struct {
	Type          CheckpointType `json:"type"`
	Payload       any            `json:"payload"`
	Justification any            `json:"justification,omitempty"`
}

// AdvanceStatus is the outcome tag of an advance call.
type AdvanceStatus string

const (
	AdvanceSuccess AdvanceStatus = "success"
	AdvanceError   AdvanceStatus = "error"
)

// AdvanceResult is the server's response to an advance request. On
// success the server includes the full next checkpoint, so no follow-up
// fetch is needed; Next is CheckpointComplete when the pipeline has
// finished.
type AdvanceResult struct {
	Status            AdvanceStatus  `json:"status"`
	Next              CheckpointType `json:"next,omitempty"`
	NextPayload       any            `json:"next_payload,omitempty"`
	NextJustification any            `json:"next_justification,omitempty"`
	NextPhase         Phase          `json:"next_phase,omitempty"`
	Message           string         `json:"message,omitempty"`
}

package models

// Status values produced by the intake lifecycle. The status field is an
// open set on update; only these two values are ever written by the system
// itself.
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
)

// PatientRecord is one patient intake submission plus its lifecycle
// metadata. JSON keys are the canonical on-disk and wire representation
// (the data file holds a single JSON array of these objects).
type PatientRecord struct {
	ID string `json:"id"`

	// Required demographic/contact fields, validated at creation.
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	DateOfBirth    string `json:"dateOfBirth"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	ChiefComplaint string `json:"chiefComplaint"`

	// Optional clinical/demographic fields, copied verbatim from the
	// intake form.
	BiologicalSex         string `json:"biologicalSex,omitempty"`
	GenderIdentity        string `json:"genderIdentity,omitempty"`
	Pronouns              string `json:"pronouns,omitempty"`
	Address               string `json:"address,omitempty"`
	City                  string `json:"city,omitempty"`
	State                 string `json:"state,omitempty"`
	ZipCode               string `json:"zipCode,omitempty"`
	EmergencyContactName  string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string `json:"emergencyContactPhone,omitempty"`
	PainLevel             string `json:"painLevel,omitempty"`
	SymptomDuration       string `json:"symptomDuration,omitempty"`
	MedicalHistory        string `json:"medicalHistory,omitempty"`
	SurgicalHistory       string `json:"surgicalHistory,omitempty"`
	FamilyHistory         string `json:"familyHistory,omitempty"`
	Allergies             string `json:"allergies,omitempty"`
	Medications           string `json:"medications,omitempty"`
	SmokingStatus         string `json:"smokingStatus,omitempty"`
	AlcoholUse            string `json:"alcoholUse,omitempty"`
	ExerciseFrequency     string `json:"exerciseFrequency,omitempty"`
	Occupation            string `json:"occupation,omitempty"`
	InsuranceProvider     string `json:"insuranceProvider,omitempty"`
	InsuranceMemberID     string `json:"insuranceMemberId,omitempty"`
	ConsentToTreatment    bool   `json:"consentToTreatment,omitempty"`
	ConsentToContact      bool   `json:"consentToContact,omitempty"`

	// Lifecycle fields, managed by the record store. SubmittedAt is set
	// once at creation. ReviewedAt/ReviewedBy serialize as null until a
	// review happens.
	Status      string  `json:"status"`
	SubmittedAt string  `json:"submittedAt"`
	ReviewedAt  *string `json:"reviewedAt"`
	ReviewedBy  *string `json:"reviewedBy"`
	Notes       string  `json:"notes,omitempty"`
}

// PatientSummary is the list-view projection of a record. Detailed
// clinical fields (histories, medications, lifestyle) are deliberately
// excluded from the list surface.
type PatientSummary struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	DateOfBirth    string  `json:"dateOfBirth"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	ChiefComplaint string  `json:"chiefComplaint"`
	Status         string  `json:"status"`
	SubmittedAt    string  `json:"submittedAt"`
	ReviewedAt     *string `json:"reviewedAt"`
	ReviewedBy     *string `json:"reviewedBy"`
}

// Summary projects the record to its list view.
func (p *PatientRecord) Summary() PatientSummary {
	return PatientSummary{
		ID:             p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		DateOfBirth:    p.DateOfBirth,
		Email:          p.Email,
		Phone:          p.Phone,
		ChiefComplaint: p.ChiefComplaint,
		Status:         p.Status,
		SubmittedAt:    p.SubmittedAt,
		ReviewedAt:     p.ReviewedAt,
		ReviewedBy:     p.ReviewedBy,
	}
}

// IntakeStats holds the dashboard header counters.
type IntakeStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Reviewed int `json:"reviewed"`
	Today    int `json:"today"`
}

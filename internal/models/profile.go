package models

// Persona describes who the income supports.
type Persona string

const (
	PersonaSolo             Persona = "Solo"
	PersonaFamilyHead       Persona = "Family Head"
	PersonaLivingWithFamily Persona = "Living with Family"
)

// Valid reports whether p is a known persona.
func (p Persona) Valid() bool {
	switch p {
	case PersonaSolo, PersonaFamilyHead, PersonaLivingWithFamily:
		return true
	}
	return false
}

// MaritalStatus is the household status of the user.
type MaritalStatus string

const (
	StatusSingle     MaritalStatus = "Single"
	StatusMarried    MaritalStatus = "Married"
	StatusWithFamily MaritalStatus = "With Family"
)

// Valid reports whether s is a known marital status.
func (s MaritalStatus) Valid() bool {
	switch s {
	case StatusSingle, StatusMarried, StatusWithFamily:
		return true
	}
	return false
}

// FamilyStructure describes which parents live with a user who lives with family.
type FamilyStructure string

const (
	FamilyBothParents FamilyStructure = "Mother and Father"
	FamilyFatherOnly  FamilyStructure = "Father only"
	FamilyMotherOnly  FamilyStructure = "Mother only"
)

// Valid reports whether f is a known family structure.
func (f FamilyStructure) Valid() bool {
	switch f {
	case FamilyBothParents, FamilyFatherOnly, FamilyMotherOnly:
		return true
	}
	return false
}

// DefaultAge is the age assumed before the user provides one.
const DefaultAge = 25

// UserProfile is the descriptive context fed to the advisory service.
// Empty enum values mean "not provided".
type UserProfile struct {
	Persona         Persona         `json:"persona,omitempty"`
	Status          MaritalStatus   `json:"status,omitempty"`
	ChildrenCount   int             `json:"children_count"`
	Priorities      string          `json:"priorities"`
	Age             int             `json:"age"`
	FamilyStructure FamilyStructure `json:"family_structure,omitempty"`
}

// DefaultProfile returns the profile of a user who has not answered anything yet.
func DefaultProfile() UserProfile {
	return UserProfile{Age: DefaultAge}
}

package models

// CompanySettings holds tenant-wide calendar defaults.
type CompanySettings struct {
	ID           string     `bson:"id" json:"id"`
	Name         string     `bson:"name,omitempty" json:"name,omitempty"`
	Timezone     string     `bson:"timezone,omitempty" json:"timezone,omitempty"`         // IANA name
	WorkingHours *TimeBlock `bson:"workingHours,omitempty" json:"workingHours,omitempty"` // used by full_time days
}

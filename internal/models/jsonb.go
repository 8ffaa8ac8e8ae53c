package models

// JSONB represents PostgreSQL JSONB type
type JSONB map[string]interface{}

// Merge copies other's keys over a copy of j
func (j JSONB) Merge(other JSONB) JSONB {
	merged := make(JSONB, len(j)+len(other))
	for k, v := range j {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

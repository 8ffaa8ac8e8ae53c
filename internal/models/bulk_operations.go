package models

// BulkImportResult reports per-row outcomes of an import
type BulkImportResult struct {
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Failed  int            `json:"failed"`
	Errors  []BulkRowError `json:"errors"`
}

// BulkRowError lists validation failures for one input row (1-based)
type BulkRowError struct {
	Row    int      `json:"row"`
	Key    string   `json:"key"`
	Errors []string `json:"errors"`
}

func (r *BulkImportResult) Fail(row int, key string, errs ...string) {
	r.Failed++
	r.Errors = append(r.Errors, BulkRowError{Row: row, Key: key, Errors: errs})
}

package ingest

// Shape identifies which of the accepted dataset layouts a raw value used.
type Shape string

const (
	ShapeEnvelope Shape = "envelope" // {"entities": [...]}
	ShapeIDMap    Shape = "id_map"   // {"<id>": {...}, ...}
	ShapeList     Shape = "list"     // [...]
	ShapeUnknown  Shape = "unknown"
)

// Report summarizes one normalization run.
type Report struct {
	Shape      Shape `json:"shape"`
	Seen       int   `json:"seen"`
	Kept       int   `json:"kept"`
	MissingID  int   `json:"missing_id"`
	Duplicates int   `json:"duplicates"`
	NotRecords int   `json:"not_records"` // array items that were not objects
}

// Dropped is the number of records excluded from the output.
func (r Report) Dropped() int {
	return r.MissingID + r.Duplicates + r.NotRecords
}

// KeyValue is one member of an Object.
type KeyValue struct {
	Key   string
	Value any
}

// Object is a decoded mapping that keeps its source key order.
type Object []KeyValue

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, kv := range o {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Map converts o to a plain map. Later duplicates overwrite earlier ones.
func (o Object) Map() map[string]any {
	m := make(map[string]any, len(o))
	for _, kv := range o {
		m[kv.Key] = kv.Value
	}
	return m
}

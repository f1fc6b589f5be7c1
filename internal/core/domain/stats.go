package domain

// Stats is a snapshot of the index and runtime.
type Stats struct {
	Documents    int    `json:"num_documents"`
	Pages        int    `json:"num_pages_indexed"`
	Dimensions   int    `json:"embedding_dim"`
	Embedder     string `json:"embedder"`
	Answerer     string `json:"answerer"`
	IndexBackend string `json:"index_backend"`
	IndexType    string `json:"index_type"`
	Device       string `json:"device"`
	CPUs         int    `json:"cpus"`
	MemoryBytes  uint64 `json:"memory_bytes"`
	HeapBytes    uint64 `json:"heap_bytes"`
	Limits       Limits `json:"limits"`
}

// Health is the liveness response.
type Health struct {
	OK           bool `json:"ok"`
	IndexedPages int  `json:"indexed_pages"`
}
